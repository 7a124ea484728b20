package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/verifake/verifake_server/internal/model"
	"github.com/verifake/verifake_server/internal/testutil"
)

func TestAnalysisRepository_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewAnalysisRepository(db)

	user := testutil.TestUser(t, db)
	analysis := &model.Analysis{
		UserID:   user.ID,
		FilePath: "analyses/foo.jpg",
		Service:  model.ServiceDeepfake,
		Result: model.JSONMap{
			"status": "success",
			"type":   map[string]interface{}{"deepfake": 0.9},
		},
	}

	require.NoError(t, repo.Create(analysis))
	assert.NotZero(t, analysis.ID)

	// JSON 结果能完整读回
	found, err := repo.GetByID(analysis.ID)
	require.NoError(t, err)
	assert.Equal(t, "success", found.Result["status"])
	typeMap, ok := found.Result["type"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 0.9, typeMap["deepfake"])
}

func TestAnalysisRepository_GetByIDWithUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewAnalysisRepository(db)

	user := testutil.TestUser(t, db)
	analysis := testutil.TestAnalysis(t, db, user.ID)

	found, err := repo.GetByIDWithUser(analysis.ID)
	require.NoError(t, err)
	require.NotNil(t, found.User)
	assert.Equal(t, user.Email, found.User.Email)
}

func TestAnalysisRepository_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewAnalysisRepository(db)

	user := testutil.TestUser(t, db)
	analysis := testutil.TestAnalysis(t, db, user.ID)

	require.NoError(t, repo.Delete(analysis.ID))

	_, err := repo.GetByID(analysis.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAnalysisRepository_ListByUserID_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewAnalysisRepository(db)

	user := testutil.TestUser(t, db)

	old := testutil.TestAnalysis(t, db, user.ID)
	db.Model(old).Update("created_at", time.Now().Add(-time.Hour))
	newest := testutil.TestAnalysis(t, db, user.ID)

	analyses, err := repo.ListByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, analyses, 2)
	assert.Equal(t, newest.ID, analyses[0].ID)
	assert.Equal(t, old.ID, analyses[1].ID)
}

func TestAnalysisRepository_ListByUserID_OnlyOwn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewAnalysisRepository(db)

	user := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)

	testutil.TestAnalysis(t, db, user.ID)
	testutil.TestAnalysis(t, db, other.ID)

	analyses, err := repo.ListByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, analyses, 1)
	assert.Equal(t, user.ID, analyses[0].UserID)
}

func TestAnalysisRepository_ListAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewAnalysisRepository(db)

	user := testutil.TestUser(t, db)
	for i := 0; i < 5; i++ {
		testutil.TestAnalysis(t, db, user.ID)
	}

	analyses, total, err := repo.ListAll(1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, analyses, 3)
	require.NotNil(t, analyses[0].User)
	assert.Equal(t, user.ID, analyses[0].User.ID)

	analyses, _, err = repo.ListAll(2, 3)
	require.NoError(t, err)
	assert.Len(t, analyses, 2)
}

func TestAnalysisRepository_CountByService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewAnalysisRepository(db)

	user := testutil.TestUser(t, db)
	testutil.TestAnalysis(t, db, user.ID, testutil.WithService(model.ServiceDeepfake))
	testutil.TestAnalysis(t, db, user.ID, testutil.WithService(model.ServiceDeepfake))
	testutil.TestAnalysis(t, db, user.ID, testutil.WithService(model.ServiceFace))

	counts, err := repo.CountByService()
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[model.ServiceDeepfake])
	assert.Equal(t, int64(1), counts[model.ServiceFace])
}

func TestAnalysisRepository_FilePathsByUserID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewAnalysisRepository(db)

	user := testutil.TestUser(t, db)
	testutil.TestAnalysis(t, db, user.ID, testutil.WithFilePath("analyses/a.jpg"))
	testutil.TestAnalysis(t, db, user.ID, testutil.WithFilePath("analyses/b.jpg"))
	// 空路径不应出现在清理列表里
	testutil.TestAnalysis(t, db, user.ID, testutil.WithFilePath(""))

	paths, err := repo.FilePathsByUserID(user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"analyses/a.jpg", "analyses/b.jpg"}, paths)
}
