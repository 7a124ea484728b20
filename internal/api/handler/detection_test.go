package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/verifake/verifake_server/internal/api/middleware"
	"github.com/verifake/verifake_server/internal/model"
	"github.com/verifake/verifake_server/internal/pkg/response"
	"github.com/verifake/verifake_server/internal/repository"
	"github.com/verifake/verifake_server/internal/service"
	"github.com/verifake/verifake_server/internal/testutil"
)

func setupDetectionRouter(t *testing.T, vendor *fakeVendorClient) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	userRepo := repository.NewUserRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	quotaService := service.NewQuotaService(userRepo)
	detectionService := service.NewDetectionService(analysisRepo, quotaService, newFakeBlobStore(), vendor, nil)

	cfg := testConfig()
	cfg.Upload.MaxSize = 1 << 20
	cfg.Upload.AllowedExtensions = []string{".jpg", ".jpeg", ".png"}
	handler := NewDetectionHandler(detectionService, cfg)

	router := gin.New()
	authed := router.Group("/api")
	authed.Use(middleware.Auth(userRepo))
	authed.POST("/detect", handler.Detect)
	authed.GET("/analyses", handler.List)

	return router, db
}

func detectRequest(t *testing.T, router *gin.Engine, token string, fields map[string]string, withFile bool, fileData []byte) *httptest.ResponseRecorder {
	t.Helper()

	fileField := ""
	if withFile {
		fileField = "file"
	}
	body, contentType := multipartBody(t, fields, fileField, "photo.jpg", fileData)

	req := httptest.NewRequest("POST", "/api/detect", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const detectToken = "abcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcd"

func TestDetectionHandler_Detect_Success(t *testing.T) {
	router, db := setupDetectionRouter(t, &fakeVendorClient{})

	testutil.TestUser(t, db, testutil.WithAPIToken(detectToken), testutil.WithLimit(10))

	w := detectRequest(t, router, detectToken, map[string]string{"service": "deepfake"}, true, []byte("image-bytes"))

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "deepfake", data["service"])
	assert.Equal(t, "Likely Fake", data["verdict"])
	assert.NotEmpty(t, data["file_url"])
}

func TestDetectionHandler_Detect_MissingFile(t *testing.T) {
	router, db := setupDetectionRouter(t, &fakeVendorClient{})

	testutil.TestUser(t, db, testutil.WithAPIToken(detectToken))

	w := detectRequest(t, router, detectToken, map[string]string{"service": "deepfake"}, false, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestDetectionHandler_Detect_DisallowedExtension(t *testing.T) {
	router, db := setupDetectionRouter(t, &fakeVendorClient{})

	user := testutil.TestUser(t, db, testutil.WithAPIToken(detectToken), testutil.WithUsage(3))

	body, contentType := multipartBody(t, map[string]string{"service": "deepfake"}, "file", "payload.exe", []byte("img"))

	req := httptest.NewRequest("POST", "/api/detect", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+detectToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)

	// 拒绝发生在扣额度之前
	var fresh model.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 3, fresh.APIUsage)
}

func TestDetectionHandler_Detect_ExtensionCaseInsensitive(t *testing.T) {
	router, db := setupDetectionRouter(t, &fakeVendorClient{})

	testutil.TestUser(t, db, testutil.WithAPIToken(detectToken))

	body, contentType := multipartBody(t, nil, "file", "PHOTO.JPG", []byte("image-bytes"))

	req := httptest.NewRequest("POST", "/api/detect", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+detectToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestDetectionHandler_Detect_QuotaExceeded(t *testing.T) {
	router, db := setupDetectionRouter(t, &fakeVendorClient{})

	testutil.TestUser(t, db,
		testutil.WithAPIToken(detectToken),
		testutil.WithLimit(5),
		testutil.WithUsage(5),
	)

	w := detectRequest(t, router, detectToken, nil, true, []byte("img"))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeQuotaExceeded, resp.Code)
}

func TestDetectionHandler_Detect_VendorFailure(t *testing.T) {
	router, db := setupDetectionRouter(t, &fakeVendorClient{fail: true})

	testutil.TestUser(t, db, testutil.WithAPIToken(detectToken))

	w := detectRequest(t, router, detectToken, nil, true, []byte("img"))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeVendorFailed, resp.Code)
}

func TestDetectionHandler_Detect_Unauthorized(t *testing.T) {
	router, _ := setupDetectionRouter(t, &fakeVendorClient{})

	w := detectRequest(t, router, "0000000000000000000000000000000000000000000000000000000000000000", nil, true, []byte("img"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDetectionHandler_List(t *testing.T) {
	router, db := setupDetectionRouter(t, &fakeVendorClient{})

	user := testutil.TestUser(t, db, testutil.WithAPIToken(detectToken))
	other := testutil.TestUser(t, db)

	testutil.TestAnalysis(t, db, user.ID, testutil.WithService(model.ServiceFace), testutil.WithResult(model.JSONMap{
		"faces": []interface{}{map[string]interface{}{"x1": 0.1}},
	}))
	testutil.TestAnalysis(t, db, other.ID)

	req := httptest.NewRequest("GET", "/api/analyses", nil)
	req.Header.Set("Authorization", "Bearer "+detectToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := parseResponse(t, w)

	items, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)

	item, ok := items[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "face", item["service"])
	assert.Equal(t, "1 face(s)", item["verdict"])
}
