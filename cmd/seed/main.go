package main

import (
	"fmt"
	"log"
	"math/rand"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/verifake/verifake_server/config"
	"github.com/verifake/verifake_server/internal/database"
	"github.com/verifake/verifake_server/internal/model"
	"github.com/verifake/verifake_server/internal/pkg/token"
)

// 开发环境种子数据：一个管理员 + 三个演示用户，
// 每个演示用户附带若干条 deepfake 分析记录。
func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	if err := seedAdmin(db); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	if err := seedDemoUsers(db); err != nil {
		log.Fatalf("Failed to seed demo users: %v", err)
	}

	log.Println("Seed completed")
}

func seedAdmin(db *gorm.DB) error {
	var existing model.User
	err := db.Where("email = ?", "admin@example.com").First(&existing).Error
	if err == nil {
		log.Println("Admin already exists, skipping")
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	admin, err := newUser("Admin", "admin@example.com", "password")
	if err != nil {
		return err
	}
	admin.IsAdmin = true
	admin.APILimit = 5000

	if err := db.Create(admin).Error; err != nil {
		return err
	}
	log.Printf("Admin created: %s (token %s)", admin.Email, admin.APIToken)
	return nil
}

func seedDemoUsers(db *gorm.DB) error {
	for i := 1; i <= 3; i++ {
		email := fmt.Sprintf("demo%d@example.com", i)

		var existing model.User
		err := db.Where("email = ?", email).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		user, err := newUser(fmt.Sprintf("Demo User %d", i), email, "password")
		if err != nil {
			return err
		}
		user.APIUsage = 5

		if err := db.Create(user).Error; err != nil {
			return err
		}

		for j := 0; j < 5; j++ {
			score := rand.Float64()
			analysis := &model.Analysis{
				UserID:   user.ID,
				FilePath: fmt.Sprintf("analyses/demo-%d-%d.jpg", i, j),
				Service:  model.ServiceDeepfake,
				Result: model.JSONMap{
					"status": "success",
					"type": map[string]interface{}{
						"deepfake": score,
					},
				},
			}
			if err := db.Create(analysis).Error; err != nil {
				return err
			}
		}
		log.Printf("Demo user created: %s", email)
	}
	return nil
}

func newUser(name, email, password string) (*model.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hash := string(hashed)

	apiToken, err := token.NewAPIToken()
	if err != nil {
		return nil, err
	}

	return &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: &hash,
		APIToken:     apiToken,
	}, nil
}
