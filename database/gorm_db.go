package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jledbetter-dev/stagepilot/models"
)

// InitGormDB connects to Postgres with a bounded retry policy: the database
// container is often still starting when the API process comes up, so the
// connect is attempted up to maxAttempts times with a fixed delay between
// attempts. The retry happens only here, at process initialization.
func InitGormDB(dsn string, maxAttempts int, delay time.Duration) (*gorm.DB, error) {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	var db *gorm.DB
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormLogger,
		})
		if err == nil {
			break
		}
		if attempt < maxAttempts {
			log.Printf("Database connection failed (attempt %d/%d), retrying in %s: %v", attempt, maxAttempts, delay, err)
			time.Sleep(delay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxAttempts, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB from GORM: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("GORM database initialized successfully")
	return db, nil
}

// AutoMigrateModels migrates the full schema. Called once at startup.
func AutoMigrateModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Room{},
		&models.Image{},
		&models.Job{},
	)
	if err != nil {
		return fmt.Errorf("GORM AutoMigrate failed: %w", err)
	}
	log.Println("GORM AutoMigrate completed successfully.")
	return nil
}

// SeedDefaultUser ensures the fixed demo user exists. Every created record is
// owned by this user; there is no real authentication in this service.
func SeedDefaultUser(db *gorm.DB, id, email string) error {
	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check for default user: %w", err)
	}
	if count > 0 {
		return nil
	}

	user := models.User{ID: id, Email: email}
	if err := user.SetPassword("not-a-real-password"); err != nil {
		return fmt.Errorf("failed to hash default user credential: %w", err)
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to seed default user: %w", err)
	}
	log.Printf("Seeded default user %s (%s)", id, email)
	return nil
}
