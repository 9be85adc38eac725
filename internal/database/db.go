package database

import (
	"fmt"
	"log"

	"crm-gateway/internal/config"
	"crm-gateway/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var GormDB *gorm.DB

func InitDB(cfg *config.Config) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
		dialector = postgres.Open(dsn)
	default:
		dialector = sqlite.Open(cfg.DBPath)
	}

	var err error
	GormDB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database (%s): %v", cfg.DBDriver, err)
	}

	err = GormDB.AutoMigrate(
		&models.Contact{},
		&models.MessageLog{},
		&models.Template{},
		&models.Invoice{},
		&models.SystemSetting{},
	)
	if err != nil {
		log.Fatalf("Failed to run auto-migration: %v", err)
	}

	log.Println("Database initialized successfully (contacts, message_logs, templates, invoices)")
}

// SyncConfig reconciles provider credentials between the environment and the
// system_settings table. Values present in the database win over empty env
// values; non-empty env values are persisted for the next start.
func SyncConfig(cfg *config.Config) {
	settings := []struct {
		Key   string
		Value *string
	}{
		{"WHATSAPP_TOKEN", &cfg.WhatsAppToken},
		{"PHONE_NUMBER_ID", &cfg.PhoneNumberID},
		{"WABA_ID", &cfg.WhatsAppBusinessAccountID},
	}

	for _, s := range settings {
		var setting models.SystemSetting
		if err := GormDB.Where("key = ?", s.Key).First(&setting).Error; err == nil {
			if setting.Value != "" && *s.Value == "" {
				*s.Value = setting.Value
			}
		} else if *s.Value != "" {
			GormDB.Create(&models.SystemSetting{
				Key:   s.Key,
				Value: *s.Value,
			})
		}
	}
	log.Println("System settings synchronized from database")
}
