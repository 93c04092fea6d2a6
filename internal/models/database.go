package models

import (
	"fmt"

	"github.com/convoqa/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&ConversationMetric{},
		&HumanFeedback{},
		&AgentGroup{},
		&AgentGroupMember{},
		&SystemConfig{},
		&SystemLog{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates default system configs if not present.
func SeedDefaultData() error {
	defaultConfigs := []SystemConfig{
		{Key: "score_human_weight", Value: "0.7", Type: "float", Group: "scoring", Label: "Human Feedback Weight"},
		{Key: "score_ai_weight", Value: "0.3", Type: "float", Group: "scoring", Label: "AI Score Weight"},
		{Key: "restricted_workspace_prefix", Value: "360_", Type: "string", Group: "review_queue", Label: "Review Queue Workspace Prefix"},
		{Key: "restricted_reviewer_email", Value: "", Type: "string", Group: "review_queue", Label: "Designated Review Queue Reviewer"},
		{Key: "log_retention_days", Value: "30", Type: "int", Group: "system", Label: "System Log Retention Days"},
	}

	for _, cfg := range defaultConfigs {
		var count int64
		DB.Model(&SystemConfig{}).Where("key = ?", cfg.Key).Count(&count)
		if count == 0 {
			if err := DB.Create(&cfg).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
