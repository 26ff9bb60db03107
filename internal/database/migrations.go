package database

import (
	"Shortlink-Backend/internal/domain"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models returns the persisted models in dependency order.
func Models() []interface{} {
	return []interface{}{
		&domain.User{},  // владельцы
		&domain.URL{},   // ссылки (зависят от пользователей)
		&domain.Click{}, // события переходов (зависят от ссылок)
	}
}

// AutoMigrate создает или обновляет схему для всех доменных моделей
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	models := Models()
	log.Info("starting database auto-migration", zap.Int("total_models", len(models)))

	for i, model := range models {
		modelName := fmt.Sprintf("%T", model)
		if err := db.AutoMigrate(model); err != nil {
			log.Error("failed to migrate model",
				zap.String("model", modelName),
				zap.Error(err))
			return fmt.Errorf("failed to migrate model %s: %w", modelName, err)
		}

		log.Debug("model migrated",
			zap.String("model", modelName),
			zap.Int("step", i+1),
			zap.Int("total", len(models)))
	}

	log.Info("database auto-migration completed")
	return nil
}
