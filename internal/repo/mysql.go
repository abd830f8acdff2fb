package repo

import (
	"time"

	"UploadInbox/config"
	"UploadInbox/model"

	gormMysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Open connects to MySQL and migrates the record tables.
func Open(cfg config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(gormMysql.Open(cfg.DSN()), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&model.FileMetadata{}, &model.UploadAttempt{}); err != nil {
		return nil, err
	}
	return db, nil
}
