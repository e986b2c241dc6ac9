package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"lotbid/models"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config 是資料庫連線設定
// DSN 為空時以其他欄位組出 postgres 連線字串
type Config struct {
	Driver   string
	DSN      string
	User     string
	Password string
	Host     string
	Port     int
	Database string
	Schema   string

	MaxOpenConns int
	MaxIdleConns int
	LogLevel     string
}

// Open 建立 gorm 連線
func Open(config Config) (*gorm.DB, error) {
	const op = "Open"
	gormConfig := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(parseLogLevel(config.LogLevel)),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var dialector gorm.Dialector
	switch config.Driver {
	case DriverPostgres, "":
		dsn := config.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", config.User, config.Password, config.Host, config.Port, config.Database)
			if config.Schema != "" {
				dsn += "&search_path=" + config.Schema
			}
		}
		if config.Schema != "" {
			gormConfig.NamingStrategy = schema.NamingStrategy{
				TablePrefix: config.Schema + ".",
			}
		}
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(config.DSN)
	default:
		return nil, fmt.Errorf("[%s] Unsupported database driver: %s", op, config.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to connect to database, err=%w", op, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to get sql.DB, err=%w", op, err)
	}
	if config.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	}
	slog.Info("Database connected", slog.String("driver", db.Dialector.Name()))
	return db, nil
}

// Models 回傳需要建立資料表的 model，順序即為建立順序
func Models() []any {
	return []any{
		&models.User{},
		&models.Vehicle{},
		&models.Listing{},
		&models.Bid{},
	}
}

// Migrate 依照 model 自動建立或更新資料表
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("[Migrate] Fail to migrate schema, err=%w", err)
	}
	return nil
}

func parseLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
