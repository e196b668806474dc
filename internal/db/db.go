package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/MANGOpali/attendance-backend/internal/config"
	"github.com/MANGOpali/attendance-backend/internal/logger"
	"github.com/MANGOpali/attendance-backend/internal/models"
)

// Open connects to the configured database and migrates the schema.
func Open(cfg config.Config) (*gorm.DB, error) {
	dialector, sqlDB, err := dialect(cfg.DbDriver, cfg.DbDsn)
	if err != nil {
		return nil, err
	}

	database, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(logger.StdLogger(slog.LevelWarn), gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DbDriver, err)
	}

	if sqlDB == nil {
		if sqlDB, err = database.DB(); err != nil {
			return nil, err
		}
	}
	if cfg.DbDriver == "sqlite" {
		// single writer; also keeps an in-memory database alive
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := Migrate(database); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return database, nil
}

func Migrate(database *gorm.DB) error {
	return database.AutoMigrate(
		&models.User{},
		&models.Employee{},
		&models.Attendance{},
		&models.AuditLog{},
	)
}

func dialect(driver, dsn string) (gorm.Dialector, *sql.DB, error) {
	switch driver {
	case "mysql":
		cfg, err := gomysql.ParseDSN(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		connector, err := gomysql.NewConnector(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("create connector: %w", err)
		}
		sqlDB := sql.OpenDB(connector)
		if err := sqlDB.Ping(); err != nil {
			return nil, nil, fmt.Errorf("ping db: %w", err)
		}
		return mysql.New(mysql.Config{Conn: sqlDB}), sqlDB, nil
	case "postgres":
		cfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("parse postgres dsn: %w", err)
		}
		sqlDB := stdlib.OpenDB(*cfg)
		if err := sqlDB.Ping(); err != nil {
			return nil, nil, fmt.Errorf("ping db: %w", err)
		}
		return postgres.New(postgres.Config{Conn: sqlDB}), sqlDB, nil
	case "sqlite":
		return sqlite.Open(dsn), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported driver %q", driver)
	}
}
