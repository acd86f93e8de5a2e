package db

import (
	"embed"
	"fmt"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"crmdesk/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Connect opens the database with a short retry loop. When sqlMigrations is
// set the embedded golang-migrate files are applied; otherwise AutoMigrate
// keeps dev databases in shape. Schema changes ship as migration files, never
// as runtime table-provisioning fallbacks.
func Connect(dsn string, sqlMigrations bool) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	var db *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if sqlMigrations {
		if err := RunMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations: %w", err)
		}
		return db, nil
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate is the dev-convenience path and the one the sqlite test
// databases use.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Contact{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Expense{},
		&models.Task{},
	)
}

// RunMigrations applies the embedded SQL migrations against the given DSN.
func RunMigrations(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
