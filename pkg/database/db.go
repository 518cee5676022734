package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Options holds the connection settings read by config.Load.
type Options struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
	// URL, when set, is used verbatim instead of the individual fields.
	URL     string
	Verbose bool
}

func (o Options) DSN() string {
	if o.URL != "" {
		return o.URL
	}
	sslMode := o.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		o.Host, o.User, o.Password, o.Name, o.Port, sslMode,
	)
}

func Connect(opts Options) (*gorm.DB, error) {
	level := gormLogger.Warn
	if opts.Verbose {
		level = gormLogger.Info
	}

	db, err := gorm.Open(postgres.Open(opts.DSN()), &gorm.Config{
		Logger: gormLogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}
