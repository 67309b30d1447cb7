package database

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"anoa.com/hostelhub/pkg/apperror"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	DB   *gorm.DB
	once sync.Once
)

// Options describes the postgres connection.
type Options struct {
	URL      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	Debug    bool
}

func (o Options) DSN() string {
	if o.URL != "" {
		return o.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		o.Host, o.User, o.Password, o.Name, o.Port,
	)
}

func Connect(opts Options) (*gorm.DB, error) {
	var err error
	once.Do(func() {
		gormLogger := logger.Default.LogMode(logger.Warn)
		if opts.Debug {
			gormLogger = logger.Default.LogMode(logger.Info)
		}

		var db *gorm.DB
		db, err = gorm.Open(postgres.Open(opts.DSN()), &gorm.Config{
			TranslateError: true,
			Logger:         gormLogger,
		})
		if err != nil {
			err = fmt.Errorf("failed to connect database: %w", err)
			return
		}

		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			err = dbErr
			return
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)

		logrus.WithField("host", opts.Host).Info("database connected")
		DB = db
	})

	return DB, err
}

// Translate maps gorm errors to application errors for the named entity.
func Translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s not found: %w", entity, apperror.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s already exists: %w", entity, apperror.ErrConflict)
	}
	return err
}
