package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSetDefaults(t *testing.T) {
	opts := setDefaults(Options{})

	assert.Equal(t, DefaultHost, opts.Host)
	assert.Equal(t, DefaultUser, opts.User)
	assert.Equal(t, DefaultPassword, opts.Password)
	assert.Equal(t, DefaultDBName, opts.DBName)
	assert.Equal(t, DefaultPort, opts.Port)
	assert.NotNil(t, opts.SSLEnabled)
	assert.False(t, *opts.SSLEnabled)
	assert.Equal(t, logger.Warn, opts.LogLevel)

	custom := setDefaults(Options{Host: "db.internal", Port: 6543})
	assert.Equal(t, "db.internal", custom.Host)
	assert.Equal(t, 6543, custom.Port)
}

func TestConnectionStrings(t *testing.T) {
	ssl := true
	opts := setDefaults(Options{Host: "db", User: "svc", Password: "pw", DBName: "presale", SSLEnabled: &ssl})

	assert.Equal(t, "host=db user=svc password=pw dbname=presale port=5432 sslmode=require", opts.DSN())
	assert.Equal(t, "postgres://svc:pw@db:5432/presale?sslmode=require", opts.URL())
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.False(t, IsDuplicateKeyError(nil))
	assert.False(t, IsDuplicateKeyError(errors.New("boom")))
	assert.True(t, IsDuplicateKeyError(gorm.ErrDuplicatedKey))
}
