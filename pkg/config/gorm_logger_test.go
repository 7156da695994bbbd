package config

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/orbtao/connectify/backend/pkg/logger"
)

func newBufferedGormLogger(level gormlogger.LogLevel) (*GormLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logger.New(logger.Opts{Env: "production", Writer: &buf})
	return NewGormLogger(log, level), &buf
}

func query() (string, int64) {
	return `SELECT * FROM "sessions" WHERE id = 'abc'`, 1
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("failed query is logged", func(t *testing.T) {
		l, buf := newBufferedGormLogger(gormlogger.Warn)
		l.Trace(context.Background(), time.Now(), query, errors.New("connection reset"))
		assert.Contains(t, buf.String(), "query failed")
		assert.Contains(t, buf.String(), "connection reset")
	})

	t.Run("record not found is silent", func(t *testing.T) {
		l, buf := newBufferedGormLogger(gormlogger.Warn)
		l.Trace(context.Background(), time.Now(), query, gorm.ErrRecordNotFound)
		assert.Empty(t, buf.String())
	})

	t.Run("slow query warns", func(t *testing.T) {
		l, buf := newBufferedGormLogger(gormlogger.Warn)
		l.Trace(context.Background(), time.Now().Add(-time.Second), query, nil)
		assert.Contains(t, buf.String(), "slow query")
	})

	t.Run("fast query below info is silent", func(t *testing.T) {
		l, buf := newBufferedGormLogger(gormlogger.Warn)
		l.Trace(context.Background(), time.Now(), query, nil)
		assert.Empty(t, buf.String())
	})

	t.Run("silent mode", func(t *testing.T) {
		l, buf := newBufferedGormLogger(gormlogger.Warn)
		l.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), query, errors.New("boom"))
		assert.Empty(t, buf.String())
	})
}

func TestGormLogger_Levels(t *testing.T) {
	l, buf := newBufferedGormLogger(gormlogger.Warn)
	l.Info(context.Background(), "migrated %d tables", 1)
	assert.Empty(t, buf.String())

	l.Warn(context.Background(), "column %s is deprecated", "ua")
	assert.Contains(t, buf.String(), "column ua is deprecated")
}
