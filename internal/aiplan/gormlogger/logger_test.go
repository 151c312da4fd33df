package gormlogger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormLog "gorm.io/gorm/logger"
)

func newBufferLogger(threshold time.Duration) (*GormLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewGormLogger(l, threshold, true), &buf
}

func query(sql string) func() (string, int64) {
	return func() (string, int64) { return sql, 1 }
}

func TestTraceError(t *testing.T) {
	gl, buf := newBufferLogger(0)

	gl.Trace(context.Background(), time.Now(), query("SELECT 1"), errors.New("boom"))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "boom")
}

func TestTraceNotFoundIsNotError(t *testing.T) {
	gl, buf := newBufferLogger(0)

	gl.Trace(context.Background(), time.Now(), query("SELECT * FROM docs"), gorm.ErrRecordNotFound)
	assert.NotContains(t, buf.String(), "level=ERROR")
}

func TestTraceSlow(t *testing.T) {
	gl, buf := newBufferLogger(time.Millisecond)

	gl.Trace(context.Background(), time.Now().Add(-time.Second), query("SELECT * FROM docs"), nil)
	assert.Contains(t, buf.String(), "SLOW SQL")
}

func TestLogModeSilent(t *testing.T) {
	gl, buf := newBufferLogger(0)

	silent := gl.LogMode(gormLog.Silent)
	silent.Trace(context.Background(), time.Now(), query("SELECT 1"), errors.New("boom"))
	silent.Error(context.Background(), "fail %d", 1)
	assert.Empty(t, buf.String())

	// Исходный логгер не изменился.
	gl.Error(context.Background(), "fail %d", 2)
	assert.Contains(t, buf.String(), "fail 2")
}

func TestParamsFilter(t *testing.T) {
	gl, _ := newBufferLogger(0)
	_, params := gl.ParamsFilter(context.Background(), "SELECT ?", "secret")
	assert.Nil(t, params)

	gl.ParameterizedQueries = false
	_, params = gl.ParamsFilter(context.Background(), "SELECT ?", "secret")
	assert.Equal(t, []interface{}{"secret"}, params)
}
