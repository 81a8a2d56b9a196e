package storage

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
)

type stubVersioner struct {
	version uint
	dirty   bool
	err     error
}

func (s stubVersioner) Version() (uint, bool, error) { return s.version, s.dirty, s.err }

func observedLogger() (internal.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return internal.NewZapLogger(zap.New(core).Sugar()), logs
}

func TestLogSchemaVersion(t *testing.T) {
	logger, logs := observedLogger()
	logSchemaVersion(stubVersioner{version: 1}, logger)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	assert.Equal(t, "database schema at version 1 (dirty=false)", entry.Message)
}

func TestLogSchemaVersionError(t *testing.T) {
	logger, logs := observedLogger()
	logSchemaVersion(stubVersioner{err: migrate.ErrNilVersion}, logger)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Contains(t, entry.Message, "could not read schema version")
	assert.NotContains(t, entry.Message, "version 0")

	logs.TakeAll()
	logSchemaVersion(stubVersioner{err: errors.New("connection reset")}, logger)
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "connection reset")
}
