package logger_test

import (
	"testing"

	"github.com/richat-partners/staffing-api/internal/config"
	"github.com/richat-partners/staffing-api/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	log, err := logger.NewLogger(
		&config.LoggingConfig{Level: "debug", Format: "json"},
		&config.AppConfig{Name: "staffing-api", Environment: "development"},
	)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	log, err := logger.NewLogger(
		&config.LoggingConfig{Level: "verbose"},
		&config.AppConfig{Name: "staffing-api", Environment: "development"},
	)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestScopedLoggers(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := zap.New(core)

	logger.WithConsultant(base, 7).Info("cv ingested")
	logger.WithTender(base, 12).Warn("refresh failed")
	logger.WithRequest(base, "GET", "/api/v1/tenders", "req-1").Debug("request")

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, uint64(7), entries[0].ContextMap()["consultant_id"])
	assert.Equal(t, uint64(12), entries[1].ContextMap()["tender_id"])
	assert.Equal(t, "req-1", entries[2].ContextMap()["request_id"])
	assert.Equal(t, "GET", entries[2].ContextMap()["method"])
}
