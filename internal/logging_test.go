package internal

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level, format string
		wantLevel     logrus.Level
		wantJSON      bool
	}{
		{"debug", "json", logrus.DebugLevel, true},
		{"warn", "text", logrus.WarnLevel, false},
		{"nonsense", "", logrus.InfoLevel, false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := NewLogger(tt.level, tt.format)
			assert.Equal(t, tt.wantLevel, logger.GetLevel())
			_, isJSON := logger.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.wantJSON, isJSON)
		})
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.NotPanics(t, func() { logger.Info("dropped") })
}
