package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/sghaida/manufactory/internal/config"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       config.Config
		enabled   zapcore.Level
		disabled  zapcore.Level
		wantError bool
	}{
		{
			name:     "development logs debug",
			cfg:      config.Config{Env: config.EnvDevelopment},
			enabled:  zapcore.DebugLevel,
			disabled: zapcore.DebugLevel - 1,
		},
		{
			name:     "production starts at info",
			cfg:      config.Config{Env: config.EnvProduction},
			enabled:  zapcore.InfoLevel,
			disabled: zapcore.DebugLevel,
		},
		{
			name:     "level override",
			cfg:      config.Config{Env: config.EnvProduction, LogLevel: "warn"},
			enabled:  zapcore.WarnLevel,
			disabled: zapcore.InfoLevel,
		},
		{
			name:      "unknown level",
			cfg:       config.Config{LogLevel: "loud"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			log, err := New(&tt.cfg)
			if tt.wantError {
				assert.Error(t, err)
				assert.Nil(t, log)
				return
			}
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.enabled))
			assert.False(t, log.Core().Enabled(tt.disabled))
		})
	}
}
