package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTConfig(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		expiration string
		wantHours  int
		wantErr    string
	}{
		{name: "default expiration", secret: "market-secret", expiration: "", wantHours: 24},
		{name: "custom expiration", secret: "market-secret", expiration: "36", wantHours: 36},
		{name: "minimum one hour", secret: "market-secret", expiration: "1", wantHours: 1},
		{name: "one week", secret: "market-secret", expiration: "168", wantHours: 168},
		{name: "missing secret", secret: "", expiration: "", wantErr: "JWT_SECRET"},
		{name: "non-numeric expiration", secret: "market-secret", expiration: "tomorrow", wantErr: "JWT_EXPIRATION_HOURS"},
		{name: "float expiration", secret: "market-secret", expiration: "12.5", wantErr: "JWT_EXPIRATION_HOURS"},
		{name: "zero expiration", secret: "market-secret", expiration: "0", wantErr: "JWT_EXPIRATION_HOURS"},
		{name: "negative expiration", secret: "market-secret", expiration: "-1", wantErr: "JWT_EXPIRATION_HOURS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.secret == "" {
				t.Setenv("JWT_SECRET", "")
				os.Unsetenv("JWT_SECRET")
			} else {
				t.Setenv("JWT_SECRET", tt.secret)
			}
			if tt.expiration == "" {
				t.Setenv("JWT_EXPIRATION_HOURS", "")
				os.Unsetenv("JWT_EXPIRATION_HOURS")
			} else {
				t.Setenv("JWT_EXPIRATION_HOURS", tt.expiration)
			}

			cfg, err := NewJWTConfig()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Nil(t, cfg)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			assert.Equal(t, tt.secret, cfg.Secret)
			assert.Equal(t, tt.wantHours, cfg.ExpirationHours)
		})
	}
}
