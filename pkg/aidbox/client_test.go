package aidbox_test

import (
	"testing"

	"github.com/fivetwenty-io/aidbox-client/pkg/aidbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *aidbox.Config
		wantErr error
		errText string
	}{
		{
			name:    "nil config",
			config:  nil,
			wantErr: aidbox.ErrConfigRequired,
		},
		{
			name:    "missing host",
			config:  &aidbox.Config{Token: "t"},
			wantErr: aidbox.ErrHostRequired,
		},
		{
			name:    "no credentials",
			config:  &aidbox.Config{Host: "https://box.example.com"},
			wantErr: aidbox.ErrCredentialsRequired,
		},
		{
			name:    "email without password",
			config:  &aidbox.Config{Host: "https://box.example.com", Email: "jane@example.com"},
			wantErr: aidbox.ErrCredentialsRequired,
		},
		{
			name:    "bad email",
			config:  &aidbox.Config{Host: "https://box.example.com", Email: "jane", Password: "secret"},
			errText: "invalid config",
		},
		{
			name:    "bad host",
			config:  &aidbox.Config{Host: "https://exa mple", Token: "t"},
			errText: "invalid config",
		},
		{
			name:    "negative retries",
			config:  &aidbox.Config{Host: "https://box.example.com", Token: "t", RetryMax: -1},
			errText: "invalid config",
		},
		{
			name:   "token",
			config: &aidbox.Config{Host: "https://box.example.com", Token: "t"},
		},
		{
			name:   "credentials",
			config: &aidbox.Config{Host: "https://box.example.com", Email: "jane@example.com", Password: "secret"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.config.Validate()

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.errText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errText)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
