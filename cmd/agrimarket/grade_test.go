package main

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeCommand_FlagsValidation(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantError   bool
		errorString string
	}{
		{
			name:        "Missing --farmer-id flag",
			args:        []string{"grade"},
			wantError:   true,
			errorString: "required",
		},
		{
			name:        "Malformed farmer ID",
			args:        []string{"grade", "--farmer-id", "not-a-uuid"},
			wantError:   true,
			errorString: "invalid farmer ID",
		},
	}

	binaryPath := getBinaryPath(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binaryPath, tt.args...)
			output, err := cmd.CombinedOutput()

			if tt.wantError {
				assert.Error(t, err)
				if tt.errorString != "" {
					assert.Contains(t, string(output), tt.errorString)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
