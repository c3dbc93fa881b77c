package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwame/agrimarket/internal/types"
)

func TestImportCommand_FlagsValidation(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantError   bool
		errorString string
	}{
		{
			name:        "Missing --file flag",
			args:        []string{"import"},
			wantError:   true,
			errorString: "required",
		},
		{
			name:        "Nonexistent import file",
			args:        []string{"import", "--file", "/nonexistent/farmers.csv", "--map", "/nonexistent/map.json"},
			wantError:   true,
			errorString: "failed to read import file",
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

func TestBuildMapper_FromFile(t *testing.T) {
	mapPath := filepath.Join(t.TempDir(), "map.json")
	err := os.WriteFile(mapPath, []byte(`{"phone": "Telephone", "name": "Farmer Name"}`), 0644)
	require.NoError(t, err)

	importMapFile = mapPath
	defer func() { importMapFile = "" }()

	mapper, cleanup, err := buildMapper(context.Background())
	defer cleanup()
	require.NoError(t, err)

	colMap, err := mapper.SuggestColumnMap(context.Background(), []string{"Farmer Name", "Telephone"})
	require.NoError(t, err)
	assert.Equal(t, "Telephone", colMap[types.FieldPhone])
	assert.Equal(t, "Farmer Name", colMap[types.FieldName])
}

func TestBuildMapper_BadMappingFile(t *testing.T) {
	mapPath := filepath.Join(t.TempDir(), "map.json")
	err := os.WriteFile(mapPath, []byte(`not json`), 0644)
	require.NoError(t, err)

	importMapFile = mapPath
	defer func() { importMapFile = "" }()

	_, cleanup, err := buildMapper(context.Background())
	defer cleanup()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse mapping file")
}

func TestBuildMapper_NoAPIKey(t *testing.T) {
	importMapFile = ""
	importAPIKey = ""
	t.Setenv("GEMINI_API_KEY", "")

	_, cleanup, err := buildMapper(context.Background())
	defer cleanup()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}
