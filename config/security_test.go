package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"relative json", "accessmon.json", false},
		{"relative yaml", "conf/accessmon.yaml", false},
		{"absolute yml", "/etc/accessmon/accessmon.yml", false},
		{"upper-case extension", "ACCESSMON.JSON", false},
		{"empty", "", true},
		{"traversal", "../../etc/accessmon.json", true},
		{"wrong extension", "accessmon.ini", true},
		{"too long", strings.Repeat("a", maxPathLen) + ".json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSafeReadFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "ok.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))
	data, err := safeReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	dirPath := filepath.Join(dir, "dir.json")
	require.NoError(t, os.Mkdir(dirPath, 0o700))
	_, err = safeReadFile(dirPath)
	assert.ErrorContains(t, err, "not a regular file")

	big := filepath.Join(dir, "big.json")
	require.NoError(t, os.WriteFile(big, make([]byte, maxConfigSize+1), 0o600))
	_, err = safeReadFile(big)
	assert.ErrorContains(t, err, "too large")
}

func TestValidateJSONDepth(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"flat", `{"a": 1}`, false},
		{"brackets in string", `{"a": "}}]]{{"}`, false},
		{"escaped quote", `{"a": "x\"}"}`, false},
		{"too deep", strings.Repeat("[", maxJSONDepth+1) + strings.Repeat("]", maxJSONDepth+1), true},
		{"unbalanced close", `{"a": 1}}`, true},
		{"unclosed", `{"a": {`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateJSONDepth([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEnvVar(t *testing.T) {
	assert.NoError(t, validateEnvVar("K", ""))
	assert.NoError(t, validateEnvVar("K", "10"))
	assert.Error(t, validateEnvVar("K", "a\x00b"))
	assert.Error(t, validateEnvVar("K", strings.Repeat("x", maxEnvVarLen+1)))
}
