// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  Keys
	}{
		{
			name: "provider keys are trimmed",
			files: map[string]string{
				"groq-api-key":   "  gsk_abc123  \n",
				"gemini-api-key": "AIza-test\r\n",
			},
			want: Keys{"groq-api-key": "gsk_abc123", "gemini-api-key": "AIza-test"},
		},
		{
			name: "blank key files are dropped",
			files: map[string]string{
				"anthropic-api-key": "sk-ant",
				"openai-api-key":    " \n\t ",
			},
			want: Keys{"anthropic-api-key": "sk-ant"},
		},
		{
			name: "files that are not key files are ignored",
			files: map[string]string{
				"deepseek-api-key":   "ds_real",
				"README":             "put keys here",
				".groq-api-key":      "hidden",
				"openai-api-key.bak": "old",
			},
			want: Keys{"deepseek-api-key": "ds_real"},
		},
		{
			name: "empty directory",
			want: Keys{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, dir, name, content)
			}
			got, err := Load(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_MissingDirectory(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoad_DirectoryNamedLikeKey(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "groq-api-key"), 0o755))
	writeFile(t, dir, "openai-api-key", "sk-1")

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Keys{"openai-api-key": "sk-1"}, got)
}

func TestLoad_PathIsAFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "groq-api-key", "gsk")

	_, err := Load(filepath.Join(dir, "groq-api-key"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading secrets directory")
}

func TestLoad_UnreadableKeyFileIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}
	dir := t.TempDir()
	writeFile(t, dir, "groq-api-key", "gsk")
	locked := filepath.Join(dir, "openai-api-key")
	require.NoError(t, os.WriteFile(locked, []byte("sk"), 0o000))
	t.Cleanup(func() { os.Chmod(locked, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Keys{"groq-api-key": "gsk"}, got)
}

func TestKeys_APIKey(t *testing.T) {
	keys := Keys{"groq-api-key": "from-file"}
	t.Setenv("GROQ_API_KEY", "from-env")
	t.Setenv("OPENAI_API_KEY", " sk-env ")
	t.Setenv("ANTHROPIC_API_KEY", "")

	tests := []struct {
		name     string
		keys     Keys
		provider string
		want     string
	}{
		{name: "key file wins over env", keys: keys, provider: "groq", want: "from-file"},
		{name: "provider name is normalized", keys: keys, provider: " Groq ", want: "from-file"},
		{name: "env is trimmed", keys: keys, provider: "openai", want: "sk-env"},
		{name: "neither set", keys: keys, provider: "anthropic", want: ""},
		{name: "nil keys fall back to env", keys: nil, provider: "openai", want: "sk-env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.keys.APIKey(tt.provider))
		})
	}
}

func TestKeys_Names(t *testing.T) {
	keys := Keys{"openai-api-key": "sk", "anthropic-api-key": "ak", "groq-api-key": "gsk"}
	assert.Equal(t, []string{"anthropic-api-key", "groq-api-key", "openai-api-key"}, keys.Names())
	assert.Empty(t, Keys(nil).Names())
}

func TestKeyNames(t *testing.T) {
	assert.Equal(t, "deepseek-api-key", KeyFile("DeepSeek"))
	assert.Equal(t, "GEMINI_API_KEY", EnvVar("gemini"))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
