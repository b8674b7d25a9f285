package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at an empty temp dir so
// no real config file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoader_Defaults(t *testing.T) {
	isolate(t)
	t.Setenv("ENZO_TOKEN", "abc")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "abc", cfg.Token)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestLoader_File(t *testing.T) {
	dir := isolate(t)
	content := "base_url: https://api.example.com\ntoken: from-file\ntimeout: 3s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".enzo.yaml"), []byte(content), 0o600))

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, "from-file", cfg.Token)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".enzo.yaml"), []byte("token: from-file\n"), 0o600))
	t.Setenv("ENZO_TOKEN", "from-env")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Token)
}

func TestLoader_FlagsOverrideEnv(t *testing.T) {
	isolate(t)
	t.Setenv("ENZO_TOKEN", "from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("base-url", "", "")
	flags.String("token", "", "")
	flags.Duration("timeout", 0, "")
	require.NoError(t, flags.Parse([]string{"--token", "from-flag", "--base-url", "https://x.test"}))

	l := NewLoader()
	require.NoError(t, l.BindFlags(flags))
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Token)
	assert.Equal(t, "https://x.test", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestLoader_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing token", env: map[string]string{}},
		{name: "bad scheme", env: map[string]string{"ENZO_TOKEN": "t", "ENZO_BASE_URL": "ftp://x"}},
		{name: "relative url", env: map[string]string{"ENZO_TOKEN": "t", "ENZO_BASE_URL": "/api"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv("ENZO_TOKEN", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := NewLoader().Load()
			assert.Error(t, err)
		})
	}
}

func TestFlagName(t *testing.T) {
	assert.Equal(t, "base-url", flagName("base_url"))
	assert.Equal(t, "token", flagName("token"))
}
