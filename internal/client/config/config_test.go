package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"caminho"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestLoadDefaults(t *testing.T) {
	withArgs(t)
	cfg := LoadConfig()
	require.Equal(t, "http://127.0.0.1:8080", cfg.APIBaseURL)
	require.Equal(t, 10.0, cfg.RequestsPerSecond)
	require.Equal(t, "caminho-media", cfg.S3Bucket)
	require.Equal(t, "ffmpeg", cfg.FFmpegBin)
	require.Empty(t, cfg.MetricsAddr)
}

func TestJSONOverlaysOnlyPresentFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"api_base_url":"https://api.caminho.app","s3_endpoint":"https://s3.caminho.app","vapid_public_key":"BPk"}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	withArgs(t, "-c", path)

	cfg := LoadConfig()
	require.Equal(t, "https://api.caminho.app", cfg.APIBaseURL)
	require.Equal(t, "https://s3.caminho.app", cfg.S3Endpoint)
	require.Equal(t, "BPk", cfg.VAPIDPublicKey)
	// Fields absent from the file keep their defaults.
	require.Equal(t, "caminho-media", cfg.S3Bucket)
	require.Equal(t, "caminho.db", cfg.DBPath)
}

func TestFlagsOverrideJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"api_base_url":"https://json.example","db_path":"json.db"}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	withArgs(t, "-c", path, "-a", "https://flag.example", "-m", ":9090")

	cfg := LoadConfig()
	require.Equal(t, "https://flag.example", cfg.APIBaseURL)
	require.Equal(t, "json.db", cfg.DBPath)
	require.Equal(t, ":9090", cfg.MetricsAddr)
}
