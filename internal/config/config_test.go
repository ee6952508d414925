package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"S3BATCH_ENDPOINT", "S3BATCH_ACCESS_KEY", "S3BATCH_SECRET_KEY", "S3BATCH_SECURE",
		"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("S3BATCH_ENDPOINT", "minio.local:9000")
	t.Setenv("S3BATCH_ACCESS_KEY", "ak")
	t.Setenv("S3BATCH_SECRET_KEY", "sk")
	t.Setenv("S3BATCH_SECURE", "false")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "minio.local:9000", cfg.Storage.Endpoint)
	assert.Equal(t, "ak", cfg.Storage.AccessKey)
	assert.Equal(t, "sk", cfg.Storage.SecretKey)
	assert.False(t, cfg.Storage.Secure)
	assert.Equal(t, 8, cfg.Transfer.Parallelism)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadAWSCredentialFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("S3BATCH_ENDPOINT", "minio.local:9000")
	t.Setenv("AWS_ACCESS_KEY_ID", "aws-ak")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "aws-sk")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "aws-ak", cfg.Storage.AccessKey)
	assert.Equal(t, "aws-sk", cfg.Storage.SecretKey)
}

func TestMissingCredentialsIsFatal(t *testing.T) {
	clearEnv(t)

	_, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint is required")

	t.Setenv("S3BATCH_ENDPOINT", "minio.local:9000")
	_, err = Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access key is required")
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
storage:
  endpoint: file.local:9000
  access_key: file-ak
  secret_key: file-sk
transfer:
  parallelism: 3
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "file.local:9000", cfg.Storage.Endpoint)
	assert.Equal(t, 3, cfg.Transfer.Parallelism)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestFlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("S3BATCH_ENDPOINT", "env.local:9000")
	t.Setenv("S3BATCH_ACCESS_KEY", "env-ak")
	t.Setenv("S3BATCH_SECRET_KEY", "env-sk")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("endpoint", "", "")
	flags.Int("parallelism", 8, "")
	require.NoError(t, flags.Set("endpoint", "flag.local:9000"))
	require.NoError(t, flags.Set("parallelism", "2"))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "flag.local:9000", cfg.Storage.Endpoint)
	assert.Equal(t, 2, cfg.Transfer.Parallelism)
	assert.Equal(t, "env-ak", cfg.Storage.AccessKey)
}

func TestInvalidParallelism(t *testing.T) {
	clearEnv(t)
	t.Setenv("S3BATCH_ENDPOINT", "minio.local:9000")
	t.Setenv("S3BATCH_ACCESS_KEY", "ak")
	t.Setenv("S3BATCH_SECRET_KEY", "sk")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("parallelism", 8, "")
	require.NoError(t, flags.Set("parallelism", "0"))

	_, err := Load("", flags)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parallelism must be positive")
}
