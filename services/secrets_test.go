package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSecretsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secrets.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSecretResolverPrefersSecretsFile(t *testing.T) {
	path := writeSecretsFile(t, "OPENAI_API_KEY=from-file\n")
	t.Setenv("OPENAI_API_KEY", "from-env")

	resolver, err := NewSecretResolver(path)
	require.NoError(t, err)

	v, err := resolver.Get("OPENAI_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "from-file", v)
}

func TestSecretResolverFallsBackToEnv(t *testing.T) {
	path := writeSecretsFile(t, "OTHER=x\n")
	t.Setenv("CHROMA_URL", "http://localhost:8000")

	resolver, err := NewSecretResolver(path)
	require.NoError(t, err)

	v, err := resolver.Get("CHROMA_URL")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", v)
}

func TestSecretResolverMissingKey(t *testing.T) {
	resolver, err := NewSecretResolver(filepath.Join(t.TempDir(), "does-not-exist.env"))
	require.NoError(t, err)

	_, err = resolver.Get("NO_SUCH_SECRET")
	require.Error(t, err)

	var missing *MissingSecretError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "NO_SUCH_SECRET", missing.Key)
}

func TestSecretResolverMissingFileIsNotFatal(t *testing.T) {
	resolver, err := NewSecretResolver(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	require.NotNil(t, resolver)

	t.Setenv("FROM_ENV_ONLY", "ok")
	v, err := resolver.Get("FROM_ENV_ONLY")
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestSecretResolverGetOptional(t *testing.T) {
	resolver, err := NewSecretResolver(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)

	assert.Equal(t, "", resolver.GetOptional("NOT_CONFIGURED"))
}
