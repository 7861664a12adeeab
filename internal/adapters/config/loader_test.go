package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.memora.dev/memora/internal/adapters/config"
	"go.memora.dev/memora/internal/core/domain"
	"go.memora.dev/memora/internal/core/ports/mocks"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	return config.NewLoader(log)
}

func TestLoader_Load_FindsFirstCandidate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Memora.yml"), `
cache_root_dir: .memora-cache
artifacts:
  x:
    inputs: [a]
    outputs: [build/a]
`)

	manifest, err := newLoader(t).Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, domain.Path(filepath.Join(dir, ".memora-cache")), manifest.CacheRootDir)

	artifact, ok := manifest.Artifact("x")
	require.True(t, ok)
	assert.Contains(t, artifact.Inputs, domain.Path("a"))
	assert.Contains(t, artifact.Inputs, domain.Path("Memora.yml"))
	assert.Equal(t, []domain.Path{"build/a"}, artifact.Outputs)
}

func TestLoader_Load_FallsBackToLaterCandidates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".ci", "Memora.yml"), `
cache_root_dir: cache
artifacts:
  x:
    inputs: [a]
    outputs: [b]
`)

	manifest, err := newLoader(t).Load(context.Background(), dir)
	require.NoError(t, err)

	artifact, ok := manifest.Artifact("x")
	require.True(t, ok)
	assert.Contains(t, artifact.Inputs, domain.Path(filepath.ToSlash(filepath.Join(".ci", "Memora.yml"))))
}

func TestLoader_Load_NotFound(t *testing.T) {
	dir := t.TempDir()

	_, err := newLoader(t).Load(context.Background(), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrManifestNotFound)
}

func TestLoader_Load_ParseError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Memora.yml"), "not: valid: yaml: at: all:")

	_, err := newLoader(t).Load(context.Background(), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrManifestParseError)
}

func TestLoader_Load_AbsoluteCacheRootDirIsNotRejoined(t *testing.T) {
	dir := t.TempDir()
	cacheRoot := t.TempDir()
	writeFile(t, filepath.Join(dir, "Memora.yml"), `
cache_root_dir: `+filepath.ToSlash(cacheRoot)+`
artifacts:
  x:
    inputs: [a]
    outputs: [b]
`)

	manifest, err := newLoader(t).Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, domain.Path(cacheRoot), manifest.CacheRootDir)
}

func TestLoader_Load_DisableEnvVar(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Memora.yml"), `
cache_root_dir: cache
disable_env_var: MEMORA_DISABLE
artifacts:
  x:
    inputs: [a]
    outputs: [b]
`)

	manifest, err := newLoader(t).Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "MEMORA_DISABLE", manifest.DisableEnvVar)
}

func TestLoader_Load_InvalidArtifact(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Memora.yml"), `
cache_root_dir: cache
artifacts:
  x:
    inputs: []
    outputs: [b]
`)

	_, err := newLoader(t).Load(context.Background(), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyInputs)
}
