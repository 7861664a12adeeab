// Package config implements the Memora manifest loader (ports.ConfigLoader):
// fixed-path discovery of the YAML manifest and its translation into
// domain types.
package config

import (
	"context"
	"os"
	"path/filepath"

	"go.memora.dev/memora/internal/core/domain"
	"go.memora.dev/memora/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file found at one of
// domain.ManifestCandidates under the repository root.
type Loader struct {
	Logger ports.Logger
}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load searches repoRoot's fixed candidate paths for a manifest, parses the
// first one found, and appends its own path as an implicit input of every
// declared artifact.
func (l *Loader) Load(_ context.Context, repoRoot string) (*domain.Manifest, error) {
	manifestPath, err := l.findManifest(repoRoot)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // manifestPath is one of a fixed set of repo-root-relative candidates
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrManifestNotFound.Error())
	}

	var dto manifestDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestParseError.Error()), "path", manifestPath)
	}

	manifestRelPath, err := filepath.Rel(repoRoot, manifestPath)
	if err != nil {
		manifestRelPath = manifestPath
	}

	return l.toDomain(&dto, repoRoot, domain.Path(filepath.ToSlash(manifestRelPath)))
}

func (l *Loader) findManifest(repoRoot string) (string, error) {
	for _, candidate := range domain.ManifestCandidates {
		path := filepath.Join(repoRoot, candidate)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", zerr.With(domain.ErrManifestNotFound, "repo_root", repoRoot)
}

func (l *Loader) toDomain(dto *manifestDTO, repoRoot string, manifestPath domain.Path) (*domain.Manifest, error) {
	cacheRoot := dto.CacheRootDir
	if !filepath.IsAbs(cacheRoot) {
		cacheRoot = filepath.Join(repoRoot, cacheRoot)
	}

	manifest := &domain.Manifest{
		CacheRootDir:  domain.Path(cacheRoot),
		DisableEnvVar: dto.DisableEnvVar,
		Artifacts:     make(map[string]*domain.Artifact, len(dto.Artifacts)),
	}

	for name, a := range dto.Artifacts {
		if name == "" {
			return nil, domain.ErrArtifactNotFound
		}
		inputs := make([]domain.Path, 0, len(a.Inputs)+1)
		for _, in := range a.Inputs {
			inputs = append(inputs, domain.Path(in))
		}
		// The manifest's own path is an implicit additional input of every
		// artifact, per spec §3.
		inputs = append(inputs, manifestPath)

		outputs := make([]domain.Path, 0, len(a.Outputs))
		for _, out := range a.Outputs {
			outputs = append(outputs, domain.Path(out))
		}

		artifact, err := domain.NewArtifact(name, inputs, outputs)
		if err != nil {
			return nil, err
		}
		manifest.Artifacts[name] = artifact
	}

	l.Logger.Debug("manifest loaded")
	return manifest, nil
}
