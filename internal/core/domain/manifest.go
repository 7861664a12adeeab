package domain

// Manifest is a parsed Memora manifest: the cache root, the optional
// disable switch, and the declared artifacts.
type Manifest struct {
	// CacheRootDir is absolute, or resolved relative to the Git
	// working-tree root by the config loader before this struct is built.
	CacheRootDir Path

	// DisableEnvVar, if non-empty, names an environment variable that, when
	// set at runtime to any non-empty value, disables every operation.
	DisableEnvVar string

	// Artifacts maps artifact name to its definition.
	Artifacts map[string]*Artifact
}

// Artifact looks up a declared artifact by name.
func (m *Manifest) Artifact(name string) (*Artifact, bool) {
	a, ok := m.Artifacts[name]
	return a, ok
}

// Disabled reports whether the manifest's disable switch is currently
// tripped, given the process environment lookup function (injected so
// tests do not depend on the real os.Environ).
func (m *Manifest) Disabled(getenv func(string) string) bool {
	if m.DisableEnvVar == "" {
		return false
	}
	return getenv(m.DisableEnvVar) != ""
}
