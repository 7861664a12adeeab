// Package wiring registers all Graft nodes for the application. The Cache
// Store is deliberately absent: its root path depends on the manifest's
// cache_root_dir, known only once internal/app.App has loaded a manifest,
// so internal/app constructs it directly rather than resolving it here.
package wiring

import (
	// Register adapter nodes.
	_ "go.memora.dev/memora/internal/adapters/config"
	_ "go.memora.dev/memora/internal/adapters/git"
	_ "go.memora.dev/memora/internal/adapters/logger"
	_ "go.memora.dev/memora/internal/adapters/telemetry"
	// Register app nodes.
	_ "go.memora.dev/memora/internal/app"
)
