// Package proxium reconciles compose-declared services with their live
// container state and manages caddy reverse-proxy routes for them.
//
// # Overview
//
// Proxium discovers compose files under a working tree, decodes caddy
// reverse-proxy labels into route configs, merges per-directory
// override files and live engine state into one view, and writes proxy
// configuration back into compose files without disturbing fields it
// does not understand.
//
// The tool consists of three main components:
//   - Reconciler: refresh cycles merging compose files, engine state
//     and the caddy admin API
//   - Compose layer: structure-preserving YAML parsing and mutation
//   - API Server / CLI: local HTTP API and command surface over the
//     reconciled view
//
// # Architecture
//
//	┌─────────────────┐      ┌─────────────────┐
//	│   CLI (cobra)   │      │  API (Echo)     │
//	└────────┬────────┘      └────────┬────────┘
//	         └───────────┬────────────┘
//	              ┌──────▼──────┐
//	              │  Reconciler │
//	              └──────┬──────┘
//	      ┌──────────────┼──────────────┐
//	┌─────▼─────┐  ┌─────▼─────┐  ┌─────▼─────┐
//	│  Compose  │  │  Engine   │  │   Caddy   │
//	│  (yaml)   │  │ (docker/  │  │ admin API │
//	│           │  │  podman)  │  │           │
//	└───────────┘  └───────────┘  └───────────┘
//
// # Core Features
//
// Compose reconciliation:
//   - Recursive compose-file discovery with prod/staging exclusion
//   - Structure-preserving document model (unknown fields round-trip)
//   - Override files (compose.lcp.yaml) merged with declared-label
//     precedence
//
// Runtime view:
//   - Live container status merged per refresh cycle
//   - Caddy-labeled containers without declarations in a global view
//   - caddy-proxy daemon status and active routed domains
//
// Route editing:
//   - Structural label/network mutation of the backing compose file
//   - Optional compose up apply after a write
//   - Daemon lifecycle control via systemd user units or the engine
//
// # Quick Start
//
// Run tests:
//
//	go test ./...
//
// Build the binary:
//
//	go build -o proxium ./cmd/proxium
//
// List reconciled services:
//
//	proxium list
//
// Add a reverse-proxy route:
//
//	proxium proxy add web --domain web.myapp.localhost --port 3000
//
// # Technology Stack
//
//   - Go 1.25+
//   - Echo v4 (Web framework)
//   - Docker API (Container runtime, docker and podman)
//   - Caddy admin API (Route introspection)
//   - Cobra/Viper (CLI and configuration)
//
// # License
//
// Proxium is open source software.
package proxium
