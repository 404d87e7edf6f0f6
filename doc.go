// Package fleetdeck is an operations dashboard for container fleets.
//
// # Overview
//
// Fleetdeck observes the containers running on a Docker-compatible engine
// socket, groups them into Compose-style stacks, and exposes the result
// through a REST API and a CLI together with lifecycle actions (up, down,
// restart, pull) per stack or per service.
//
// The system consists of three main components:
//   - API Server: REST endpoints for stack inspection and actions
//   - Orchestration Facade: derives stacks and dispatches engine calls
//   - Engine Client: Docker API client over the control socket
//
// # Architecture
//
//	┌─────────────────┐       ┌─────────────────┐
//	│  API Server     │       │  CLI            │
//	│  (Echo REST)    │       │  (Cobra)        │
//	└────────┬────────┘       └────────┬────────┘
//	         │                         │
//	┌────────▼─────────────────────────▼────────┐
//	│  Orchestration Facade                     │
//	│  (stack derivation + action dispatch)     │
//	└────────┬──────────────────────────────────┘
//	         │
//	┌────────▼────────┐
//	│  Engine Client  │
//	│  (Docker API)   │
//	└─────────────────┘
//
// # Core Features
//
// Stack derivation:
//   - Compose project labels group containers into stacks
//   - Unlabeled containers appear as single-service stacks
//   - Per-service state rollups and published-port summaries
//
// REST API:
//   - List and inspect derived stacks
//   - Dispatch lifecycle actions per stack or per service
//   - Health probing of the engine socket
//
// CLI:
//   - Table, JSON and YAML stack listings
//   - The same lifecycle actions as the API
//
// # Usage
//
// Start the API server:
//
//	fleetdeck server --config configs/config.yaml
//
// List stacks from a terminal:
//
//	fleetdeck stacks list
package fleetdeck
