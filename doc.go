// Package manufactory is the root of a dependency-injection engine for
// voice-assistant SDK clients.
//
// The engine lives in subpackages:
//
//   - typeindex: hashable, ordered type identities used as lookup keys
//   - manufactory: recipes, lifecycle caches, CookBooks, Components and the
//     Manufactory facade with its startup validation
//   - sdkclient: feature-client builders resolved in passes into a Registry
//     with ordered shutdown
//   - diag: HTTP diagnostics (type table, graph, Prometheus metrics)
//
// Tooling:
//
//   - cmd/mfcheck: validates, explains and serves YAML wiring manifests
//   - examples/voiceclient: a small client wired end to end
//
// Wiring stays explicit: every type is registered with a lifecycle, every
// component declares what it exports and imports, and the whole graph is
// checked for conflicts, missing types and cycles before anything runs.
package manufactory
