// Package download implements the download orchestrator: request validation,
// output directory preparation, format-selector derivation and the bounded
// retry loop around a single blocking engine call. Engines live in
// internal/fetch; console output lives in internal/ui.
package download
