// Package cli parses command-line flags, layers them over file and
// environment configuration, and wires the engine, the download service
// and the console reporter for a single run.
package cli
