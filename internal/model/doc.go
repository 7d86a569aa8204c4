// Package model defines the data structures shared across the app: the
// download request and its quality selector, the fetch options handed to an
// engine, progress events and the attempt counter driving the retry loop.
package model
