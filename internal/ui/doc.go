// Package ui contains the console user interface: the single-line progress
// renderer, the status reporter driven by the download service, and message
// localization.
package ui
