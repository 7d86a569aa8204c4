// Package platform contains OS integration glue: filesystem helpers for the
// output directory and media filenames, and console stream setup.
package platform
