// Package web holds the HTML templates compiled into the binary.
package web

import "embed"

// EmbeddedFS contains the templates/ directory.
//
//go:embed templates
var EmbeddedFS embed.FS
