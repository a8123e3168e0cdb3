// Package views holds the embedded HTML templates for the browser routes.
package views

import "embed"

//go:embed *.html
var FS embed.FS
