// Package web carries the HTML templates compiled into the binary.
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS

// TemplateDir is the directory of Templates holding the pages.
const TemplateDir = "templates"
