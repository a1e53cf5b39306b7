// Package web holds the embedded page templates and static assets.
package web

import "embed"

// TemplatesFS embeds the layout and page templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds static assets served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
