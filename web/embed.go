// Package web carries the embedded templates and static assets served by
// the Gatehouse HTTP surface.
package web

import "embed"

// Templates holds the layout, partial and page templates.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static holds the stylesheet and other static assets.
//
//go:embed static/**/*
var Static embed.FS
