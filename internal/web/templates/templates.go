// Package templates holds the page and partial templates served by web.
package templates

import "embed"

//go:embed base.html pages/*.html partials/*.html static/*
var FS embed.FS
