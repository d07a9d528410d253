// Package web embeds the server-rendered pages and their stylesheet.
package web

import (
	"embed"
	"io/fs"
)

// Templates holds layouts, partials and pages under templates/.
//
//go:embed templates/layouts/*.html templates/partials/*.html templates/pages/*.html
var Templates embed.FS

//go:embed static
var static embed.FS

// StaticFiles returns the assets served under /static/, rooted at the
// static directory.
func StaticFiles() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		// fs.Sub only fails on an invalid path literal.
		panic(err)
	}
	return sub
}
