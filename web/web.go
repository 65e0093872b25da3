// Package web embeds the page templates and static assets.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v3"

	"recordlookup/internal/filters"
)

//go:embed views static
var files embed.FS

// Views returns the template tree rooted at views/.
func Views() fs.FS {
	return mustSub("views")
}

// Static returns the static asset tree rooted at static/.
func Static() fs.FS {
	return mustSub("static")
}

// NewEngine creates the template engine with presentation filters registered.
func NewEngine() *html.Engine {
	engine := html.NewFileSystem(http.FS(Views()), ".html")
	engine.AddFuncMap(filters.FuncMap())
	return engine
}

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(files, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
