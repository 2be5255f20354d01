package frontend

import (
	"embed"
	"io/fs"
	"net/http"
)

// FS embeds the dashboard templates and static assets
//
//go:embed templates static
var FS embed.FS

// Templates returns the filesystem holding the HTML templates
func Templates() fs.FS {
	sub, err := fs.Sub(FS, "templates")
	if err != nil {
		// the directory is embedded at build time
		panic(err)
	}
	return sub
}

// GetHTTPFS returns the embedded static assets for HTTP serving
func GetHTTPFS() (http.FileSystem, error) {
	sub, err := fs.Sub(FS, "static")
	if err != nil {
		return nil, err
	}
	if _, err := fs.Stat(sub, "style.css"); err != nil {
		return nil, err
	}
	return http.FS(sub), nil
}
