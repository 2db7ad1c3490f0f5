// Package web carries the embedded form page template and the client
// submit script.
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html assets/*.js
var files embed.FS

// FormPage renders a complete public form page.
var FormPage = template.Must(template.ParseFS(files, "templates/form.html"))

// Assets returns the static files served under /assets/.
func Assets() fs.FS {
	sub, err := fs.Sub(files, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}
