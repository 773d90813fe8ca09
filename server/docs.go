package server

import (
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
)

// serveDocs mounts the interactive documentation UI. It renders
// Stoplight Elements pointed at the served API document.
func (s *Server) serveDocs() {
	tmpl := template.Must(template.New("docs").Parse(docsHTML))
	data := struct {
		Title   string
		SpecURL string
	}{
		Title:   s.cfg.Docs.Title,
		SpecURL: s.fullPath(s.cfg.Docs.SpecPath),
	}

	s.echo.GET(s.fullPath(s.cfg.Docs.Path), func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderContentType, "text/html; charset=utf-8")
		c.Response().WriteHeader(http.StatusOK)
		return tmpl.Execute(c.Response(), data)
	})
}

const docsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/@stoplight/elements/styles.min.css">
  <script src="https://unpkg.com/@stoplight/elements/web-components.min.js"></script>
</head>
<body>
  <elements-api
    apiDescriptionUrl="{{.SpecURL}}"
    router="hash"
    layout="sidebar"
  />
</body>
</html>`
