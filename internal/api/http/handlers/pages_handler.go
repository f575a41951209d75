package handlers

import (
	"html/template"

	"github.com/gofiber/fiber/v2"
)

var shell = template.Must(template.New("shell").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="/static/app.css">
</head>
<body>
<div id="root" data-path="{{.Path}}"></div>
<script src="/static/app.js" defer></script>
</body>
</html>
`))

// PagesHandler serves the HTML shell the client application boots from.
type PagesHandler struct {
	title string
}

// NewPagesHandler constructs handler.
func NewPagesHandler(title string) *PagesHandler {
	return &PagesHandler{title: title}
}

// Render writes the shell for the requested page. Protected pages only
// reach this handler once the guard accepted the session.
func (h *PagesHandler) Render(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return shell.Execute(c.Response().BodyWriter(), struct {
		Title string
		Path  string
	}{Title: h.title, Path: c.Path()})
}
