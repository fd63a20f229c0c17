// Package web holds the server-rendered pages and their view models.
package web

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	LandingTemplate = "landing.html"
	LoginTemplate   = "login.html"
	AdminTemplate   = "admin.html"
	ErrorTemplate   = "error.html"
)

// Landing page statuses. "loading" only exists client-side while the form is in flight.
const (
	StatusIdle    = "idle"
	StatusSuccess = "success"
	StatusError   = "error"
)

const IdlePlaceholder = "No spam. Just one email when early access opens."

type LandingPage struct {
	Status  string
	Message string
	Email   string
}

func (p LandingPage) IsError() bool {
	return p.Status == StatusError
}

// Note is the line under the form: the outcome message, or the placeholder when idle.
func (p LandingPage) Note() string {
	if p.Message != "" {
		return p.Message
	}
	return IdlePlaceholder
}

type LoginPage struct {
	Email string
	Next  string
	Error string
}

type AdminRow struct {
	Email     string
	CreatedAt string
}

type AdminPage struct {
	UserEmail  string
	Total      int64
	Last7Days  int64
	Last30Days int64
	Recent     []AdminRow
}

// Templates parses every embedded page. The result is meant for gin's SetHTMLTemplate.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}

	for _, name := range []string{LandingTemplate, LoginTemplate, AdminTemplate, ErrorTemplate} {
		if tmpl.Lookup(name) == nil {
			return nil, fmt.Errorf("web: template %q is not defined", name)
		}
	}

	return tmpl, nil
}
