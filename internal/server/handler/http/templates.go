package http

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"slices"

	"github.com/atinyakov/medstock/internal/inventory"
	"github.com/atinyakov/medstock/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"login", "dashboard", "meds", "med", "med_new", "expiration", "secondary",
	"logs", "stats", "users", "user", "user_new", "settings", "types", "vaccines", "error",
}

type pageSet map[string]*template.Template

var funcs = template.FuncMap{
	"display": func(d models.Date) string { return d.Display() },
	"input": func(d models.Date) string {
		if d.IsZero() {
			return ""
		}
		return d.String()
	},
	"pageURL":  pageURL,
	"bucket":   func(b inventory.Bucket) string { return b.String() },
	"buckets":  func() []inventory.Bucket { return inventory.Buckets },
	"inc":      func(i int) int { return i + 1 },
	"contains": slices.Contains[[]string, string],
}

func parsePages() (pageSet, error) {
	set := make(pageSet, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		set[name] = t
	}
	return set, nil
}

func (s pageSet) execute(w io.Writer, name string, data any) error {
	t, ok := s[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
