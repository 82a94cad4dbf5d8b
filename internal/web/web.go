// Package web holds the server-rendered pages.
package web

import (
	"embed"
	"html/template"
	"strings"

	"github.com/prohmpiriya/tier-events/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// badgeClasses maps each tier to its badge colour
var badgeClasses = map[domain.Tier]string{
	domain.TierFree:     "badge-free",
	domain.TierSilver:   "badge-silver",
	domain.TierGold:     "badge-gold",
	domain.TierPlatinum: "badge-platinum",
}

// Funcs are the helpers available to every template
func Funcs() template.FuncMap {
	return template.FuncMap{
		"badgeClass": func(t domain.Tier) string { return badgeClasses[t] },
		"title":      Title,
	}
}

// Title upper-cases the first letter of a tier name
func Title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Templates parses the embedded page templates
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
}
