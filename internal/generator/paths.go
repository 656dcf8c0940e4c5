package generator

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// pageRoute derives the canonical site route for a rendered page. Dated
// documents live under /yyyy/mm/dd/slug/, undated ones directly under
// /slug/.
func pageRoute(slug string, date time.Time) string {
	slug = strings.Trim(strings.TrimSpace(slug), "/")
	if slug == "" {
		return "/"
	}
	if date.IsZero() {
		return "/" + slug + "/"
	}
	return fmt.Sprintf("/%04d/%02d/%02d/%s/", date.Year(), int(date.Month()), date.Day(), slug)
}

// routeOutputPath maps a route to the relative file the route is served
// from. Directory routes get an index.html.
func routeOutputPath(route string) string {
	clean := strings.Trim(strings.TrimSpace(route), " \t\r\n/")
	if clean == "" {
		return "index.html"
	}
	return path.Join(clean, "index.html")
}

func joinOutputPath(base string, rel string) string {
	if strings.TrimSpace(base) == "" {
		return strings.TrimLeft(rel, "/")
	}
	return path.Join(strings.TrimRight(base, "/"), rel)
}
