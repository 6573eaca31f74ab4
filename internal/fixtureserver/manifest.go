package fixtureserver

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Route maps one request to a recorded payload file.
type Route struct {
	Method      string `yaml:"method"`
	Path        string `yaml:"path"`
	Status      int    `yaml:"status"`
	File        string `yaml:"file"`
	ContentType string `yaml:"content_type"`
}

type Manifest struct {
	Routes []Route `yaml:"routes"`
}

// Table is an immutable route lookup built from a manifest.
type Table struct {
	routes map[string]Route
}

func NewTable(routes []Route) (*Table, error) {
	out := &Table{routes: make(map[string]Route, len(routes))}
	for i, r := range routes {
		r = normalizeRoute(r)
		if r.Path == "" || !strings.HasPrefix(r.Path, "/") {
			return nil, fmt.Errorf("routes[%d]: path must start with /, got %q", i, r.Path)
		}
		if r.File == "" {
			return nil, fmt.Errorf("routes[%d] %s %s: file is required", i, r.Method, r.Path)
		}
		k := routeKey(r.Method, r.Path)
		if _, dup := out.routes[k]; dup {
			return nil, fmt.Errorf("routes[%d]: duplicate route %s", i, k)
		}
		out.routes[k] = r
	}
	return out, nil
}

// LoadManifest reads a manifest file. A missing file yields an empty table.
func LoadManifest(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewTable(nil)
		}
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %q: %w", path, err)
	}
	return NewTable(m.Routes)
}

func (t *Table) Match(method, path string) (Route, bool) {
	if t == nil {
		return Route{}, false
	}
	r, ok := t.routes[routeKey(method, path)]
	return r, ok
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.routes)
}

// Keys lists "METHOD /path" for every route, sorted.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.routes))
	for k := range t.routes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func routeKey(method, path string) string {
	return strings.ToUpper(strings.TrimSpace(method)) + " " + strings.TrimSpace(path)
}

func normalizeRoute(r Route) Route {
	out := r
	out.Method = strings.ToUpper(strings.TrimSpace(out.Method))
	if out.Method == "" {
		out.Method = http.MethodGet
	}
	out.Path = strings.TrimSpace(out.Path)
	out.File = strings.TrimSpace(out.File)
	if out.Status == 0 {
		out.Status = http.StatusOK
	}
	out.ContentType = strings.TrimSpace(out.ContentType)
	if out.ContentType == "" {
		switch strings.ToLower(filepath.Ext(out.File)) {
		case ".xml":
			out.ContentType = "application/xml; charset=utf-8"
		case ".json":
			out.ContentType = "application/json; charset=utf-8"
		default:
			out.ContentType = "text/plain; charset=utf-8"
		}
	}
	return out
}
