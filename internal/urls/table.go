// Package urls implements a declarative URL configuration: named routes and
// prefixed includes that flatten into a single ordered table, which can
// resolve request paths, reverse names back into paths and mount itself on
// a gin router.
package urls

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrNoRoute is returned by Resolve when no pattern matches the path.
	ErrNoRoute = errors.New("urls: no route matches")
	// ErrMethodNotAllowed is returned by Resolve when the path matches but
	// none of the matching views serves the method.
	ErrMethodNotAllowed = errors.New("urls: method not allowed")
	// ErrNoReverseMatch is returned by Reverse.
	ErrNoReverseMatch = errors.New("urls: no reverse match")
)

// MethodNotAllowedError carries the methods the path does accept.
type MethodNotAllowedError struct {
	Path    string
	Allowed []string
}

func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("%v: %s allows %s", ErrMethodNotAllowed, e.Path, strings.Join(e.Allowed, ", "))
}

// Is makes errors.Is(err, ErrMethodNotAllowed) hold.
func (e *MethodNotAllowedError) Is(target error) bool {
	return target == ErrMethodNotAllowed
}

// Row is one entry of a table: a route or an include.
type Row struct {
	pattern string
	name    string
	view    *View
	include *Table
}

// Path declares a route. name may be empty.
func Path(pattern string, view View, name string) Row {
	return Row{pattern: pattern, name: name, view: &view}
}

// Include delegates every path under prefix to table. A non-empty name
// reverses to the prefix itself.
func Include(prefix string, table *Table, name string) Row {
	return Row{pattern: prefix, name: name, include: table}
}

// Table is an immutable, ordered list of rows.
type Table struct {
	rows      []Row
	namespace string

	routes   []Route
	reverses map[string][]*Pattern
}

// Route is a flattened table entry.
type Route struct {
	Pattern *Pattern
	Name    string
	View    View
}

// Match is the result of resolving a request.
type Match struct {
	Route   Route
	Name    string
	Pattern string
	Params  map[string]string
}

// NewTable builds a table from rows. Patterns are compiled immediately;
// an invalid pattern panics, as the table is static configuration.
func NewTable(rows ...Row) *Table {
	t := &Table{rows: slices.Clone(rows)}
	t.flatten()
	return t
}

// Namespaced returns a copy of t whose route names are qualified as
// "ns:name" when flattened.
func (t *Table) Namespaced(ns string) *Table {
	n := NewTable(t.rows...)
	n.namespace = ns
	n.flatten()
	return n
}

type nameEntry struct {
	name    string
	pattern *Pattern
}

func (t *Table) flatten() {
	t.routes = nil
	t.reverses = make(map[string][]*Pattern)
	var names []nameEntry
	t.walk("", "", func(r Route) {
		t.routes = append(t.routes, r)
	}, &names)
	for _, n := range names {
		t.reverses[n.name] = append(t.reverses[n.name], n.pattern)
	}
}

func (t *Table) walk(prefix, ns string, emit func(Route), names *[]nameEntry) {
	if t.namespace != "" {
		ns = qualify(ns, t.namespace)
	}
	for _, row := range t.rows {
		full := prefix + row.pattern
		if row.include != nil {
			if row.name != "" {
				*names = append(*names, nameEntry{qualify(ns, row.name), MustCompile(full)})
			}
			row.include.walk(full, ns, emit, names)
			continue
		}
		r := Route{Pattern: MustCompile(full), View: *row.view}
		if row.name != "" {
			r.Name = qualify(ns, row.name)
			*names = append(*names, nameEntry{r.Name, r.Pattern})
		}
		emit(r)
	}
}

func qualify(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + ":" + name
}

// Routes returns the flattened routes in resolution order.
func (t *Table) Routes() []Route {
	return slices.Clone(t.routes)
}

// Resolve finds the route serving method on path. Routes are tried in
// declaration order and the first one whose pattern matches and whose view
// serves method wins.
func (t *Table) Resolve(method, path string) (Match, error) {
	var allowed []string
	for _, r := range t.routes {
		params, ok := r.Pattern.Match(path)
		if !ok {
			continue
		}
		if _, ok := r.View.Endpoint(method); ok {
			return Match{Route: r, Name: r.Name, Pattern: r.Pattern.String(), Params: params}, nil
		}
		for _, m := range r.View.Methods() {
			if !slices.Contains(allowed, m) {
				allowed = append(allowed, m)
			}
		}
	}
	if allowed != nil {
		return Match{}, &MethodNotAllowedError{Path: path, Allowed: allowed}
	}
	return Match{}, fmt.Errorf("%w: %s", ErrNoRoute, path)
}

// Reverse builds the path for the named route from key/value pairs.
//
// When a name was registered more than once the candidates are tried from
// the last registration to the first, and the first that accepts the
// arguments is used.
func (t *Table) Reverse(name string, kv ...string) (string, error) {
	if len(kv)%2 != 0 {
		return "", fmt.Errorf("%w: odd number of arguments for %q", ErrNoReverseMatch, name)
	}
	candidates, ok := t.reverses[name]
	if !ok {
		return "", fmt.Errorf("%w: %q is not a registered name", ErrNoReverseMatch, name)
	}
	values := make(map[string]string, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		values[kv[i]] = kv[i+1]
	}

	var lastErr error
	for i := len(candidates) - 1; i >= 0; i-- {
		path, err := candidates[i].Build(values)
		if err == nil {
			return path, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// MustReverse is like Reverse but panics on error.
func (t *Table) MustReverse(name string, kv ...string) string {
	path, err := t.Reverse(name, kv...)
	if err != nil {
		panic(err)
	}
	return path
}

// Names lists every reversible name in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.reverses))
	for n := range t.reverses {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
