package urls

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Converter constrains and documents one path parameter type.
type Converter struct {
	Name string
	// Regexp matches a single parameter value, unanchored.
	Regexp string
	// Type and Format are the OpenAPI 2 type of the parameter.
	Type   string
	Format string
}

var converters = map[string]Converter{
	"int":  {Name: "int", Regexp: `[0-9]+`, Type: "integer", Format: "int64"},
	"str":  {Name: "str", Regexp: `[^/]+`, Type: "string"},
	"slug": {Name: "slug", Regexp: `[-a-zA-Z0-9_]+`, Type: "string"},
	"uuid": {Name: "uuid", Regexp: `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`, Type: "string", Format: "uuid"},
	"path": {Name: "path", Regexp: `.+`, Type: "string"},
}

var paramName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Param is a named, typed placeholder in a pattern.
type Param struct {
	Name      string
	Converter Converter
	match     *regexp.Regexp
}

// Matches reports whether value is acceptable for the parameter.
func (p Param) Matches(value string) bool {
	return p.match.MatchString(value)
}

type segment struct {
	literal string
	param   *Param
}

// Pattern is a compiled route pattern such as "business_user/<int:pk>/".
type Pattern struct {
	raw      string
	segments []segment
	params   []Param
	re       *regexp.Regexp
}

// Compile parses a pattern. Placeholders are written <converter:name> or
// <name>, the latter meaning the str converter.
func Compile(raw string) (*Pattern, error) {
	if strings.HasPrefix(raw, "/") {
		return nil, fmt.Errorf("urls: pattern %q must not start with '/'", raw)
	}

	p := &Pattern{raw: raw}
	seen := make(map[string]bool)
	var expr strings.Builder
	expr.WriteString("^")

	rest := raw
	for rest != "" {
		open := strings.IndexByte(rest, '<')
		if open < 0 {
			p.addLiteral(rest, &expr)
			break
		}
		if open > 0 {
			p.addLiteral(rest[:open], &expr)
		}
		end := strings.IndexByte(rest[open:], '>')
		if end < 0 {
			return nil, fmt.Errorf("urls: pattern %q has an unclosed '<'", raw)
		}
		placeholder := rest[open+1 : open+end]
		rest = rest[open+end+1:]

		convName, name, ok := strings.Cut(placeholder, ":")
		if !ok {
			convName, name = "str", placeholder
		}
		conv, known := converters[convName]
		if !known {
			return nil, fmt.Errorf("urls: pattern %q uses unknown converter %q", raw, convName)
		}
		if !paramName.MatchString(name) {
			return nil, fmt.Errorf("urls: pattern %q has invalid parameter name %q", raw, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("urls: pattern %q repeats parameter %q", raw, name)
		}
		seen[name] = true

		param := Param{
			Name:      name,
			Converter: conv,
			match:     regexp.MustCompile(`^(?:` + conv.Regexp + `)$`),
		}
		p.params = append(p.params, param)
		p.segments = append(p.segments, segment{param: &p.params[len(p.params)-1]})
		expr.WriteString("(?P<" + name + ">" + conv.Regexp + ")")
	}
	expr.WriteString("$")

	// Segments hold pointers into params; rebind after the final append.
	idx := 0
	for i := range p.segments {
		if p.segments[i].param != nil {
			p.segments[i].param = &p.params[idx]
			idx++
		}
	}

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("urls: pattern %q: %w", raw, err)
	}
	p.re = re
	return p, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(raw string) *Pattern {
	p, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Pattern) addLiteral(s string, expr *strings.Builder) {
	p.segments = append(p.segments, segment{literal: s})
	expr.WriteString(regexp.QuoteMeta(s))
}

// String returns the pattern as written.
func (p *Pattern) String() string { return p.raw }

// Params returns the placeholders in order of appearance.
func (p *Pattern) Params() []Param {
	return append([]Param(nil), p.params...)
}

// Match matches a request path (with or without the leading '/').
func (p *Pattern) Match(path string) (map[string]string, bool) {
	m := p.re.FindStringSubmatch(strings.TrimPrefix(path, "/"))
	if m == nil {
		return nil, false
	}
	values := make(map[string]string, len(p.params))
	for i, name := range p.re.SubexpNames() {
		if name != "" {
			values[name] = m[i]
		}
	}
	return values, true
}

// Build fills the placeholders from values and returns an absolute path.
// Every placeholder needs a value that satisfies its converter, and values
// may not name parameters the pattern does not have.
func (p *Pattern) Build(values map[string]string) (string, error) {
	if len(values) != len(p.params) {
		return "", fmt.Errorf("%w: %q takes %d argument(s), got %d", ErrNoReverseMatch, p.raw, len(p.params), len(values))
	}
	var b strings.Builder
	b.WriteByte('/')
	for _, seg := range p.segments {
		if seg.param == nil {
			b.WriteString(seg.literal)
			continue
		}
		v, ok := values[seg.param.Name]
		if !ok {
			return "", fmt.Errorf("%w: %q missing argument %q", ErrNoReverseMatch, p.raw, seg.param.Name)
		}
		if !seg.param.Matches(v) {
			return "", fmt.Errorf("%w: %q argument %s=%q does not match %s", ErrNoReverseMatch, p.raw, seg.param.Name, v, seg.param.Converter.Name)
		}
		b.WriteString(escape(seg.param.Converter, v))
	}
	return b.String(), nil
}

func escape(conv Converter, v string) string {
	if conv.Name != "path" {
		return url.PathEscape(v)
	}
	parts := strings.Split(v, "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}
	return strings.Join(parts, "/")
}

// ginPath renders the pattern in gin's syntax: path placeholders become
// catch-all parameters, the rest named parameters.
func (p *Pattern) ginPath() (string, error) {
	var b strings.Builder
	b.WriteByte('/')
	for i, seg := range p.segments {
		switch {
		case seg.param == nil:
			b.WriteString(seg.literal)
		case seg.param.Converter.Name == "path":
			if i != len(p.segments)-1 {
				return "", fmt.Errorf("urls: %q: a path parameter must end the pattern", p.raw)
			}
			b.WriteString("*" + seg.param.Name)
		default:
			b.WriteString(":" + seg.param.Name)
		}
	}
	return b.String(), nil
}

// Template renders the pattern with {name} placeholders, as used by OpenAPI.
func (p *Pattern) Template() string {
	var b strings.Builder
	b.WriteByte('/')
	for _, seg := range p.segments {
		if seg.param == nil {
			b.WriteString(seg.literal)
		} else {
			b.WriteString("{" + seg.param.Name + "}")
		}
	}
	return b.String()
}
