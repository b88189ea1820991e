package docs

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-openapi/spec"

	"github.com/simp-lee/flyingpig/internal/pkg"
	"github.com/simp-lee/flyingpig/internal/urls"
)

// Info fills the document header.
type Info struct {
	Title       string
	Version     string
	Description string
}

// SecurityName is the security definition used by authenticated endpoints.
const SecurityName = "Bearer"

// Build returns the Swagger 2.0 document describing routes. Routes are
// read in resolution order, so when two routes share a path template and
// method the first one is documented.
func Build(routes []urls.Route, info Info) *spec.Swagger {
	sc := newSchemas()
	errorSchema := sc.of(pkg.Response{})
	validationSchema := sc.of(pkg.ValidationErrorResponse{})

	paths := make(map[string]spec.PathItem)
	ids := make(map[string]int)
	var tags []spec.Tag
	seenTags := make(map[string]bool)

	for _, r := range routes {
		template := r.Pattern.Template()
		item := paths[template]
		for _, ep := range r.View.Endpoints {
			slot := operationFor(&item, ep.Method)
			if slot == nil || *slot != nil {
				continue
			}

			op := spec.NewOperation(operationID(r, ep.Method, ids)).
				WithSummary(ep.Summary).
				WithTags(r.View.Tags...)
			for _, p := range r.Pattern.Params() {
				op.AddParam(spec.PathParam(p.Name).Typed(p.Converter.Type, p.Converter.Format))
			}
			for _, p := range queryParams(ep.Query) {
				op.AddParam(p)
			}
			if ep.Body != nil {
				op.AddParam(spec.BodyParam("body", sc.of(ep.Body)).AsRequired())
				op.RespondsWith(http.StatusBadRequest, errorResponse("Invalid input", validationSchema))
			}

			status := ep.Status
			if status == 0 {
				status = http.StatusOK
			}
			op.RespondsWith(status, spec.NewResponse().
				WithDescription(http.StatusText(status)).
				WithSchema(envelope(sc.of(ep.Response))))

			if ep.Secured {
				op.SecuredWith(SecurityName)
				op.RespondsWith(http.StatusUnauthorized, errorResponse("Authentication required", errorSchema))
				op.RespondsWith(http.StatusForbidden, errorResponse("Permission denied", errorSchema))
			}
			if len(r.Pattern.Params()) > 0 {
				op.RespondsWith(http.StatusNotFound, errorResponse("Not found", errorSchema))
			}

			*slot = op
			for _, tag := range r.View.Tags {
				if !seenTags[tag] {
					seenTags[tag] = true
					tags = append(tags, spec.NewTag(tag, "", nil))
				}
			}
		}
		paths[template] = item
	}

	bearer := spec.APIKeyAuth("Authorization", "header")
	bearer.Description = `Access token from the login endpoint, sent as "Bearer <token>".`

	return &spec.Swagger{
		SwaggerProps: spec.SwaggerProps{
			Swagger:  "2.0",
			Consumes: []string{"application/json"},
			Produces: []string{"application/json"},
			Info: &spec.Info{InfoProps: spec.InfoProps{
				Title:       info.Title,
				Version:     info.Version,
				Description: info.Description,
			}},
			Paths:               &spec.Paths{Paths: paths},
			Definitions:         sc.defs,
			SecurityDefinitions: spec.SecurityDefinitions{SecurityName: bearer},
			Tags:                tags,
		},
	}
}

// operationFor returns the slot of item holding method, or nil for methods
// Swagger 2.0 cannot describe.
func operationFor(item *spec.PathItem, method string) **spec.Operation {
	switch method {
	case http.MethodGet:
		return &item.Get
	case http.MethodPost:
		return &item.Post
	case http.MethodPut:
		return &item.Put
	case http.MethodPatch:
		return &item.Patch
	case http.MethodDelete:
		return &item.Delete
	case http.MethodHead:
		return &item.Head
	case http.MethodOptions:
		return &item.Options
	}
	return nil
}

// operationID derives a unique id from the route name and method, e.g.
// "admin_index_get". Unnamed routes use their pattern.
func operationID(r urls.Route, method string, seen map[string]int) string {
	base := r.Name
	if base == "" {
		base = r.Pattern.String()
	}
	base = strings.Trim(strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			return c
		}
		return '_'
	}, base), "_")
	id := base + "_" + strings.ToLower(method)

	seen[id]++
	if n := seen[id]; n > 1 {
		id += "_" + strconv.Itoa(n)
	}
	return id
}

// envelope wraps data in the {code, message, data} response shape.
func envelope(data *spec.Schema) *spec.Schema {
	s := new(spec.Schema).Typed("object", "").
		SetProperty("code", *spec.Int64Property()).
		SetProperty("message", *spec.StringProperty())
	if data != nil {
		s.SetProperty("data", *data)
	}
	return s
}

func errorResponse(description string, schema *spec.Schema) *spec.Response {
	return spec.NewResponse().WithDescription(description).WithSchema(schema)
}
