package urls

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Endpoint is one HTTP method of a view.
type Endpoint struct {
	Method   string
	Handlers []gin.HandlerFunc

	// Documentation. Body and Query are zero values of the request DTOs;
	// Response is a zero value of the payload placed in the envelope's data.
	Summary  string
	Body     any
	Query    any
	Response any
	Secured  bool
	// Status is the success status code; zero means 200.
	Status int
}

// Handle starts an endpoint for method served by handlers.
func Handle(method string, handlers ...gin.HandlerFunc) Endpoint {
	return Endpoint{Method: method, Handlers: handlers}
}

// Doc sets the endpoint summary.
func (e Endpoint) Doc(summary string) Endpoint {
	e.Summary = summary
	return e
}

// Accepts records the request body DTO.
func (e Endpoint) Accepts(body any) Endpoint {
	e.Body = body
	return e
}

// Filters records the query string DTO.
func (e Endpoint) Filters(query any) Endpoint {
	e.Query = query
	return e
}

// Returns records the response payload type.
func (e Endpoint) Returns(v any) Endpoint {
	e.Response = v
	return e
}

// Created documents a 201 success status.
func (e Endpoint) Created() Endpoint {
	e.Status = http.StatusCreated
	return e
}

// Secure marks the endpoint as requiring a bearer token.
func (e Endpoint) Secure() Endpoint {
	e.Secured = true
	return e
}

// View groups the endpoints addressed by one route.
type View struct {
	Tags      []string
	Endpoints []Endpoint
}

// NewView creates a view tagged tag.
func NewView(tag string, endpoints ...Endpoint) View {
	return View{Tags: []string{tag}, Endpoints: endpoints}
}

// Methods lists the view's HTTP methods in declaration order.
func (v View) Methods() []string {
	methods := make([]string, 0, len(v.Endpoints))
	for _, e := range v.Endpoints {
		methods = append(methods, e.Method)
	}
	return methods
}

// Endpoint returns the endpoint serving method.
func (v View) Endpoint(method string) (Endpoint, bool) {
	for _, e := range v.Endpoints {
		if e.Method == method {
			return e, true
		}
	}
	return Endpoint{}, false
}
