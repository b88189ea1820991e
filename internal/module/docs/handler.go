package docs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/simp-lee/flyingpig/internal/domain"
	"github.com/simp-lee/flyingpig/internal/pkg"
	"github.com/simp-lee/flyingpig/internal/urls"
)

// Route names the views depend on.
const (
	SchemaJSONName    = "schema-json"
	SwaggerUIDistName = "swagger-ui-dist"
)

// RedocTemplate is the page rendered by the ReDoc view.
const RedocTemplate = "docs/redoc.html"

const (
	contentTypeJSON    = "application/json; charset=utf-8"
	contentTypeOpenAPI = "application/vnd.oai.openapi; charset=utf-8"
)

var errNotLoaded = domain.NewAppError(domain.CodeInternal, "schema not loaded", nil)

// Handler serves the schema and the documentation UIs. Load must be called
// with the complete URL configuration before serving.
type Handler struct {
	info       Info
	doc        *Document
	schemaURL  string
	swaggerURL string
	swaggerUI  gin.HandlerFunc
}

// NewHandler creates a Handler.
func NewHandler(info Info) *Handler {
	return &Handler{info: info}
}

// Load builds the schema from table and resolves the URLs the UIs point at.
func (h *Handler) Load(table *urls.Table) error {
	if table == nil {
		return errors.New("docs: url table is nil")
	}
	doc, err := NewDocument(table.Routes(), h.info)
	if err != nil {
		return err
	}
	schemaURL, err := table.Reverse(SchemaJSONName)
	if err != nil {
		return fmt.Errorf("docs: %w", err)
	}
	swaggerURL, err := table.Reverse(SwaggerUIDistName, "asset", "index.html")
	if err != nil {
		return fmt.Errorf("docs: %w", err)
	}

	h.doc = doc
	h.schemaURL = schemaURL
	h.swaggerURL = swaggerURL
	h.swaggerUI = ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL(schemaURL),
		ginSwagger.DocExpansion("list"),
	)
	return nil
}

// Document returns the loaded schema, or nil before Load.
func (h *Handler) Document() *Document {
	return h.doc
}

// SchemaJSON serves the schema as JSON.
func (h *Handler) SchemaJSON(c *gin.Context) {
	if h.doc == nil {
		pkg.Error(c, errNotLoaded)
		return
	}
	c.Data(http.StatusOK, contentTypeJSON, h.doc.JSON)
}

// Schema serves the schema as YAML unless JSON is asked for with
// ?format=json or the Accept header.
func (h *Handler) Schema(c *gin.Context) {
	if h.doc == nil {
		pkg.Error(c, errNotLoaded)
		return
	}
	if wantsJSON(c) {
		c.Data(http.StatusOK, contentTypeJSON, h.doc.JSON)
		return
	}
	c.Data(http.StatusOK, contentTypeOpenAPI, h.doc.YAML)
}

func wantsJSON(c *gin.Context) bool {
	switch strings.ToLower(c.Query("format")) {
	case "json", "openapi-json":
		return true
	case "yaml", "openapi":
		return false
	}
	accept := strings.ToLower(c.GetHeader("Accept"))
	return strings.Contains(accept, "json") && !strings.Contains(accept, "yaml")
}

// SwaggerUI redirects to the Swagger UI page.
func (h *Handler) SwaggerUI(c *gin.Context) {
	if h.doc == nil {
		pkg.Error(c, errNotLoaded)
		return
	}
	c.Redirect(http.StatusFound, h.swaggerURL)
}

// SwaggerUIDist serves the Swagger UI bundle.
func (h *Handler) SwaggerUIDist(c *gin.Context) {
	if h.swaggerUI == nil {
		pkg.Error(c, errNotLoaded)
		return
	}
	h.swaggerUI(c)
}

// Redoc renders the ReDoc page through the engine's HTML renderer.
func (h *Handler) Redoc(c *gin.Context) {
	if h.doc == nil {
		pkg.Error(c, errNotLoaded)
		return
	}
	c.HTML(http.StatusOK, RedocTemplate, gin.H{
		"Title":     h.info.Title,
		"SchemaURL": h.schemaURL,
	})
}
