package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/flyingpig/internal/middleware"
	"github.com/simp-lee/flyingpig/internal/module/account"
	"github.com/simp-lee/flyingpig/internal/pkg"
	"github.com/simp-lee/flyingpig/internal/urls"
)

// Namespace prefixes every admin route name.
const Namespace = "admin"

const tag = "admin"

// Reverser builds paths from route names.
type Reverser interface {
	Reverse(name string, kv ...string) (string, error)
}

type resource struct {
	name   string
	title  string
	model  any
	list   gin.HandlerFunc
	get    gin.HandlerFunc
	patch  gin.HandlerFunc
	delete gin.HandlerFunc
}

// Site is the staff-only back office. Resources are registered before
// Routes is called.
type Site struct {
	resources []resource
	reverser  Reverser
}

// NewSite creates an empty Site.
func NewSite() *Site {
	return &Site{}
}

// Register adds the users served by svc under name.
func Register[T any, PT account.Model[T]](s *Site, name, title string, svc *account.Service[T, PT]) {
	if svc == nil {
		panic("admin.Register: service must not be nil")
	}
	h := &resourceHandler[T, PT]{svc: svc}
	s.resources = append(s.resources, resource{
		name:   name,
		title:  title,
		model:  new(T),
		list:   h.list,
		get:    h.get,
		patch:  h.patch,
		delete: h.delete,
	})
}

// Bind sets the table index URLs are reversed against, normally the root
// URL configuration. Until then they are relative to the admin mount point.
func (s *Site) Bind(r Reverser) {
	s.reverser = r
}

// Routes returns the admin URL configuration, namespaced under "admin".
func (s *Site) Routes() *urls.Table {
	staff := middleware.RequireStaff()

	rows := []urls.Row{
		urls.Path("", urls.NewView(tag,
			urls.Handle(http.MethodGet, staff, s.index).
				Doc("List admin resources").Returns([]IndexEntry{}).Secure(),
		), "index"),
	}
	for _, r := range s.resources {
		rows = append(rows,
			urls.Path(r.name+"/", urls.NewView(tag,
				urls.Handle(http.MethodGet, staff, r.list).
					Doc("List "+r.title).Filters(ListQuery{}).Secure(),
			), r.name+"_list"),
			urls.Path(r.name+"/<int:pk>/", urls.NewView(tag,
				urls.Handle(http.MethodGet, staff, r.get).
					Doc("Retrieve one of "+r.title).Returns(r.model).Secure(),
				urls.Handle(http.MethodPatch, staff, r.patch).
					Doc("Change account flags").Accepts(FlagsRequest{}).Returns(r.model).Secure(),
				urls.Handle(http.MethodDelete, staff, r.delete).
					Doc("Delete permanently").Secure(),
			), r.name+"_detail"),
		)
	}

	table := urls.NewTable(rows...).Namespaced(Namespace)
	if s.reverser == nil {
		s.reverser = table
	}
	return table
}

func (s *Site) index(c *gin.Context) {
	entries := make([]IndexEntry, 0, len(s.resources))
	for _, r := range s.resources {
		url, err := s.reverser.Reverse(Namespace + ":" + r.name + "_list")
		if err != nil {
			pkg.Error(c, err)
			return
		}
		entries = append(entries, IndexEntry{Name: r.name, Title: r.title, URL: url})
	}
	pkg.Success(c, entries)
}
