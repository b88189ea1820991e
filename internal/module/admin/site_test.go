package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/simp-lee/flyingpig/internal/domain"
	"github.com/simp-lee/flyingpig/internal/middleware"
	"github.com/simp-lee/flyingpig/internal/module/business"
	"github.com/simp-lee/flyingpig/internal/module/freelancer"
	"github.com/simp-lee/flyingpig/internal/pkg"
	"github.com/simp-lee/flyingpig/internal/urls"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	staff    = domain.Principal{ID: 1, UserType: domain.UserTypeBusiness, Staff: true}
	nonStaff = domain.Principal{ID: 2, UserType: domain.UserTypeBusiness}
)

type testEnv struct {
	router   *gin.Engine
	tokens   *pkg.TokenManager
	business domain.BusinessUserRepository
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(&domain.BusinessUser{}, &domain.FreelancerUser{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	businessRepo := business.NewRepository(db)
	site := NewSite()
	Register(site, "business_users", "Business users", business.NewService(businessRepo, nil, nil))
	Register(site, "freelancer_users", "Freelancer users", freelancer.NewService(freelancer.NewRepository(db), nil, nil))

	root := urls.NewTable(urls.Include("admin/", site.Routes(), ""))
	site.Bind(root)

	tokens := pkg.NewTokenManager("admin-test-secret-0123456789abcdef", "test", time.Hour)
	r := gin.New()
	r.Use(middleware.Authenticate(tokens))
	if err := root.Mount(r); err != nil {
		t.Fatalf("mount: %v", err)
	}

	for i, id := range []string{"ada", "grace", "linus"} {
		u := &domain.BusinessUser{
			Account: domain.Account{UserID: id, Email: id + "@example.com", PasswordHash: "x", FirstName: id, LastName: "Test", IsActive: true},
			Company: "Co " + string(rune('A'+i)),
		}
		if err := businessRepo.Create(context.Background(), u); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	return &testEnv{router: r, tokens: tokens, business: businessRepo}
}

func (e *testEnv) do(t *testing.T, method, path string, p *domain.Principal, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if p != nil {
		token, _, err := e.tokens.Issue(*p)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestSite_RequiresStaff(t *testing.T) {
	env := setupEnv(t)

	paths := []string{"/admin/", "/admin/business_users/", "/admin/business_users/1/"}
	for _, path := range paths {
		if w := env.do(t, http.MethodGet, path, nil, ""); w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s anonymous: expected 401, got %d", path, w.Code)
		}
		if w := env.do(t, http.MethodGet, path, &nonStaff, ""); w.Code != http.StatusForbidden {
			t.Errorf("GET %s non-staff: expected 403, got %d", path, w.Code)
		}
	}
}

func TestSite_Index(t *testing.T) {
	env := setupEnv(t)

	w := env.do(t, http.MethodGet, "/admin/", &staff, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data []IndexEntry `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []IndexEntry{
		{Name: "business_users", Title: "Business users", URL: "/admin/business_users/"},
		{Name: "freelancer_users", Title: "Freelancer users", URL: "/admin/freelancer_users/"},
	}
	if len(resp.Data) != len(want) {
		t.Fatalf("entries = %+v", resp.Data)
	}
	for i := range want {
		if resp.Data[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, resp.Data[i], want[i])
		}
	}
}

func TestSite_List(t *testing.T) {
	env := setupEnv(t)

	w := env.do(t, http.MethodGet, "/admin/business_users/?page_size=2&sort=user_id:desc", &staff, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data domain.PageResult[domain.BusinessUser] `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Total != 3 || resp.Data.TotalPages != 2 || len(resp.Data.Items) != 2 {
		t.Fatalf("unexpected page: %+v", resp.Data)
	}
	if resp.Data.Items[0].UserID != "linus" {
		t.Errorf("first item = %q, want linus", resp.Data.Items[0].UserID)
	}

	w = env.do(t, http.MethodGet, "/admin/business_users/?user_id__like=rac", &staff, "")
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Total != 1 || resp.Data.Items[0].UserID != "grace" {
		t.Errorf("filtered page: %+v", resp.Data)
	}

	w = env.do(t, http.MethodGet, "/admin/freelancer_users/", &staff, "")
	if w.Code != http.StatusOK {
		t.Fatalf("freelancer list: %d", w.Code)
	}
}

func TestSite_DetailFlagsAndDelete(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	if w := env.do(t, http.MethodGet, "/admin/business_users/2/", &staff, ""); w.Code != http.StatusOK {
		t.Fatalf("GET: %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/admin/business_users/99/", &staff, ""); w.Code != http.StatusNotFound {
		t.Fatalf("GET unknown: expected 404, got %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/admin/business_users/abc/", &staff, ""); w.Code != http.StatusNotFound {
		t.Fatalf("GET non-int: expected 404, got %d", w.Code)
	}

	if w := env.do(t, http.MethodPatch, "/admin/business_users/2/", &staff, `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("empty PATCH: expected 400, got %d", w.Code)
	}
	w := env.do(t, http.MethodPatch, "/admin/business_users/2/", &staff, `{"is_active":false,"is_staff":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("PATCH: %d %s", w.Code, w.Body.String())
	}
	u, err := env.business.GetByID(ctx, 2)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if u.IsActive || !u.IsStaff {
		t.Errorf("flags not applied: active=%v staff=%v", u.IsActive, u.IsStaff)
	}

	if w := env.do(t, http.MethodDelete, "/admin/business_users/2/", &staff, ""); w.Code != http.StatusOK {
		t.Fatalf("DELETE: %d", w.Code)
	}
	if _, err := env.business.GetByID(ctx, 2); !domain.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestSite_RouteNames(t *testing.T) {
	site := NewSite()
	Register(site, "business_users", "Business users", business.NewService(nil, nil, nil))
	table := site.Routes()

	for name, want := range map[string]string{
		"admin:index":                 "/",
		"admin:business_users_list":   "/business_users/",
		"admin:business_users_detail": "/business_users/5/",
	} {
		var kv []string
		if strings.HasSuffix(name, "_detail") {
			kv = []string{"pk", "5"}
		}
		got, err := table.Reverse(name, kv...)
		if err != nil || got != want {
			t.Errorf("Reverse(%q) = %q, %v; want %q", name, got, err, want)
		}
	}
}
