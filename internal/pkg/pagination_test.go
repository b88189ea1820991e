package pkg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	dbtest "gorm.io/gorm/utils/tests"

	"github.com/simp-lee/flyingpig/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(queryParams url.Values) *gin.Context {
	req := httptest.NewRequest(http.MethodGet, "/?"+queryParams.Encode(), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c
}

func newDummyDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(dbtest.DummyDialector{}, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return db
}

func TestParsePageRequest_Defaults(t *testing.T) {
	pr := ParsePageRequest(newTestContext(url.Values{}))

	if pr.Page != 1 || pr.PageSize != 20 {
		t.Errorf("expected page 1 size 20, got %d/%d", pr.Page, pr.PageSize)
	}
	if pr.Sort != "id:desc" {
		t.Errorf("expected Sort=id:desc, got %s", pr.Sort)
	}
	if len(pr.Filter) != 0 {
		t.Errorf("expected empty Filter, got %v", pr.Filter)
	}
}

func TestParsePageRequest_CustomValues(t *testing.T) {
	pr := ParsePageRequest(newTestContext(url.Values{
		"page":        {"3"},
		"page_size":   {"50"},
		"sort":        {"user_id:asc"},
		"is_active":   {"true"},
		"email__like": {"example.com"},
		"company":     {""},
	}))

	if pr.Page != 3 || pr.PageSize != 50 {
		t.Errorf("expected page 3 size 50, got %d/%d", pr.Page, pr.PageSize)
	}
	if pr.Sort != "user_id:asc" {
		t.Errorf("expected Sort=user_id:asc, got %s", pr.Sort)
	}
	if pr.Filter["is_active"] != "true" || pr.Filter["email__like"] != "example.com" {
		t.Errorf("unexpected filter: %v", pr.Filter)
	}
	if _, ok := pr.Filter["company"]; ok {
		t.Error("expected empty filter value to be excluded")
	}
}

func TestParsePageRequest_Clamping(t *testing.T) {
	tests := []struct {
		name         string
		query        url.Values
		wantPage     int
		wantPageSize int
	}{
		{"zero page", url.Values{"page": {"0"}}, 1, 20},
		{"negative page", url.Values{"page": {"-5"}}, 1, 20},
		{"zero page_size", url.Values{"page_size": {"0"}}, 1, 20},
		{"negative page_size", url.Values{"page_size": {"-5"}}, 1, 20},
		{"page_size above maximum", url.Values{"page_size": {"200"}}, 1, 100},
		{"non numeric", url.Values{"page": {"x"}, "page_size": {"abc"}}, 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := ParsePageRequest(newTestContext(tt.query))
			if pr.Page != tt.wantPage || pr.PageSize != tt.wantPageSize {
				t.Errorf("got page %d size %d, want %d/%d", pr.Page, pr.PageSize, tt.wantPage, tt.wantPageSize)
			}
		})
	}
}

func TestPageOf(t *testing.T) {
	tests := []struct {
		name      string
		items     []string
		total     int64
		pageSize  int
		wantPages int
	}{
		{"exact division", []string{"a", "b"}, 10, 5, 2},
		{"with remainder", []string{"a"}, 11, 5, 3},
		{"zero total", nil, 0, 20, 0},
		{"single page", []string{"a", "b", "c"}, 3, 20, 1},
		{"zero page size", nil, 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := domain.PageRequest{Page: 1, PageSize: tt.pageSize}
			result := PageOf(tt.items, tt.total, req)

			if result.TotalPages != tt.wantPages {
				t.Errorf("TotalPages: want %d, got %d", tt.wantPages, result.TotalPages)
			}
			if result.Items == nil {
				t.Error("expected non-nil Items slice")
			}
			if result.Total != tt.total || result.PageSize != tt.pageSize {
				t.Errorf("unexpected metadata: %+v", result)
			}
		})
	}
}

func TestIsAllowed(t *testing.T) {
	allowed := []string{"user_id", "email", "is_active"}

	if !isAllowed("user_id", allowed) {
		t.Error("expected 'user_id' to be allowed")
	}
	for _, f := range []string{"password_hash", "", "user_id;DROP", "email OR 1=1"} {
		if isAllowed(f, allowed) {
			t.Errorf("expected %q to be rejected", f)
		}
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		name    string
		sort    string
		applied bool
	}{
		{"valid field asc", "user_id:asc", true},
		{"valid field desc", "id:desc", true},
		{"upper case direction", "id:DESC", true},
		{"field not in allowed list", "password_hash:asc", false},
		{"malformed no colon", "user_id", false},
		{"invalid direction", "user_id:up", false},
		{"sql injection in field", "id;DROP TABLE business_users--:asc", false},
		{"empty field", ":asc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := domain.PageRequest{Sort: tt.sort}
			result := Sort(req, []string{"id", "user_id"})(newDummyDB(t))
			_, hasOrder := result.Statement.Clauses["ORDER BY"]
			if hasOrder != tt.applied {
				t.Errorf("Order clause applied=%v, want %v", hasOrder, tt.applied)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		filter  map[string]string
		applied bool
	}{
		{"exact match", map[string]string{"is_active": "true"}, true},
		{"like match", map[string]string{"email__like": "example"}, true},
		{"field not in allowed", map[string]string{"password_hash": "x"}, false},
		{"like field not in allowed", map[string]string{"password_hash__like": "x"}, false},
		{"sql injection in key", map[string]string{"email;DROP TABLE--": "v"}, false},
		{"mixed valid and invalid", map[string]string{"is_active": "true", "password_hash": "x"}, true},
		{"empty filter map", map[string]string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := domain.PageRequest{Filter: tt.filter}
			result := Filter(req, []string{"email", "is_active"})(newDummyDB(t))
			_, hasWhere := result.Statement.Clauses["WHERE"]
			if hasWhere != tt.applied {
				t.Errorf("Where clause applied=%v, want %v", hasWhere, tt.applied)
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	req := domain.PageRequest{Page: 3, PageSize: 10}
	result := Paginate(req)(newDummyDB(t))
	if _, ok := result.Statement.Clauses["LIMIT"]; !ok {
		t.Error("expected LIMIT clause to be applied")
	}
}

func TestListPage_SQLite(t *testing.T) {
	db := newTxTestDB(t)
	for _, email := range []string{"a@example.com", "b@example.com", "c@other.org"} {
		if err := db.Create(newVerification(email)).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	fields := ListFields{Sortable: []string{"id", "email"}, Filterable: []string{"email"}}

	req := domain.PageRequest{Page: 1, PageSize: 2, Sort: "email:asc"}
	page, err := ListPage[domain.EmailVerification](context.Background(), db, req, fields)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if page.Total != 3 || page.TotalPages != 2 || len(page.Items) != 2 {
		t.Fatalf("unexpected page: total=%d pages=%d items=%d", page.Total, page.TotalPages, len(page.Items))
	}
	if page.Items[0].Email != "a@example.com" {
		t.Errorf("expected sorted first item a@example.com, got %s", page.Items[0].Email)
	}

	req = domain.PageRequest{Page: 1, PageSize: 10, Filter: map[string]string{"email__like": "example.com"}}
	page, err = ListPage[domain.EmailVerification](context.Background(), db, req, fields)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("expected 2 filtered rows, got %d", page.Total)
	}
}
