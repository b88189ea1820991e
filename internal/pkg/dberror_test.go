package pkg

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/simp-lee/flyingpig/internal/domain"
)

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"record not found", gorm.ErrRecordNotFound, domain.IsNotFound},
		{"wrapped not found", fmt.Errorf("query: %w", gorm.ErrRecordNotFound), domain.IsNotFound},
		{"translated duplicate", gorm.ErrDuplicatedKey, domain.IsAlreadyExists},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: business_users.email (2067)"), domain.IsAlreadyExists},
		{"postgres duplicate", errors.New(`ERROR: duplicate key value violates unique constraint "idx_email"`), domain.IsAlreadyExists},
		{"other", errors.New("connection refused"), domain.IsInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapDBError(tt.err); !tt.check(got) {
				t.Errorf("MapDBError(%v) = %v", tt.err, got)
			}
		})
	}

	if MapDBError(nil) != nil {
		t.Error("MapDBError(nil) must be nil")
	}
}
