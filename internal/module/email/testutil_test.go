package email

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/simp-lee/flyingpig/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(&domain.EmailVerification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// recordingMailer keeps every message it is asked to send.
type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) last(t *testing.T) Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no message sent")
	}
	return m.sent[len(m.sent)-1]
}

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }
func newClock() *clock                   { return &clock{t: time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)} }

func newTestService(t *testing.T, opts Options) (*Service, *recordingMailer, *clock) {
	t.Helper()
	mailer := &recordingMailer{}
	clk := newClock()
	svc := NewService(NewGormStore(setupTestDB(t)), mailer, opts, nil)
	svc.now = clk.now
	codes := []string{"123456", "654321", "111111", "222222"}
	svc.newCode = func() (string, error) {
		if len(codes) == 0 {
			return "", errors.New("out of codes")
		}
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}
	return svc, mailer, clk
}
