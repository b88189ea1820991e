package email

import (
	"bytes"
	"context"
	"log/slog"
	"net/smtp"
	"strings"
	"testing"
)

func TestSMTPMailer_Send(t *testing.T) {
	m, err := NewSMTPMailer("smtp.example.com", 587, "user", "secret", "Flying Pig <noreply@example.com>")
	if err != nil {
		t.Fatalf("NewSMTPMailer: %v", err)
	}

	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
		gotAuth smtp.Auth
	)
	m.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, string(msg)
		return nil
	}

	err = m.Send(context.Background(), Message{To: "pig@example.com", Subject: "Código", Body: "line one\nline two"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Errorf("addr = %q", gotAddr)
	}
	if gotAuth == nil {
		t.Error("expected auth when username is set")
	}
	if gotFrom != "noreply@example.com" {
		t.Errorf("envelope from = %q", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "pig@example.com" {
		t.Errorf("to = %v", gotTo)
	}
	for _, want := range []string{
		"From: \"Flying Pig\" <noreply@example.com>\r\n",
		"To: pig@example.com\r\n",
		"Subject: =?utf-8?q?C=C3=B3digo?=\r\n",
		"Content-Type: text/plain; charset=UTF-8\r\n",
		"\r\n\r\nline one\r\nline two\r\n",
	} {
		if !strings.Contains(gotMsg, want) {
			t.Errorf("message missing %q:\n%s", want, gotMsg)
		}
	}
}

func TestSMTPMailer_NoAuthAndCanceled(t *testing.T) {
	m, err := NewSMTPMailer("localhost", 25, "", "", "noreply@example.com")
	if err != nil {
		t.Fatalf("NewSMTPMailer: %v", err)
	}
	if m.auth != nil {
		t.Error("auth should be nil without username")
	}
	called := false
	m.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Send(ctx, Message{To: "a@example.com"}); err == nil {
		t.Error("expected context error")
	}
	if called {
		t.Error("canceled send must not dial")
	}
}

func TestNewSMTPMailer_InvalidFrom(t *testing.T) {
	if _, err := NewSMTPMailer("localhost", 25, "", "", "not an address"); err == nil {
		t.Error("expected error")
	}
}

func TestLogMailer_Send(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(slog.New(slog.NewTextHandler(&buf, nil)))

	if err := m.Send(context.Background(), Message{To: "a@example.com", Subject: "hi", Body: "code 123456"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "to=a@example.com") || !strings.Contains(out, "123456") {
		t.Errorf("unexpected log output: %s", out)
	}
}
