package session_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"taskdeck/internal/config"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
)

func TestSaveLoadClear(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir(), Settings: config.Settings{Theme: config.ThemeDark}}

	res := service.AuthResult{
		AccessToken: "jwt-abc",
		User:        service.User{ID: "7", Name: "Sam", Email: "sam@example.com"},
	}
	sess := session.New(res, time.Now())
	if !sess.Authenticated() {
		t.Fatal("fresh session should be authenticated")
	}

	if err := session.Save(cfg, sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	info, err := os.Stat(cfg.SessionPath())
	if err != nil {
		t.Fatalf("session file missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}

	loaded, err := session.Load(cfg)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.User != res.User {
		t.Errorf("expected user %+v, got %+v", res.User, loaded.User)
	}
	if loaded.Token.AccessToken != "jwt-abc" || loaded.Token.TokenType != "Bearer" {
		t.Errorf("unexpected token %+v", loaded.Token)
	}
	if loaded.Theme != config.ThemeDark {
		t.Errorf("expected theme from settings, got %q", loaded.Theme)
	}

	if err := session.Clear(cfg); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := session.Clear(cfg); err != nil {
		t.Fatalf("second Clear should be a no-op, got %v", err)
	}
	if _, err := session.Load(cfg); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("expected ErrNoSession after Clear, got %v", err)
	}
}

func TestAuthenticated_ExpiredToken(t *testing.T) {
	sess := session.New(service.AuthResult{AccessToken: "old"}, time.Now().Add(-8*24*time.Hour))
	if sess.Authenticated() {
		t.Error("token older than its lifetime should not be authenticated")
	}

	var none *session.Context
	if none.Authenticated() {
		t.Error("nil session should not be authenticated")
	}
}

func TestLoad_Corrupt(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}
	if err := os.WriteFile(cfg.SessionPath(), []byte("{not json"), 0600); err != nil {
		t.Fatalf("failed to write session: %v", err)
	}
	sess, err := session.Load(cfg)
	if err == nil || errors.Is(err, session.ErrNoSession) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if sess == nil || sess.Theme != config.ThemeLight {
		t.Error("Load should still return a context carrying the theme")
	}
}
