package auth

import (
	"testing"
	"time"

	"github.com/smartsniper31/network-guardian/internal/models"
)

func TestSessionCreateAndGet(t *testing.T) {
	m := NewSessionManager(time.Hour)

	session, err := m.Create(models.Credential{Name: "Admin", Email: "admin@home.lan"})
	if err != nil {
		t.Fatal(err)
	}
	if session.Token == "" {
		t.Fatal("expected a token")
	}

	got := m.Get(session.Token)
	if got == nil {
		t.Fatal("expected a live session")
	}
	if got.Email != "admin@home.lan" {
		t.Errorf("unexpected session: %+v", got)
	}
}

func TestSessionGetEmptyToken(t *testing.T) {
	m := NewSessionManager(time.Hour)
	if m.Get("") != nil {
		t.Error("empty token must not resolve")
	}
}

func TestSessionExpiry(t *testing.T) {
	m := NewSessionManager(-time.Second) // negative TTL falls back to default
	m.ttl = -time.Second                 // then force instant expiry

	session, err := m.Create(models.Credential{Email: "admin@home.lan"})
	if err != nil {
		t.Fatal(err)
	}
	if m.Get(session.Token) != nil {
		t.Error("expired session should not resolve")
	}
}

func TestSessionDelete(t *testing.T) {
	m := NewSessionManager(time.Hour)
	session, _ := m.Create(models.Credential{Email: "admin@home.lan"})

	m.Delete(session.Token)
	if m.Get(session.Token) != nil {
		t.Error("deleted session should not resolve")
	}
}

func TestSessionDeleteAll(t *testing.T) {
	m := NewSessionManager(time.Hour)
	a, _ := m.Create(models.Credential{Email: "a@home.lan"})
	b, _ := m.Create(models.Credential{Email: "b@home.lan"})

	m.DeleteAll()
	if m.Get(a.Token) != nil || m.Get(b.Token) != nil {
		t.Error("DeleteAll left a live session behind")
	}
}

func TestCleanupExpired(t *testing.T) {
	m := NewSessionManager(time.Hour)
	live, _ := m.Create(models.Credential{Email: "live@home.lan"})

	m.ttl = -time.Second
	dead, _ := m.Create(models.Credential{Email: "dead@home.lan"})

	m.CleanupExpired()

	if m.Get(live.Token) == nil {
		t.Error("live session was removed")
	}
	if _, ok := m.sessions[dead.Token]; ok {
		t.Error("expired session survived cleanup")
	}
}
