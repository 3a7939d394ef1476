package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/securecookie"

	"github.com/example/supplier-gate/internal/internaltypes"
	"github.com/example/supplier-gate/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mem := store.NewMemory(store.Snapshot{})
	s := NewStore(mem, securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32))
	if err := s.SeedUser(context.Background(), "Acme Foods", "gate1", "hunter2"); err != nil {
		t.Fatalf("SeedUser failed: %v", err)
	}
	return s
}

func TestAuthenticate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cred, err := s.Authenticate(ctx, "gate1", "hunter2")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if cred.Supplier != "Acme Foods" {
		t.Errorf("supplier = %q, want %q", cred.Supplier, "Acme Foods")
	}

	if _, err := s.Authenticate(ctx, "gate1", "wrong"); !errors.Is(err, internaltypes.ErrUnauthorized) {
		t.Errorf("bad password: err = %v, want ErrUnauthorized", err)
	}
	if _, err := s.Authenticate(ctx, "nobody", "hunter2"); !errors.Is(err, internaltypes.ErrUnauthorized) {
		t.Errorf("unknown user: err = %v, want ErrUnauthorized", err)
	}
}

func TestSeedUser_ReplacesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SeedUser(ctx, "Acme Foods", "gate1", "newpass"); err != nil {
		t.Fatalf("SeedUser failed: %v", err)
	}
	if _, err := s.Authenticate(ctx, "gate1", "hunter2"); !errors.Is(err, internaltypes.ErrUnauthorized) {
		t.Errorf("old password still accepted after reseed")
	}
	if _, err := s.Authenticate(ctx, "gate1", "newpass"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := newTestStore(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := s.SetSession(w, r, "gate1"); err != nil {
		t.Fatalf("SetSession failed: %v", err)
	}

	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r2.AddCookie(c)
	}
	sess, ok := s.GetSession(r2)
	if !ok || sess.Username != "gate1" {
		t.Fatalf("GetSession = %+v, %v; want gate1 session", sess, ok)
	}
}

func TestRequireAuth_RedirectsAnonymous(t *testing.T) {
	s := newTestStore(t)

	h := s.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := UsernameFromContext(r.Context())
		_, _ = w.Write([]byte(u))
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusFound {
		t.Errorf("anonymous request: status = %d, want %d", w.Code, http.StatusFound)
	}

	// With a valid cookie the handler runs and sees the username.
	setW := httptest.NewRecorder()
	setR := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := s.SetSession(setW, setR, "gate1"); err != nil {
		t.Fatalf("SetSession failed: %v", err)
	}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range setW.Result().Cookies() {
		r.AddCookie(c)
	}
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK || w.Body.String() != "gate1" {
		t.Errorf("authed request: status = %d body = %q, want 200 %q", w.Code, w.Body.String(), "gate1")
	}
}
