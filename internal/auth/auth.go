package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/supplier-gate/internal/internaltypes"
	"github.com/example/supplier-gate/internal/store"
)

// Store authenticates warehouse staff against the credential sheet and keeps
// the session in a securecookie.
type Store struct {
	sc    *securecookie.SecureCookie
	snaps store.Store
}

type ctxKey string

const usernameKey ctxKey = "username"

const cookieName = "suppliergate_session"

func NewStore(snaps store.Store, hashKey, blockKey []byte) *Store {
	sc := securecookie.New(hashKey, blockKey)
	// keep cookie small and secure
	sc.MaxAge(int((14 * 24 * time.Hour).Seconds()))
	return &Store{sc: sc, snaps: snaps}
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
	return err == nil
}

// Authenticate finds the credential row for username and checks the bcrypt
// hash. The credential collection rides in the same snapshot as the
// reservations, so a freshly seeded user appears after the next load.
func (s *Store) Authenticate(ctx context.Context, username, password string) (store.Credential, error) {
	snap, err := s.snaps.Load(ctx)
	if err != nil {
		return store.Credential{}, fmt.Errorf("store: %w", err)
	}
	for _, c := range snap.Credentials {
		if c.Username != username {
			continue
		}
		if !CheckPassword(c.PasswordHash, password) {
			return store.Credential{}, internaltypes.ErrUnauthorized
		}
		return c, nil
	}
	return store.Credential{}, internaltypes.ErrUnauthorized
}

// SeedUser inserts or replaces a credential row with a bcrypt hash of
// password. Used by the `user add` command.
func (s *Store) SeedUser(ctx context.Context, supplier, username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	snap, err := s.snaps.Load(ctx)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	cred := store.Credential{Supplier: supplier, Username: username, PasswordHash: hash}
	replaced := false
	for i := range snap.Credentials {
		if snap.Credentials[i].Username == username {
			snap.Credentials[i] = cred
			replaced = true
			break
		}
	}
	if !replaced {
		snap.Credentials = append(snap.Credentials, cred)
	}
	if err := s.snaps.Save(ctx, snap); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

type Session struct {
	Username string
}

func (s *Store) SetSession(w http.ResponseWriter, r *http.Request, username string) error {
	val := map[string]string{"user": username}
	encoded, err := s.sc.Encode(cookieName, val)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil, // ok for local http; secure in https
		MaxAge:   int((14 * 24 * time.Hour).Seconds()),
	})
	return nil
}

func (s *Store) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (s *Store) GetSession(r *http.Request) (Session, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return Session{}, false
	}
	val := map[string]string{}
	if err := s.sc.Decode(cookieName, c.Value, &val); err != nil {
		return Session{}, false
	}
	user := val["user"]
	if user == "" {
		return Session{}, false
	}
	return Session{Username: user}, true
}

func (s *Store) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.GetSession(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		ctx := context.WithValue(r.Context(), usernameKey, sess.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UsernameFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(usernameKey).(string)
	return u, ok
}
