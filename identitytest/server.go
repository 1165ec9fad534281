// Package identitytest provides an in-process fake of the external
// identity service for tests and local development. It implements the
// real contract: POST /auth-user exchanges credentials for a signed
// token, POST /verify-token checks a bearer token.
package identitytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL matches the cookie lifetime used by the application.
const DefaultTokenTTL = time.Hour

// Server wraps an httptest.Server speaking the identity contract.
type Server struct {
	*httptest.Server

	secret []byte
	users  map[string]string
	ttl    time.Duration

	// FailAuth forces /auth-user to answer 500.
	FailAuth bool

	// FailVerify forces /verify-token to answer 500.
	FailVerify bool
}

type Option func(*Server)

// WithUser registers a username with a bcrypt-hashed password.
func WithUser(username, password string) Option {
	return func(s *Server) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			panic("identitytest: hash password: " + err.Error())
		}
		s.users[username] = string(hash)
	}
}

// WithTokenTTL overrides the issued token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.ttl = ttl
	}
}

// WithSecret overrides the HS256 signing secret.
func WithSecret(secret []byte) Option {
	return func(s *Server) {
		s.secret = secret
	}
}

// NewServer starts the fake service. Callers own the shutdown via Close.
func NewServer(opts ...Option) *Server {
	s := &Server{
		secret: []byte(uuid.NewString()),
		users:  map[string]string{},
		ttl:    DefaultTokenTTL,
	}

	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth-user", s.handleAuth)
	mux.HandleFunc("/verify-token", s.handleVerify)

	s.Server = httptest.NewServer(mux)

	return s
}

// MintToken signs a token for user outside the login flow, expired tokens
// come from a negative ttl.
func (s *Server) MintToken(user string, ttl time.Duration) string {
	now := time.Now()

	subject := user
	if id, err := hashid.NewUUID(user); err == nil {
		subject = id.String()
	}

	claims := jwt.MapClaims{
		"sub":  subject,
		"user": user,
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		panic("identitytest: sign token: " + err.Error())
	}

	return signed
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if s.FailAuth {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	var payload struct {
		User string `json:"user"`
		Pass string `json:"pass"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	hash, ok := s.users[payload.User]
	if !ok || bcrypt.CompareHashAndPassword([]byte(hash), []byte(payload.Pass)) != nil {
		writeJSON(w, http.StatusOK, map[string]any{"verified": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"verified": true,
		"token":    s.MintToken(payload.User, s.ttl),
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if s.FailVerify {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if raw == "" {
		writeJSON(w, http.StatusOK, map[string]any{"valid": false, "error": "missing token"})
		return
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		writeJSON(w, http.StatusOK, map[string]any{"valid": false, "error": "invalid token"})
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"valid": false, "error": "invalid claims"})
		return
	}

	body := map[string]any{
		"valid": true,
		"user":  claims["user"],
	}
	if iat, ok := claims["iat"].(float64); ok {
		body["iat"] = int64(iat)
	}
	if exp, ok := claims["exp"].(float64); ok {
		body["exp"] = int64(exp)
	}

	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
