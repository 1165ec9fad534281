package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/tlsunbound/authgate"
)

// ExpiredSessionMessage is shown in the login modal when a periodic check
// finds a previously authenticated session is no longer valid.
const ExpiredSessionMessage = "Your session has expired. Please login again."

// DefaultCheckInterval between silent periodic re-validations.
const DefaultCheckInterval = 60 * time.Second

// State is a snapshot of the session machine. User is nil while loading and
// when unauthenticated.
type State struct {
	User      *authgate.AuthUser
	Loading   bool
	ModalOpen bool
	Err       string
}

type Config struct {
	// BaseURL of the application serving /auth, /verify, and /logout.
	BaseURL string

	// HTTPClient used for all calls. A cookie jar is installed when the
	// client does not carry one, the jar is the local token store.
	HTTPClient *http.Client

	// CheckInterval between periodic re-validations (default: 60s)
	CheckInterval time.Duration

	CookieName string

	Logger authgate.Logger

	// OnChange receives every state snapshot after it is committed.
	OnChange func(State)

	// OnRefresh fires after login and logout so the view can reload data.
	OnRefresh func()

	// OnNavigate fires after logout with the home path.
	OnNavigate func(path string)
}

// Manager owns the session lifecycle for a single page load. Construct one
// per mount and pass it by reference, it is not a package singleton.
type Manager struct {
	base     *url.URL
	http     *http.Client
	interval time.Duration
	cookie   string
	logger   authgate.Logger

	onChange   func(State)
	onRefresh  func()
	onNavigate func(path string)

	mu      sync.Mutex
	state   State
	mounted bool

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.BaseURL == "" {
		return nil, goerrors.New("session: base URL is required", goerrors.CategoryBadInput)
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "session: invalid base URL")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	if client.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "session: cookie jar")
		}
		client.Jar = jar
	}

	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultCheckInterval
	}

	if cfg.CookieName == "" {
		cfg.CookieName = authgate.TokenCookieName
	}

	logger := cfg.Logger
	if logger == nil {
		logger = authgate.DefaultLogger()
	}

	return &Manager{
		base:       base,
		http:       client,
		interval:   cfg.CheckInterval,
		cookie:     cfg.CookieName,
		logger:     logger,
		onChange:   cfg.OnChange,
		onRefresh:  cfg.OnRefresh,
		onNavigate: cfg.OnNavigate,
		state:      State{Loading: true},
		done:       make(chan struct{}),
	}, nil
}

// Start runs the mount check and then owns the periodic ticker until Stop
// or ctx cancellation.
func (m *Manager) Start(ctx context.Context) {
	m.check(ctx, checkMount)

	m.mu.Lock()
	m.mounted = true
	m.ticker = time.NewTicker(m.interval)
	ticker := m.ticker
	m.mu.Unlock()

	go func() {
		for {
			select {
			case <-m.done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.check(ctx, checkPeriodic)
			}
		}
	}()
}

// Stop is idempotent and prevents any further callback from firing.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
		m.mu.Lock()
		if m.ticker != nil {
			m.ticker.Stop()
		}
		m.mu.Unlock()
	})
}

// RouteChanged re-validates silently after a client-side navigation. It is
// a no-op until the mount check has completed.
func (m *Manager) RouteChanged(ctx context.Context) {
	m.mu.Lock()
	mounted := m.mounted
	m.mu.Unlock()

	if !mounted {
		return
	}

	m.check(ctx, checkRoute)
}

// State returns the current snapshot.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// OpenLoginModal shows the overlay with an optional reason message.
func (m *Manager) OpenLoginModal(reason string) {
	m.commit(func(s *State) {
		s.ModalOpen = true
		s.Err = reason
	})
}

func (m *Manager) CloseLoginModal() {
	m.commit(func(s *State) {
		s.ModalOpen = false
		s.Err = ""
	})
}

// Login authenticates against the login endpoint. On failure the server's
// error is returned for the UI and state is left untouched. On success the
// user is set, the modal closes, and OnRefresh fires.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"user": username, "pass": password}

	res, err := m.postJSON(ctx, "/auth", body)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "session: login request")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return loginError(res)
	}

	var payload struct {
		Success bool   `json:"success"`
		User    string `json:"user"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "session: decode login response")
	}

	m.commit(func(s *State) {
		s.User = &authgate.AuthUser{User: payload.User}
		s.ModalOpen = false
		s.Err = ""
	})

	if m.onRefresh != nil {
		m.onRefresh()
	}

	return nil
}

// Logout is best-effort: endpoint errors are logged, local state is always
// cleared, and the caller is navigated home.
func (m *Manager) Logout(ctx context.Context) {
	res, err := m.postJSON(ctx, "/logout", nil)
	if err != nil {
		m.logger.Error("session: logout: %s", err)
	} else {
		res.Body.Close()
	}

	m.deleteToken()

	m.commit(func(s *State) {
		s.User = nil
		s.ModalOpen = false
		s.Err = ""
	})

	if m.onNavigate != nil {
		m.onNavigate("/")
	}

	if m.onRefresh != nil {
		m.onRefresh()
	}
}

type checkKind int

const (
	checkMount checkKind = iota
	checkRoute
	checkPeriodic
)

// check derives the full state from a single verify round trip. Checks are
// never cancelled, a stale completion simply overwrites state.
func (m *Manager) check(ctx context.Context, kind checkKind) {
	user, err := m.fetchUser(ctx)
	if err != nil {
		m.logger.Error("session: verify: %s", err)
		user = nil
	}

	m.commit(func(s *State) {
		prev := s.User
		s.User = user
		if kind == checkMount {
			s.Loading = false
		}
		if kind == checkPeriodic && prev != nil && user == nil {
			s.ModalOpen = true
			s.Err = ExpiredSessionMessage
		}
	})
}

// fetchUser short-circuits to unauthenticated when the local cookie is
// absent, otherwise asks the verify endpoint. An invalid or failed verify
// drops the local cookie so the dead token is not resent.
func (m *Manager) fetchUser(ctx context.Context) (*authgate.AuthUser, error) {
	if !m.hasToken() {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.endpoint("/verify"), nil)
	if err != nil {
		return nil, err
	}

	res, err := m.http.Do(req)
	if err != nil {
		m.deleteToken()
		return nil, err
	}
	defer res.Body.Close()

	var payload struct {
		Valid    bool   `json:"valid"`
		User     string `json:"user"`
		IssuedAt int64  `json:"iat"`
		Exp      int64  `json:"exp"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK || !payload.Valid {
		m.deleteToken()
		return nil, nil
	}

	return &authgate.AuthUser{
		User:     payload.User,
		IssuedAt: payload.IssuedAt,
		Exp:      payload.Exp,
	}, nil
}

func (m *Manager) commit(mutate func(*State)) {
	m.mu.Lock()
	mutate(&m.state)
	snapshot := m.state
	m.mu.Unlock()

	if m.onChange != nil {
		m.onChange(snapshot)
	}
}

func (m *Manager) hasToken() bool {
	for _, c := range m.http.Jar.Cookies(m.base) {
		if c.Name == m.cookie && c.Value != "" {
			return true
		}
	}
	return false
}

func (m *Manager) deleteToken() {
	m.http.Jar.SetCookies(m.base, []*http.Cookie{{
		Name:   m.cookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	}})
}

func (m *Manager) endpoint(path string) string {
	return m.base.JoinPath(path).String()
}

func (m *Manager) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint(path), payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return m.http.Do(req)
}

func loginError(res *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	msg := "Authentication failed"
	if err := json.NewDecoder(res.Body).Decode(&body); err == nil && body.Error != "" {
		msg = body.Error
	}

	switch res.StatusCode {
	case http.StatusBadRequest:
		return goerrors.New(msg, goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	case http.StatusUnauthorized:
		return goerrors.New(msg, goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized)
	default:
		return goerrors.New(msg, goerrors.CategoryOperation).
			WithCode(goerrors.CodeInternal)
	}
}
