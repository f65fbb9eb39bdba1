// Package services contains application services for the NoteHub client.
// This file defines the session manager: login/logout/register, profile
// updates, token persistence, the offline identity cache and reconciliation
// after connectivity changes.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/notehub/internal/client/metrics"
	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/netmon"
	"github.com/dmitrijs2005/notehub/internal/client/notify"
	"github.com/dmitrijs2005/notehub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/notehub/internal/logging"
)

// Store keys owned by the session manager.
const (
	TokenKey     = "token"
	UserCacheKey = "auth_user_cache"
)

const (
	msgLoginSuccess         = "Login successful!"
	msgLoginFailed          = "Login failed!"
	msgLogoutSuccess        = "Logged out successfully!"
	msgRegisterSuccess      = "Registration successful!"
	msgRegisterFailed       = "Registration failed"
	msgProfileUpdated       = "Profile updated successfully!"
	msgProfileUpdateFailed  = "Profile update failed!"
	msgInitFailed           = "Failed to initialize authentication"
	msgOffline              = "You are currently offline"
	msgBackOnline           = "Connection restored"
	msgMissingUser          = "Login response has no user"
	msgPersistSessionFailed = "Could not save the session locally"
)

// AuthAPI is the subset of the REST API the session manager consumes.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	RegisterUser(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error)
	CurrentUser(ctx context.Context) (*models.User, error)
	VerifyToken(ctx context.Context) (bool, error)
	UpdateUserProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error)
}

// HeaderSink is the outbound header context the bearer token is attached to.
type HeaderSink interface {
	SetBearer(token string)
	Clear()
	// ClearIf clears the bearer only while it still equals token.
	ClearIf(token string)
	Bearer() string
}

// Session is a read-only snapshot of the authentication state.
type Session struct {
	LoggedIn bool
	User     *models.User
	Loading  bool
	// Error is the last user-visible failure; empty when there is none.
	Error  string
	Online bool
	// Version is the generation of the operation that produced this snapshot.
	Version uint64
}

// SessionManager owns the session state and is the only writer of the
// token / cached identity keys and of the Authorization header.
//
// Every user action and every connectivity event starts a new generation.
// An operation commits its result only if its generation is still the
// latest one; otherwise the result is dropped and ErrSuperseded returned.
// All commits happen under mu together with the store and header writes
// they depend on, so a published LoggedIn state always has its token
// persisted and attached.
type SessionManager struct {
	api      AuthAPI
	store    metadata.Repository
	headers  HeaderSink
	notifier notify.Sink
	log      logging.Logger
	metrics  *metrics.Collector
	now      func() time.Time

	mu         sync.Mutex
	state      Session
	generation uint64

	inflight sync.WaitGroup
}

// NewSessionManager builds a manager in the initial loading state. online is
// the connectivity known at startup; m may be nil.
func NewSessionManager(api AuthAPI, store metadata.Repository, headers HeaderSink, notifier notify.Sink,
	log logging.Logger, m *metrics.Collector, online bool) *SessionManager {
	return &SessionManager{
		api:      api,
		store:    store,
		headers:  headers,
		notifier: notifier,
		log:      log.With("component", "session"),
		metrics:  m,
		now:      time.Now,
		state:    Session{Loading: true, Online: online},
	}
}

// Snapshot returns a copy of the current session.
func (m *SessionManager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.state
	s.User = s.User.Clone()
	return s
}

// begin starts a new generation, applying mutate to the visible state first.
func (m *SessionManager) begin(mutate func(s *Session)) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	if mutate != nil {
		next := m.state
		mutate(&next)
		m.setStateLocked(next)
	}
	return m.generation
}

// currentLocked reports whether gen is still the latest generation.
func (m *SessionManager) currentLocked(gen uint64) bool {
	return gen == m.generation
}

func (m *SessionManager) setStateLocked(next Session) {
	next.Version = m.generation
	m.state = next
	m.metrics.SetSession(next.LoggedIn, next.Online)
	m.log.Debug(context.Background(), "session state",
		"version", next.Version,
		"logged_in", next.LoggedIn,
		"loading", next.Loading,
		"online", next.Online,
		"error", next.Error)
}

func (m *SessionManager) loggedInLocked(user *models.User) {
	m.setStateLocked(Session{LoggedIn: true, User: user, Online: m.state.Online})
}

func (m *SessionManager) loggedOutLocked(errMsg string) {
	m.setStateLocked(Session{Error: errMsg, Online: m.state.Online})
}

// failLocked keeps who is logged in and records errMsg.
func (m *SessionManager) failLocked(errMsg string) {
	next := m.state
	next.Loading = false
	next.Error = errMsg
	m.setStateLocked(next)
}

func (m *SessionManager) online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Online
}

// Start runs the startup initialization together with a best-effort token
// verification and returns when both are done.
func (m *SessionManager) Start(ctx context.Context) {
	gen := m.begin(func(s *Session) { s.Loading = true })

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		m.initialize(ctx, gen)
	}()
	go func() {
		defer wg.Done()
		m.verify(ctx, gen)
	}()
	wg.Wait()
}

// Initialize re-derives the session from the stored token (online) or the
// cached identity (offline). Failures degrade to cached or logged-out state
// and are never returned.
func (m *SessionManager) Initialize(ctx context.Context) {
	gen := m.begin(func(s *Session) { s.Loading = true })
	m.initialize(ctx, gen)
}

func (m *SessionManager) initialize(ctx context.Context, gen uint64) {
	if !m.online() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if !m.currentLocked(gen) {
			m.metrics.ObserveOperation("initialize", metrics.OutcomeSuperseded)
			return
		}
		if cached := m.cachedUserLocked(ctx); cached != nil {
			m.loggedInLocked(cached)
		} else {
			m.loggedOutLocked("")
		}
		m.metrics.ObserveOperation("initialize", metrics.OutcomeSkipped)
		return
	}

	token, ok := m.attachStoredToken(ctx, gen)
	if !ok {
		return
	}

	user, err := m.api.CurrentUser(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.currentLocked(gen) {
		m.metrics.ObserveOperation("initialize", metrics.OutcomeSuperseded)
		return
	}

	switch {
	case err != nil:
		m.log.Error(ctx, "auth initialization failed", "error", err)
		m.purgeTokenLocked(ctx, token)
		if cached := m.cachedUserLocked(ctx); cached != nil {
			m.setStateLocked(Session{LoggedIn: true, User: cached, Error: msgInitFailed, Online: m.state.Online})
		} else {
			m.loggedOutLocked(msgInitFailed)
		}
		m.metrics.ObserveOperation("initialize", metrics.OutcomeFailure)

	case user == nil:
		m.log.Info(ctx, "stored token rejected by server", "error", ErrTokenInvalid)
		m.purgeTokenLocked(ctx, token)
		m.loggedOutLocked("")
		m.metrics.ObserveOperation("initialize", metrics.OutcomeFailure)

	default:
		m.cacheUserLocked(ctx, user)
		m.loggedInLocked(user)
		m.metrics.ObserveOperation("initialize", metrics.OutcomeSuccess)
	}
}

// attachStoredToken reads the persisted token and attaches it to outbound
// headers. It commits LoggedOut and returns false when there is nothing to
// verify remotely.
func (m *SessionManager) attachStoredToken(ctx context.Context, gen uint64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.currentLocked(gen) {
		m.metrics.ObserveOperation("initialize", metrics.OutcomeSuperseded)
		return "", false
	}

	raw, err := m.store.Get(ctx, TokenKey)
	if err != nil {
		m.log.Error(ctx, "failed to read stored token", "error", err)
		if cached := m.cachedUserLocked(ctx); cached != nil {
			m.setStateLocked(Session{LoggedIn: true, User: cached, Error: msgInitFailed, Online: m.state.Online})
		} else {
			m.loggedOutLocked(msgInitFailed)
		}
		m.metrics.ObserveOperation("initialize", metrics.OutcomeFailure)
		return "", false
	}

	token := string(raw)
	if token == "" {
		m.headers.Clear()
		m.loggedOutLocked("")
		m.metrics.ObserveOperation("initialize", metrics.OutcomeSuccess)
		return "", false
	}

	if tokenExpired(token, m.now()) {
		m.log.Info(ctx, "stored token expired", "error", ErrTokenInvalid)
		m.purgeTokenLocked(ctx, token)
		m.loggedOutLocked("")
		m.metrics.ObserveOperation("initialize", metrics.OutcomeFailure)
		return "", false
	}

	m.headers.SetBearer(token)
	return token, true
}

// VerifyToken asks the server whether the stored token is still valid and,
// if so, refreshes the user. It never overrides a newer operation and never
// reports failures; on a negative answer it only clears Loading.
func (m *SessionManager) VerifyToken(ctx context.Context) {
	m.mu.Lock()
	gen := m.generation
	m.mu.Unlock()
	m.verify(ctx, gen)
}

func (m *SessionManager) verify(ctx context.Context, gen uint64) {
	m.mu.Lock()
	online := m.state.Online
	token, err := m.store.Get(ctx, TokenKey)
	m.mu.Unlock()

	if !online || err != nil || len(token) == 0 {
		m.clearLoading(gen)
		m.metrics.ObserveOperation("verify", metrics.OutcomeSkipped)
		return
	}

	ok, err := m.api.VerifyToken(ctx)
	if err != nil || !ok {
		if err != nil {
			m.log.Warn(ctx, "token verification failed", "error", err)
		}
		m.clearLoading(gen)
		m.metrics.ObserveOperation("verify", metrics.OutcomeFailure)
		return
	}

	user, err := m.api.CurrentUser(ctx)
	if err != nil || user == nil {
		m.clearLoading(gen)
		m.metrics.ObserveOperation("verify", metrics.OutcomeFailure)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.currentLocked(gen) {
		m.metrics.ObserveOperation("verify", metrics.OutcomeSuperseded)
		return
	}
	// The token may have been purged by initialization meanwhile.
	stored, err := m.store.Get(ctx, TokenKey)
	if err != nil || string(stored) != string(token) {
		m.clearLoadingLocked()
		m.metrics.ObserveOperation("verify", metrics.OutcomeSuperseded)
		return
	}
	m.cacheUserLocked(ctx, user)
	m.loggedInLocked(user)
	m.metrics.ObserveOperation("verify", metrics.OutcomeSuccess)
}

func (m *SessionManager) clearLoading(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.currentLocked(gen) {
		m.clearLoadingLocked()
	}
}

func (m *SessionManager) clearLoadingLocked() {
	if !m.state.Loading {
		return
	}
	next := m.state
	next.Loading = false
	m.setStateLocked(next)
}

// Login authenticates against the server. On success the token and the
// cached identity are persisted, the token is attached to outbound headers
// and only then is LoggedIn published.
func (m *SessionManager) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	gen := m.begin(func(s *Session) {
		s.Loading = true
		s.Error = ""
	})

	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		return nil, m.failAuth(ctx, gen, "login", ErrAuthenticationFailed, errorMessage(err, msgLoginFailed), err)
	}
	if resp == nil || !resp.Status || resp.Token == "" {
		msg := msgLoginFailed
		if resp != nil && resp.Message != "" {
			msg = resp.Message
		}
		return resp, m.failAuth(ctx, gen, "login", ErrAuthenticationFailed, msg, nil)
	}
	if resp.User == nil {
		return resp, m.failAuth(ctx, gen, "login", ErrAuthenticationFailed, msgMissingUser, nil)
	}

	if err := m.establish(ctx, gen, "login", ErrAuthenticationFailed, resp.Token, resp.User); err != nil {
		return resp, err
	}

	msg := resp.Message
	if msg == "" {
		msg = msgLoginSuccess
	}
	m.notifier.Success(ctx, msg)
	return resp, nil
}

// establish persists a new session and publishes LoggedIn, if gen is current.
func (m *SessionManager) establish(ctx context.Context, gen uint64, op string, kind error, token string, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.currentLocked(gen) {
		m.metrics.ObserveOperation(op, metrics.OutcomeSuperseded)
		return ErrSuperseded
	}

	cached, err := json.Marshal(user)
	if err != nil {
		return m.failAuthLocked(ctx, op, kind, msgPersistSessionFailed, err)
	}
	err = m.store.Update(ctx, func(ctx context.Context, r metadata.Repository) error {
		if err := r.Set(ctx, TokenKey, []byte(token)); err != nil {
			return err
		}
		return r.Set(ctx, UserCacheKey, cached)
	})
	if err != nil {
		m.log.Error(ctx, "failed to persist session", "error", err)
		return m.failAuthLocked(ctx, op, kind, msgPersistSessionFailed, err)
	}

	m.headers.SetBearer(token)
	m.loggedInLocked(user)
	m.metrics.ObserveOperation(op, metrics.OutcomeSuccess)
	return nil
}

func (m *SessionManager) failAuth(ctx context.Context, gen uint64, op string, kind error, msg string, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.currentLocked(gen) {
		m.metrics.ObserveOperation(op, metrics.OutcomeSuperseded)
		return ErrSuperseded
	}
	return m.failAuthLocked(ctx, op, kind, msg, cause)
}

func (m *SessionManager) failAuthLocked(ctx context.Context, op string, kind error, msg string, cause error) error {
	m.failLocked(msg)
	m.metrics.ObserveOperation(op, metrics.OutcomeFailure)
	m.notifier.Error(ctx, msg)
	return &OpError{Kind: kind, Message: msg, Err: cause}
}

// Logout always ends logged out. The token and cached identity are purged
// before the best-effort remote call so no later event can resurrect the
// session; the remote call's failure is only logged.
func (m *SessionManager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.generation++
	online := m.state.Online
	attached := m.headers.Bearer()
	m.purgeSessionLocked(ctx)
	m.loggedOutLocked("")
	if !online {
		m.headers.Clear()
	}
	m.mu.Unlock()

	if !online {
		m.log.Debug(ctx, "offline, skipping remote logout")
		m.metrics.ObserveOperation("logout", metrics.OutcomeSuccess)
		return
	}

	err := m.api.Logout(ctx)

	// A newer login may have attached its own token meanwhile; only the
	// token this logout purged is removed.
	m.mu.Lock()
	m.headers.ClearIf(attached)
	m.mu.Unlock()

	if err != nil {
		m.log.Warn(ctx, "remote logout failed", "error", err)
		m.metrics.ObserveOperation("logout", metrics.OutcomeFailure)
		return
	}
	m.metrics.ObserveOperation("logout", metrics.OutcomeSuccess)
	m.notifier.Success(ctx, msgLogoutSuccess)
}

// Register creates an account. When the server answers with both a user and
// a token the new session is established as on login; when it answers
// without a token (e-mail verification pending) the session stays logged out.
func (m *SessionManager) Register(ctx context.Context, req models.RegisterRequest) error {
	gen := m.begin(func(s *Session) {
		s.Loading = true
		s.Error = ""
	})

	resp, err := m.api.RegisterUser(ctx, req)
	if err != nil {
		return m.failAuth(ctx, gen, "register", ErrRegistrationFailed, errorMessage(err, msgRegisterFailed), err)
	}

	if resp != nil && resp.User != nil && resp.Token != "" {
		if err := m.establish(ctx, gen, "register", ErrRegistrationFailed, resp.Token, resp.User); err != nil {
			return err
		}
		m.notifier.Success(ctx, msgRegisterSuccess)
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.currentLocked(gen) {
		m.clearLoadingLocked()
		m.metrics.ObserveOperation("register", metrics.OutcomeSuccess)
	}
	return nil
}

// UpdateUserProfile sends a partial profile and replaces the user with the
// complete profile the server returns.
func (m *SessionManager) UpdateUserProfile(ctx context.Context, update models.ProfileUpdate) error {
	m.mu.Lock()
	if !m.state.LoggedIn {
		m.mu.Unlock()
		return ErrNotLoggedIn
	}
	m.mu.Unlock()

	gen := m.begin(func(s *Session) {
		s.Loading = true
		s.Error = ""
	})

	user, err := m.api.UpdateUserProfile(ctx, update)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.currentLocked(gen) {
		m.metrics.ObserveOperation("update_profile", metrics.OutcomeSuperseded)
		return ErrSuperseded
	}

	if err != nil || user == nil {
		msg := errorMessage(err, msgProfileUpdateFailed)
		m.failLocked(msg)
		m.metrics.ObserveOperation("update_profile", metrics.OutcomeFailure)
		m.notifier.Error(ctx, msgProfileUpdateFailed)
		return &OpError{Kind: ErrProfileUpdateFailed, Message: msg, Err: err}
	}
	m.cacheUserLocked(ctx, user)
	m.loggedInLocked(user)
	m.metrics.ObserveOperation("update_profile", metrics.OutcomeSuccess)
	m.notifier.Success(ctx, msgProfileUpdated)
	return nil
}

// HandleOffline switches to offline mode and adopts the cached identity at
// once, overriding any in-flight state.
func (m *SessionManager) HandleOffline(ctx context.Context) {
	gen := m.begin(func(s *Session) { s.Online = false })
	m.metrics.ObserveNetwork(false)

	m.mu.Lock()
	if m.currentLocked(gen) {
		if cached := m.cachedUserLocked(ctx); cached != nil {
			m.loggedInLocked(cached)
		} else {
			m.loggedOutLocked("")
		}
	}
	m.mu.Unlock()

	m.notifier.Warning(ctx, msgOffline)
}

// HandleOnline switches to online mode and re-runs initialization.
func (m *SessionManager) HandleOnline(ctx context.Context) {
	gen := m.beginOnline(ctx)
	m.initialize(ctx, gen)
}

func (m *SessionManager) beginOnline(ctx context.Context) uint64 {
	gen := m.begin(func(s *Session) {
		s.Online = true
		s.Loading = true
	})
	m.metrics.ObserveNetwork(true)
	m.notifier.Success(ctx, msgBackOnline)
	return gen
}

// RetryConnection re-runs initialization. It does nothing while offline.
func (m *SessionManager) RetryConnection(ctx context.Context) {
	if !m.online() {
		m.log.Debug(ctx, "retry requested while offline, ignoring")
		return
	}
	m.Initialize(ctx)
}

// Watch applies connectivity events in the order they arrive until ctx is
// done or events is closed. Offline events are handled immediately even
// while a reconnect initialization is still running.
func (m *SessionManager) Watch(ctx context.Context, events <-chan netmon.Event) {
	defer m.inflight.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !ev.Online {
				m.HandleOffline(ctx)
				continue
			}
			gen := m.beginOnline(ctx)
			m.inflight.Add(1)
			go func() {
				defer m.inflight.Done()
				m.initialize(ctx, gen)
			}()
		}
	}
}

func (m *SessionManager) cachedUserLocked(ctx context.Context) *models.User {
	raw, err := m.store.Get(ctx, UserCacheKey)
	if err != nil {
		m.log.Warn(ctx, "failed to read cached identity", "error", err)
		return nil
	}
	if len(raw) == 0 {
		return nil
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		m.log.Warn(ctx, "cached identity is corrupt", "error", err)
		return nil
	}
	return &u
}

func (m *SessionManager) cacheUserLocked(ctx context.Context, user *models.User) {
	raw, err := json.Marshal(user)
	if err == nil {
		err = m.store.Set(ctx, UserCacheKey, raw)
	}
	if err != nil {
		m.log.Warn(ctx, "failed to cache identity", "error", err)
	}
}

// purgeTokenLocked removes token from the store and the headers, unless a
// different token has been stored meanwhile.
func (m *SessionManager) purgeTokenLocked(ctx context.Context, token string) {
	err := m.store.Update(ctx, func(ctx context.Context, r metadata.Repository) error {
		stored, err := r.Get(ctx, TokenKey)
		if err != nil {
			return err
		}
		if string(stored) != token {
			return nil
		}
		return r.Delete(ctx, TokenKey)
	})
	if err != nil {
		m.log.Error(ctx, "failed to purge token", "error", fmt.Errorf("%w: %w", ErrTokenInvalid, err))
	}
	m.headers.Clear()
}

func (m *SessionManager) purgeSessionLocked(ctx context.Context) {
	err := m.store.Update(ctx, func(ctx context.Context, r metadata.Repository) error {
		if err := r.Delete(ctx, TokenKey); err != nil {
			return err
		}
		return r.Delete(ctx, UserCacheKey)
	})
	if err != nil {
		m.log.Error(ctx, "failed to clear stored session", "error", err)
	}
}
