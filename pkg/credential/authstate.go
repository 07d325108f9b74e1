package credential

// AuthState is the per-package record governing whether and how requests
// are authenticated: the package's OAuth client identity, an optional API
// key, whether token auth is in play, and the current credential once one
// has been resolved.
//
// AuthState is single-owner mutable: the owning caller (usually through
// the resolver) installs and clears the credential; all other readers
// treat the state as a snapshot.
type AuthState struct {
	pkg    string
	client *ClientIdentity
	apiKey string
	active bool
	cred   Token
}

// AuthStateOption configures NewAuthState.
type AuthStateOption func(*AuthState)

// WithClient sets the OAuth client identity.
func WithClient(c *ClientIdentity) AuthStateOption {
	return func(s *AuthState) { s.client = c }
}

// WithAPIKey sets the API key used when token auth is inactive.
func WithAPIKey(key string) AuthStateOption {
	return func(s *AuthState) { s.apiKey = key }
}

// WithActive sets whether token auth is in play. Defaults to true.
func WithActive(active bool) AuthStateOption {
	return func(s *AuthState) { s.active = active }
}

// WithCred seeds an already-resolved credential.
func WithCred(tok Token) AuthStateOption {
	return func(s *AuthState) { s.cred = tok }
}

// NewAuthState builds the auth record for a consuming package. A state
// that is inactive and has no API key could never authenticate anything,
// so that combination is rejected with ConfigurationError.
func NewAuthState(pkg string, opts ...AuthStateOption) (*AuthState, error) {
	s := &AuthState{pkg: pkg, active: true}
	for _, opt := range opts {
		opt(s)
	}
	if !s.active && s.apiKey == "" {
		return nil, ConfigurationError{
			Package: pkg,
			Message: "auth is inactive and no API key is configured; requests would have no credential at all",
		}
	}
	return s, nil
}

// Package returns the consuming package's name. Immutable.
func (s *AuthState) Package() string { return s.pkg }

// Client returns the OAuth client identity, or nil.
func (s *AuthState) Client() *ClientIdentity { return s.client }

// APIKey returns the configured API key, or "".
func (s *AuthState) APIKey() string { return s.apiKey }

// Active reports whether token auth is in play. When false, the API key is
// the only credential that should be transmitted.
func (s *AuthState) Active() bool { return s.active }

// Cred returns the current credential, or nil before resolution.
func (s *AuthState) Cred() Token { return s.cred }

// SetCred installs a resolved credential, replacing any previous one, and
// implicitly re-activates token auth.
func (s *AuthState) SetCred(tok Token) {
	s.cred = tok
	s.active = true
}

// ClearCred removes the credential without deactivating token auth; a
// later resolution is expected to repopulate it.
func (s *AuthState) ClearCred() {
	s.cred = nil
}
