package credential

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"golang.org/x/oauth2"
)

// GoogleAuthHost is the host of Google's OAuth 2.0 token endpoint.
const GoogleAuthHost = "oauth2.googleapis.com"

// GoogleAccountsHost is the host of Google's user authorization endpoint.
// Tokens minted through the browser consent flow carry this host.
const GoogleAccountsHost = "accounts.google.com"

// ErrRefreshUnsupported is returned by Refresh on tokens that were built
// from a bare access token with no backing token source.
var ErrRefreshUnsupported = errors.New("credential: token has no refresh capability")

// Token is the capability set any bearer credential must expose to be
// usable by authbroker. Anything satisfying this interface is accepted
// regardless of its concrete representation.
type Token interface {
	// AccessToken returns the current bearer token string.
	AccessToken() string

	// EndpointHost returns the host of the authorization server that
	// issued this token, for example "oauth2.googleapis.com".
	EndpointHost() string

	// Expired reports whether the access token is past its expiry.
	Expired() bool

	// Scopes returns the OAuth scopes the token was requested with.
	Scopes() []string

	// Refresh obtains a fresh access token through the underlying OAuth
	// implementation. Returns ErrRefreshUnsupported for static tokens.
	Refresh(ctx context.Context) error
}

// IntrospectionCacher is the optional capability for tokens that can
// memoize a token introspection result. BearerToken implements it; foreign
// tokens that do not are introspected without caching.
type IntrospectionCacher interface {
	// Introspection returns the cached result, or nil before the first
	// successful introspection.
	Introspection() *Introspection

	// SetIntrospection installs the result. The cache is write-once; a
	// second call fails and leaves the first value in place.
	SetIntrospection(info Introspection) error
}

// Introspection carries what the authorization server reported about a
// token. Immutable once created.
type Introspection struct {
	// Email is the identity the token acts as, when the token carries an
	// identity scope. Empty otherwise.
	Email string

	// Scope lists the granted scopes.
	Scope []string

	// ExpiresIn is the remaining token lifetime in seconds at the time of
	// the introspection call. Zero when the server did not report it.
	ExpiresIn int64
}

// ErrIntrospectionCached is returned by SetIntrospection when a result was
// already installed on the token.
var ErrIntrospectionCached = errors.New("credential: introspection already cached on this token")

// BearerToken is authbroker's own Token implementation. It wraps an
// oauth2.Token, optionally backed by an oauth2.TokenSource for refresh,
// and carries the write-once introspection cache.
type BearerToken struct {
	host   string
	scopes []string
	source oauth2.TokenSource

	mu    sync.Mutex
	tok   *oauth2.Token
	intro *Introspection
}

// NewBearerToken wraps a static oauth2 token. The token cannot refresh.
func NewBearerToken(tok *oauth2.Token, host string, scopes []string) *BearerToken {
	return &BearerToken{host: host, scopes: scopes, tok: tok}
}

// NewBearerTokenSource wraps a refreshing token source. The initial access
// token is fetched immediately, so construction is a suspension point.
func NewBearerTokenSource(src oauth2.TokenSource, host string, scopes []string) (*BearerToken, error) {
	tok, err := src.Token()
	if err != nil {
		return nil, err
	}
	return &BearerToken{host: host, scopes: scopes, source: src, tok: tok}, nil
}

// AccessToken returns the current access token string.
func (b *BearerToken) AccessToken() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tok.AccessToken
}

// EndpointHost returns the issuing authorization host.
func (b *BearerToken) EndpointHost() string {
	return b.host
}

// Expired reports whether the access token needs refreshing.
func (b *BearerToken) Expired() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.tok.Valid()
}

// Scopes returns the scopes the token was requested with.
func (b *BearerToken) Scopes() []string {
	out := make([]string, len(b.scopes))
	copy(out, b.scopes)
	return out
}

// Refresh replaces the wrapped token with a fresh one from the backing
// source. Static tokens return ErrRefreshUnsupported.
func (b *BearerToken) Refresh(ctx context.Context) error {
	if b.source == nil {
		return ErrRefreshUnsupported
	}
	tok, err := b.source.Token()
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.tok = tok
	b.mu.Unlock()
	return nil
}

// RefreshToken returns the refresh token string, if the wrapped token
// carries one.
func (b *BearerToken) RefreshToken() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tok.RefreshToken
}

// Introspection returns the cached introspection result, or nil.
func (b *BearerToken) Introspection() *Introspection {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.intro == nil {
		return nil
	}
	out := *b.intro
	out.Scope = append([]string(nil), b.intro.Scope...)
	return &out
}

// SetIntrospection installs the introspection result. The cache is
// write-once; re-fetching over an installed result is a bug in the caller.
func (b *BearerToken) SetIntrospection(info Introspection) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.intro != nil {
		return ErrIntrospectionCached
	}
	info.Scope = append([]string(nil), info.Scope...)
	b.intro = &info
	return nil
}

// HostOf extracts the host portion of an endpoint URL, tolerating inputs
// that are already bare hosts.
func HostOf(endpoint string) string {
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		return u.Hostname()
	}
	return endpoint
}

// IsGoogleHost reports whether host (a bare host or a URL) is one of
// Google's authorization hosts.
func IsGoogleHost(host string) bool {
	h := HostOf(host)
	return h == GoogleAuthHost || h == GoogleAccountsHost
}
