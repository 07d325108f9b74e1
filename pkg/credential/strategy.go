package credential

import "context"

// Strategy is one method of obtaining a credential.
//
// Resolve either produces a Token, reports NotApplicableError when its
// preconditions are not met, or returns any other error when it was
// applicable but failed. Implementations must not fall through to another
// mechanism internally; ordering is owned by the resolver.
type Strategy interface {
	// Name returns the strategy's stable identifier, used in logs and in
	// the resolver's attempt trail. Examples: "explicit",
	// "service-account", "env-token", "ambient".
	Name() string

	// Resolve attempts to produce a token for the request.
	Resolve(ctx context.Context, req Request) (Token, error)
}

// ClientIdentity is the OAuth client the consuming package presents to the
// authorization server. Only strategies that drive a refresh exchange need
// it.
type ClientIdentity struct {
	ID     string
	Secret string
}

// Request describes what a caller wants from resolution: which package is
// asking, which scopes it needs, and any hints that make individual
// strategies applicable.
type Request struct {
	// Package is the consuming package's name. Also used to key cached
	// grants and secret store passwords.
	Package string

	// Scopes are the OAuth scopes the credential must cover.
	Scopes []string

	// Client identifies the OAuth client for strategies that refresh.
	Client *ClientIdentity

	// Explicit is a caller-supplied candidate credential: a Token, a
	// RequestConfig wrapping one, or anything else (which the explicit
	// strategy rejects with a typed error). Nil means no explicit
	// credential was offered.
	Explicit interface{}

	// ServiceAccountKeyFile points at a service account JSON key on disk.
	ServiceAccountKeyFile string

	// ServiceAccountKeyJSON holds raw service account key bytes, taking
	// precedence over ServiceAccountKeyFile.
	ServiceAccountKeyJSON []byte

	// TokenEnvVar overrides the environment variable the env-token
	// strategy consults.
	TokenEnvVar string
}

// RequestConfig is a per-request configuration object that may embed a
// credential. The explicit strategy unwraps the embedded token before
// applying the usual conformance checks.
type RequestConfig struct {
	// Token is the embedded credential, if any.
	Token interface{}

	// UserAgent is sent with requests made under this configuration.
	UserAgent string
}
