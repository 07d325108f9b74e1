// Package credential defines the core interfaces and types for credential
// resolution in authbroker.
//
// This package provides the foundational abstraction for obtaining bearer
// credentials for Google APIs from heterogeneous sources: an explicit token
// handed in by the caller, a service account key, a cached user OAuth grant,
// an environment-provided access token, or ambient host credentials. All
// strategy implementations must implement the Strategy interface so the
// resolution engine can treat them uniformly.
//
// # Architecture
//
// authbroker separates the credential contract (this package) from the
// strategy implementations (pkg/strategies) and the resolution engine
// (pkg/resolve). The contract is deliberately small:
//
//   - Token: the capability set any bearer credential must expose
//   - Strategy: one method of obtaining a Token
//   - AuthState: per-package record of how requests are authenticated
//   - Request: what the caller wants (package, scopes, hints)
//
// # Bring-your-own token
//
// Callers that already hold a token from an external OAuth implementation
// hand it to AcceptExternal, which performs a single conformance check at
// ingestion: the candidate must satisfy the Token capability set and must
// originate from a Google authorization host. On success the identical
// object is passed through unchanged; authbroker never copies or rewraps a
// caller's token.
//
// # Strategy outcomes
//
// A strategy distinguishes "my preconditions were not met" from "I was
// applicable but broke". The former is reported with NotApplicableError and
// absorbed silently by the resolver; the latter is any other error and is
// surfaced in the resolver's aggregate diagnostics. This lets a
// misconfigured but intended strategy (say, a malformed service account
// key) produce a specific message instead of being skipped, while an
// unrelated strategy later in the chain can still win.
//
// # Error handling
//
// Strategies and callers should use the typed errors defined here:
//   - ConfigurationError for invalid AuthState construction
//   - InvalidTokenTypeError for objects lacking the Token capability set
//   - WrongEndpointError for structurally valid tokens from foreign hosts
//   - NotApplicableError for unmet strategy preconditions
//
// # Security considerations
//
// Implementations must never log access tokens or refresh tokens; wrap any
// value derived from token material in logging.Secret before formatting.
//
// # Threading and concurrency
//
// AuthState follows single-owner-mutates semantics: the resolver installs
// the credential, everyone else reads. Concurrent resolution against the
// same AuthState is not supported and must be serialized by the caller.
// The write-once introspection cache on BearerToken is internally locked
// only to enforce its set-at-most-once invariant.
package credential
