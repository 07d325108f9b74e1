// Package secretstore keeps encrypted test and service credentials safely
// committable. Payloads are sealed with nacl/secretbox under a key derived
// from a package-scoped environment password, and persisted one file per
// secret so a checkout without the password degrades gracefully instead of
// failing.
package secretstore

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/systmms/authbroker/internal/secure"
	"github.com/systmms/authbroker/pkg/logging"
)

const (
	passwordSuffix = "_PASSWORD"
	secretDir      = "secret"
	nonceSize      = 24
)

// PasswordUnavailableError indicates an encryption attempt without the
// package password in the environment. Writing happens at authoring time,
// so this is fatal rather than skippable.
type PasswordUnavailableError struct {
	Package string
	Var     string
}

// Error implements the error interface.
func (e *PasswordUnavailableError) Error() string {
	return fmt.Sprintf("cannot encrypt secrets for %q: %s is unset", e.Package, e.Var)
}

// DecryptionUnavailableError indicates a read attempt without the package
// password. Callers are expected to branch on this and skip gracefully,
// typically by skipping an auth-requiring test.
type DecryptionUnavailableError struct {
	Package string
	Var     string
}

// Error implements the error interface.
func (e *DecryptionUnavailableError) Error() string {
	return fmt.Sprintf("cannot decrypt secrets for %q: %s is unset", e.Package, e.Var)
}

// PasswordName returns the environment variable holding a package's secret
// store password: the uppercased package name with punctuation folded to
// underscores, suffixed with _PASSWORD. Pure, no side effects.
func PasswordName(pkg string) string {
	norm := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - ('a' - 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, pkg)
	return norm + passwordSuffix
}

// Store encrypts, persists, and conditionally decrypts secrets under a
// root directory. Secrets live at <root>/secret/<name>; the file contents
// are the random 24-byte nonce followed by the secretbox ciphertext.
type Store struct {
	root   string
	lookup func(string) string
	logger *logging.Logger
}

// Option configures New.
type Option func(*Store)

// WithEnvLookup overrides the environment lookup. Used by tests.
func WithEnvLookup(lookup func(string) string) Option {
	return func(s *Store) { s.lookup = lookup }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a store rooted at the given directory, typically a package's
// install or repository root.
func New(root string, opts ...Option) *Store {
	s := &Store{
		root:   root,
		lookup: os.Getenv,
		logger: logging.New(false, false),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CanDecrypt reports whether secrets for the package can be decrypted in
// this process: true iff the password variable is set and non-empty.
// Never errors and touches nothing beyond the environment.
func (s *Store) CanDecrypt(pkg string) bool {
	return s.lookup(PasswordName(pkg)) != ""
}

// Path returns where a named secret is persisted.
func (s *Store) Path(name string) string {
	return filepath.Join(s.root, secretDir, name)
}

// Write encrypts data under the package password and persists it. A
// missing password is fatal: encryption is an authoring-time operation and
// silently writing nothing would be worse than failing.
func (s *Store) Write(pkg, name string, data []byte) error {
	key, err := s.key(pkg, true)
	if err != nil {
		return err
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], data, &nonce, key)

	path := s.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating secret directory: %w", err)
	}
	if err := os.WriteFile(path, sealed, 0o600); err != nil {
		return fmt.Errorf("persisting secret %q: %w", name, err)
	}

	s.logger.Debug("secret %q written for %s (%d bytes sealed)", name, pkg, len(sealed))
	return nil
}

// WriteFile reads a plaintext file and encrypts its contents as the named
// secret.
func (s *Store) WriteFile(pkg, name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading payload file: %w", err)
	}
	return s.Write(pkg, name, data)
}

// Read decrypts the named secret and returns the original bytes exactly.
// When the password is absent this fails with DecryptionUnavailableError
// before any file I/O, so callers can downgrade to a graceful skip.
func (s *Store) Read(pkg, name string) ([]byte, error) {
	if !s.CanDecrypt(pkg) {
		return nil, &DecryptionUnavailableError{Package: pkg, Var: PasswordName(pkg)}
	}

	sealed, err := os.ReadFile(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("reading secret %q: %w", name, err)
	}
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("secret %q is truncated (%d bytes)", name, len(sealed))
	}

	key, err := s.key(pkg, false)
	if err != nil {
		return nil, err
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, key)
	if !ok {
		return nil, fmt.Errorf("secret %q failed authentication: wrong password or corrupt ciphertext", name)
	}
	return plain, nil
}

// key derives the 32-byte secretbox key from the package password. The
// password transits through a memguard-backed buffer so the raw bytes are
// not left lying around the heap.
func (s *Store) key(pkg string, authoring bool) (*[32]byte, error) {
	varName := PasswordName(pkg)
	password := s.lookup(varName)
	if password == "" {
		if authoring {
			return nil, &PasswordUnavailableError{Package: pkg, Var: varName}
		}
		return nil, &DecryptionUnavailableError{Package: pkg, Var: varName}
	}

	buf := secure.NewBuffer([]byte(password))
	defer buf.Destroy()

	var key [32]byte
	if err := buf.With(func(data []byte) error {
		key = sha256.Sum256(data)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	return &key, nil
}
