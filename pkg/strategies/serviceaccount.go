package strategies

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"

	"github.com/systmms/authbroker/pkg/credential"
	"github.com/systmms/authbroker/pkg/logging"
)

// ServiceAccount mints a token from a service account JSON key, supplied
// either as raw bytes or as a file path in the request. The two-legged JWT
// exchange itself is delegated to golang.org/x/oauth2/google.
type ServiceAccount struct {
	logger *logging.Logger
}

// NewServiceAccount creates the service account strategy.
func NewServiceAccount(logger *logging.Logger) *ServiceAccount {
	return &ServiceAccount{logger: logger}
}

// Name returns the strategy identifier.
func (s *ServiceAccount) Name() string { return "service-account" }

// Resolve builds a refreshing token from the key. A key that is present
// but unreadable or malformed is a hard failure.
func (s *ServiceAccount) Resolve(ctx context.Context, req credential.Request) (credential.Token, error) {
	keyJSON := req.ServiceAccountKeyJSON
	if keyJSON == nil && req.ServiceAccountKeyFile != "" {
		data, err := os.ReadFile(req.ServiceAccountKeyFile)
		if err != nil {
			return nil, fmt.Errorf("%s: reading key file: %w", s.Name(), err)
		}
		keyJSON = data
	}
	if keyJSON == nil {
		return nil, credential.NotApplicable(s.Name(), "no service account key configured")
	}

	cfg, err := google.JWTConfigFromJSON(keyJSON, req.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("%s: parsing key: %w", s.Name(), err)
	}

	host := credential.GoogleAuthHost
	if cfg.TokenURL != "" {
		host = credential.HostOf(cfg.TokenURL)
	}

	tok, err := credential.NewBearerTokenSource(cfg.TokenSource(ctx), host, req.Scopes)
	if err != nil {
		return nil, fmt.Errorf("%s: token exchange for %s: %w", s.Name(), cfg.Email, err)
	}

	s.logger.Debug("service account token minted for %s as %s", req.Package, cfg.Email)
	return tok, nil
}
