package strategies

import (
	"github.com/systmms/authbroker/pkg/credential"
	"github.com/systmms/authbroker/pkg/logging"
)

// DefaultChain returns the standard strategy ordering: an explicit
// caller-supplied credential first, then a configured service account,
// then a cached user grant, then an environment-provided token, and
// finally ambient host credentials. Callers wanting a different policy
// build their own slice; there is no global registry to mutate.
func DefaultChain(logger *logging.Logger) []credential.Strategy {
	return []credential.Strategy{
		NewExplicit(logger),
		NewServiceAccount(logger),
		NewCachedGrant(logger),
		NewEnvToken(logger),
		NewAmbient(logger),
	}
}
