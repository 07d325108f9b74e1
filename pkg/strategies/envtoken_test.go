package strategies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/authbroker/pkg/credential"
)

func TestTokenEnvName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pkg  string
		want string
	}{
		{"dillydally", "DILLYDALLY_TOKEN"},
		{"big-query", "BIG_QUERY_TOKEN"},
		{"my.pkg2", "MY_PKG2_TOKEN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TokenEnvName(tt.pkg), "TokenEnvName(%q)", tt.pkg)
	}
}

func TestEnvTokenNotApplicableWhenUnset(t *testing.T) {
	t.Parallel()

	s := NewEnvToken(testLogger(), WithEnvLookup(func(string) string { return "" }))

	_, err := s.Resolve(context.Background(), credential.Request{Package: "dillydally"})
	assert.True(t, credential.IsNotApplicable(err))
	assert.Contains(t, err.Error(), "DILLYDALLY_TOKEN")
}

func TestEnvTokenResolvesFromDefaultVariable(t *testing.T) {
	t.Parallel()

	env := map[string]string{"DILLYDALLY_TOKEN": "ya29.from-env"}
	s := NewEnvToken(testLogger(), WithEnvLookup(func(name string) string { return env[name] }))

	tok, err := s.Resolve(context.Background(), credential.Request{
		Package: "dillydally",
		Scopes:  []string{"scope-a"},
	})
	require.NoError(t, err)

	assert.Equal(t, "ya29.from-env", tok.AccessToken())
	assert.Equal(t, credential.GoogleAuthHost, tok.EndpointHost())
	assert.Equal(t, []string{"scope-a"}, tok.Scopes())
}

func TestEnvTokenHonorsOverrideVariable(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"DILLYDALLY_TOKEN": "wrong",
		"CI_ACCESS_TOKEN":  "ya29.override",
	}
	s := NewEnvToken(testLogger(), WithEnvLookup(func(name string) string { return env[name] }))

	tok, err := s.Resolve(context.Background(), credential.Request{
		Package:     "dillydally",
		TokenEnvVar: "CI_ACCESS_TOKEN",
	})
	require.NoError(t, err)
	assert.Equal(t, "ya29.override", tok.AccessToken())
}
