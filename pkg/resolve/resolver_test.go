package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/systmms/authbroker/pkg/credential"
)

// stubStrategy is a scripted strategy that counts how often it is asked.
type stubStrategy struct {
	name  string
	tok   credential.Token
	err   error
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Resolve(ctx context.Context, req credential.Request) (credential.Token, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.tok, nil
}

func succeeding(name string) *stubStrategy {
	return &stubStrategy{
		name: name,
		tok:  credential.NewBearerToken(&oauth2.Token{AccessToken: "tok-" + name}, credential.GoogleAuthHost, nil),
	}
}

func notApplicable(name string) *stubStrategy {
	return &stubStrategy{name: name, err: credential.NotApplicable(name, "preconditions unmet")}
}

func failing(name string, err error) *stubStrategy {
	return &stubStrategy{name: name, err: err}
}

func TestResolveFirstSuccessWins(t *testing.T) {
	t.Parallel()

	winner := succeeding("winner")
	never := succeeding("never-reached")

	r := New([]credential.Strategy{notApplicable("skipped"), winner, never})

	tok, err := r.Resolve(context.Background(), credential.Request{Package: "dillydally"})
	require.NoError(t, err)

	assert.Equal(t, "tok-winner", tok.AccessToken())
	assert.Equal(t, 1, winner.calls)
	assert.Equal(t, 0, never.calls, "strategies after the first success must never be evaluated")
}

func TestResolveSuccessRegardlessOfPosition(t *testing.T) {
	t.Parallel()

	// The single succeeding strategy must win from any slot, provided no
	// earlier strategy also succeeds.
	for pos := 0; pos < 4; pos++ {
		pos := pos
		t.Run(string(rune('a'+pos)), func(t *testing.T) {
			t.Parallel()

			var chain []credential.Strategy
			for i := 0; i < 4; i++ {
				if i == pos {
					chain = append(chain, succeeding("winner"))
				} else {
					chain = append(chain, notApplicable("filler"))
				}
			}

			tok, err := New(chain).Resolve(context.Background(), credential.Request{Package: "dillydally"})
			require.NoError(t, err)
			assert.Equal(t, "tok-winner", tok.AccessToken())
		})
	}
}

func TestResolveAllNotApplicable(t *testing.T) {
	t.Parallel()

	r := New([]credential.Strategy{
		notApplicable("explicit"),
		notApplicable("service-account"),
		notApplicable("ambient"),
	})

	_, err := r.Resolve(context.Background(), credential.Request{Package: "dillydally"})

	var noCred *NoCredentialError
	require.ErrorAs(t, err, &noCred)
	assert.Equal(t, "dillydally", noCred.Package)
	require.Len(t, noCred.Attempts, 3, "one attempt per strategy")

	assert.Equal(t, "explicit", noCred.Attempts[0].Strategy)
	assert.Equal(t, "service-account", noCred.Attempts[1].Strategy)
	assert.Equal(t, "ambient", noCred.Attempts[2].Strategy)
	for _, a := range noCred.Attempts {
		assert.NotEmpty(t, a.Reason)
		assert.False(t, a.Hard)
	}
}

func TestResolveFailureContinuesByDefault(t *testing.T) {
	t.Parallel()

	broken := failing("service-account", errors.New("service-account: parsing key: unexpected end of JSON input"))
	winner := succeeding("ambient")

	tok, err := New([]credential.Strategy{broken, winner}).Resolve(context.Background(), credential.Request{Package: "dillydally"})
	require.NoError(t, err)
	assert.Equal(t, "tok-ambient", tok.AccessToken())
}

func TestResolveFailureSurfacesInAggregate(t *testing.T) {
	t.Parallel()

	r := New([]credential.Strategy{
		notApplicable("explicit"),
		failing("service-account", errors.New("malformed key")),
	})

	_, err := r.Resolve(context.Background(), credential.Request{Package: "dillydally"})

	var noCred *NoCredentialError
	require.ErrorAs(t, err, &noCred)
	require.Len(t, noCred.Attempts, 2)
	assert.False(t, noCred.Attempts[0].Hard)
	assert.True(t, noCred.Attempts[1].Hard)
	assert.Contains(t, noCred.Attempts[1].Reason, "malformed key")
	assert.Contains(t, err.Error(), "explicit skipped:",
		"the rendered aggregate must mark inapplicable strategies as skipped")
	assert.Contains(t, err.Error(), "service-account failed:",
		"the rendered aggregate must mark hard failures as failed")
}

func TestResolveAbortOnFailurePolicy(t *testing.T) {
	t.Parallel()

	cause := errors.New("malformed key")
	never := succeeding("never-reached")

	r := New(
		[]credential.Strategy{failing("service-account", cause), never},
		WithFailurePolicy(AbortOnFailure),
	)

	_, err := r.Resolve(context.Background(), credential.Request{Package: "dillydally"})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 0, never.calls)
}

func TestResolveEmptyChain(t *testing.T) {
	t.Parallel()

	_, err := New(nil).Resolve(context.Background(), credential.Request{Package: "dillydally"})

	var noCred *NoCredentialError
	require.ErrorAs(t, err, &noCred)
	assert.Empty(t, noCred.Attempts)
}

func TestPopulateInstallsCredential(t *testing.T) {
	t.Parallel()

	state, err := credential.NewAuthState("dillydally")
	require.NoError(t, err)

	r := New([]credential.Strategy{succeeding("winner")})
	require.NoError(t, r.Populate(context.Background(), state, credential.Request{}))

	require.NotNil(t, state.Cred())
	assert.Equal(t, "tok-winner", state.Cred().AccessToken())
	assert.True(t, state.Active())
}

func TestPopulateLeavesStateOnFailure(t *testing.T) {
	t.Parallel()

	state, err := credential.NewAuthState("dillydally")
	require.NoError(t, err)

	r := New([]credential.Strategy{notApplicable("only")})
	err = r.Populate(context.Background(), state, credential.Request{})

	var noCred *NoCredentialError
	require.ErrorAs(t, err, &noCred)
	assert.Nil(t, state.Cred())
}

func TestPopulateFillsRequestFromState(t *testing.T) {
	t.Parallel()

	var seen credential.Request
	capture := &captureStrategy{}

	state, err := credential.NewAuthState("dillydally",
		credential.WithClient(&credential.ClientIdentity{ID: "client-id"}))
	require.NoError(t, err)

	r := New([]credential.Strategy{capture})
	require.NoError(t, r.Populate(context.Background(), state, credential.Request{}))

	seen = capture.req
	assert.Equal(t, "dillydally", seen.Package)
	require.NotNil(t, seen.Client)
	assert.Equal(t, "client-id", seen.Client.ID)
}

type captureStrategy struct {
	req credential.Request
}

func (c *captureStrategy) Name() string { return "capture" }

func (c *captureStrategy) Resolve(ctx context.Context, req credential.Request) (credential.Token, error) {
	c.req = req
	return credential.NewBearerToken(&oauth2.Token{AccessToken: "tok"}, credential.GoogleAuthHost, nil), nil
}
