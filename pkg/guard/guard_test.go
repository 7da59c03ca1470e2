package guard_test

import (
	"testing"
	"time"

	"github.com/agentkit/plankernel/pkg/guard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluatorDenyRuleWins(t *testing.T) {
	policy := &guard.Policy{
		Kind: "fs",
		Rules: []guard.Rule{
			{Name: "deny-etc", Expr: `input.path.startsWith("/etc")`, Then: guard.VerdictDeny},
			{Name: "require-snapshot-large", Expr: `input.size > 1000000`, Then: guard.VerdictRequireSnapshot},
		},
	}
	ev, err := guard.NewEvaluator(policy)
	require.NoError(t, err)

	d, err := ev.FSGuard("write", "/etc/passwd", 10)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, "deny-etc", d.Rule)
}

func TestEvaluatorRequireSnapshotRule(t *testing.T) {
	policy := &guard.Policy{
		Kind: "fs",
		Rules: []guard.Rule{
			{Name: "large-write", Expr: `input.size > 1000000`, Then: guard.VerdictRequireSnapshot},
		},
	}
	ev, err := guard.NewEvaluator(policy)
	require.NoError(t, err)

	d, err := ev.FSGuard("write", "/tmp/big.bin", 2_000_000)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.True(t, d.RequireSnapshot)
}

func TestEvaluatorNoRuleMatchDefaultsAllow(t *testing.T) {
	ev, err := guard.NewEvaluator(&guard.Policy{Kind: "net"})
	require.NoError(t, err)

	d, err := ev.NetGuard("example.com")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestHostLimiterBurst(t *testing.T) {
	l := guard.NewHostLimiter(1, 1)
	assert.True(t, l.Allow("example.com"))
	assert.False(t, l.Allow("example.com"))
}

func TestCapabilityTokenRoundTrip(t *testing.T) {
	issuer := guard.NewCapabilityIssuer([]byte("test-secret"), time.Minute)
	tok, err := issuer.Issue("large-write", "/tmp/big.bin")
	require.NoError(t, err)
	require.NoError(t, issuer.Verify(tok, "large-write", "/tmp/big.bin"))
	assert.Error(t, issuer.Verify(tok, "other-rule", "/tmp/big.bin"))
}
