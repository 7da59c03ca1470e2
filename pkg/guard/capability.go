package guard

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// capabilityClaims is the short-lived token minted when a guard decision
// requires the caller to take a snapshot before proceeding.
type capabilityClaims struct {
	jwt.RegisteredClaims
	Rule string `json:"rule"`
	Path string `json:"path"`
}

// CapabilityIssuer signs and verifies require_snapshot capability tokens.
type CapabilityIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewCapabilityIssuer(secret []byte, ttl time.Duration) *CapabilityIssuer {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CapabilityIssuer{secret: secret, ttl: ttl}
}

// Issue mints a token the caller must present back to perform the guarded
// operation once it has taken the required snapshot.
func (c *CapabilityIssuer) Issue(rule, path string) (string, error) {
	now := time.Now()
	claims := capabilityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Rule: rule,
		Path: path,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("guard: sign capability token: %w", err)
	}
	return signed, nil
}

// Verify checks a capability token is valid, unexpired, and scoped to the
// given rule and path.
func (c *CapabilityIssuer) Verify(tokenStr, rule, path string) error {
	claims := &capabilityClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return fmt.Errorf("guard: invalid capability token: %w", err)
	}
	if claims.Rule != rule || claims.Path != path {
		return fmt.Errorf("guard: capability token scoped to %s/%s, not %s/%s", claims.Rule, claims.Path, rule, path)
	}
	return nil
}
