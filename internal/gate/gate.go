package gate

import (
	"crypto/subtle"
	"time"
)

// Gate validates the shared access token that unlocks the email-AI
// feature. It is a pure predicate: no retries, no rotation. The secret
// is compared byte-for-byte; a matching token is usable for Expiry from
// the moment of validation.
type Gate struct {
	secret string
	expiry time.Duration
	now    func() time.Time
}

// Result is the outcome of a validation attempt.
type Result struct {
	Valid     bool
	ExpiresAt time.Time
}

func New(secret string, expiry time.Duration) *Gate {
	return &Gate{
		secret: secret,
		expiry: expiry,
		now:    time.Now,
	}
}

// Validate compares candidate against the configured secret. An empty
// configured secret never validates: the feature is simply disabled.
func (g *Gate) Validate(candidate string) Result {
	if g.secret == "" || candidate == "" {
		return Result{}
	}
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(g.secret)) != 1 {
		return Result{}
	}
	return Result{
		Valid:     true,
		ExpiresAt: g.now().Add(g.expiry),
	}
}

// Expired reports whether a previously issued expiry has lapsed. Callers
// must check this before every gated operation and reset their stored
// validity when it returns true.
func (g *Gate) Expired(expiresAt time.Time) bool {
	return !g.now().Before(expiresAt)
}
