package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := New("s3cret", 7*24*time.Hour)
	g.now = func() time.Time { return fixed }

	cases := []struct {
		name      string
		candidate string
		valid     bool
	}{
		{"matching token", "s3cret", true},
		{"wrong token", "guess", false},
		{"empty token", "", false},
		{"prefix only", "s3c", false},
		{"trailing garbage", "s3cret ", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := g.Validate(tc.candidate)
			assert.Equal(t, tc.valid, res.Valid)
			if tc.valid {
				assert.Equal(t, fixed.Add(7*24*time.Hour), res.ExpiresAt)
			} else {
				assert.True(t, res.ExpiresAt.IsZero())
			}
		})
	}
}

func TestValidateDisabledSecret(t *testing.T) {
	g := New("", 7*24*time.Hour)
	assert.False(t, g.Validate("").Valid)
	assert.False(t, g.Validate("anything").Valid)
}

func TestExpired(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := New("s3cret", 7*24*time.Hour)
	g.now = func() time.Time { return fixed }

	assert.False(t, g.Expired(fixed.Add(time.Minute)))
	assert.True(t, g.Expired(fixed))
	assert.True(t, g.Expired(fixed.Add(-time.Minute)))
}
