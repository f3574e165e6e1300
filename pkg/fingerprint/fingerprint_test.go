package fingerprint_test

import (
	"regexp"
	"testing"

	"net/http/httptest"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/sessionkit/pkg/fingerprint"
)

func TestIPHash(t *testing.T) {
	t.Parallel()

	t.Run("deterministic hex digest", func(t *testing.T) {
		t.Parallel()

		a := fingerprint.IPHash("203.0.113.7")
		b := fingerprint.IPHash("203.0.113.7")
		assert.Equal(t, a, b)
		assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), a)
	})

	t.Run("different addresses differ", func(t *testing.T) {
		t.Parallel()

		assert.NotEqual(t, fingerprint.IPHash("203.0.113.7"), fingerprint.IPHash("203.0.113.8"))
	})

	t.Run("digest is not the raw address", func(t *testing.T) {
		t.Parallel()

		assert.NotContains(t, fingerprint.IPHash("203.0.113.7"), "203.0.113.7")
	})
}

func TestMatch(t *testing.T) {
	t.Parallel()

	assert.True(t, fingerprint.Match("same", "same"))
	assert.False(t, fingerprint.Match("same", "other"))
	assert.False(t, fingerprint.Match("same", "sam"))
	assert.True(t, fingerprint.Match("", ""))
}

func TestFromRequest(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.7:443"
	r.Header.Set("User-Agent", "TestBrowser/1.0")

	b := fingerprint.FromRequest(r)
	assert.Equal(t, "TestBrowser/1.0", b.UserAgent)
	assert.Equal(t, fingerprint.IPHash("203.0.113.7"), b.IPHash)
}
