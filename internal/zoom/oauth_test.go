package zoom

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNeedsRefresh(t *testing.T) {
	fresh := Token{AccessToken: "t", ExpiresAt: time.Now().Add(time.Hour)}
	assert.False(t, fresh.needsRefresh())

	expired := Token{AccessToken: "t", ExpiresAt: time.Now().Add(-time.Minute)}
	assert.True(t, expired.needsRefresh())

	// inside the 5-minute early-refresh window
	nearExpiry := Token{AccessToken: "t", ExpiresAt: time.Now().Add(2 * time.Minute)}
	assert.True(t, nearExpiry.needsRefresh())

	// tokens without an expiry timestamp are used as-is
	noExpiry := Token{AccessToken: "t"}
	assert.False(t, noExpiry.needsRefresh())
}
