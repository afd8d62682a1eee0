package contexthelpers_test

import (
	"context"
	"github.com/myrjola/sentinels/internal/contexthelpers"
	"github.com/stretchr/testify/require"
	"net/http/httptest"
	"testing"
)

func TestSettersAndGetters(t *testing.T) {
	r := httptest.NewRequest("GET", "/history", nil)
	r = contexthelpers.SetSessionID(r, "session-a")
	r = contexthelpers.SetCurrentPath(r, "/history")
	r = contexthelpers.SetCSRFToken(r, "csrf")
	r = contexthelpers.SetCSPNonce(r, "nonce")

	ctx := r.Context()
	require.Equal(t, "session-a", contexthelpers.SessionID(ctx))
	require.Equal(t, "/history", contexthelpers.CurrentPath(ctx))
	require.Equal(t, "csrf", contexthelpers.CSRFToken(ctx))
	require.Equal(t, "nonce", contexthelpers.CSPNonce(ctx))

	empty := context.Background()
	require.Empty(t, contexthelpers.SessionID(empty))
	require.Empty(t, contexthelpers.CSPNonce(empty))
}
