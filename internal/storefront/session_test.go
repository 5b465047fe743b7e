package storefront

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenMaker_RoundTrip(t *testing.T) {
	tm := NewTokenMaker("0123456789abcdef0123456789abcdef", time.Hour)

	sess, err := tm.New()
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	require.Contains(t, sess.ID, "s_")

	sid, err := tm.Parse(sess.Token)
	require.NoError(t, err)
	require.Equal(t, sess.ID, sid)
}

func TestTokenMaker_Rejects(t *testing.T) {
	tm := NewTokenMaker("0123456789abcdef0123456789abcdef", time.Hour)
	sess, err := tm.New()
	require.NoError(t, err)

	other := NewTokenMaker("fedcba9876543210fedcba9876543210", time.Hour)
	_, err = other.Parse(sess.Token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.Parse("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	tm.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = tm.Parse(sess.Token)
	require.ErrorIs(t, err, ErrInvalidToken, "expired token accepted")
}

func TestRequireSession(t *testing.T) {
	tm := NewTokenMaker("0123456789abcdef0123456789abcdef", time.Hour)
	sess, err := tm.New()
	require.NoError(t, err)

	var seen string
	h := RequireSession(tm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, sess.ID, seen)
}
