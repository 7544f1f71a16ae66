package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	s := New("secret")
	token, err := s.Issue()
	require.NoError(t, err)
	assert.NoError(t, s.Verify(token))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := New("secret").Issue()
	require.NoError(t, err)
	assert.Error(t, New("other").Verify(token))
}

func TestVerifyRejectsGarbage(t *testing.T) {
	assert.Error(t, New("secret").Verify("not-a-token"))
}

func TestCookieLifecycle(t *testing.T) {
	s := New("secret")
	token, err := s.Issue()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	s.SetCookie(w, token)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Zero(t, cookies[0].MaxAge)

	w = httptest.NewRecorder()
	s.ClearCookie(w)
	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
