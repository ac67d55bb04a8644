package identity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-athlete-backend/internal/domain"
	"go-athlete-backend/internal/identity"
	"go-athlete-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *identity.Adapter) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, identity.New(srv.URL, "anon-key", 2*time.Second, nil)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestSignUp(t *testing.T) {
	t.Run("Auto-confirmed account returns identity", func(t *testing.T) {
		_, adapter := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/signup", r.URL.Path)
			assert.Equal(t, "anon-key", r.Header.Get("apikey"))
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"access_token": "tok-1",
				"user":         map[string]string{"id": "u1", "email": "a@b.com"},
			})
		})

		ident, err := adapter.SignUp(context.Background(), "a@b.com", "secret123", "A")
		assert.NoError(t, err)
		assert.Equal(t, "u1", ident.UserID)
		assert.Equal(t, "tok-1", ident.AccessToken)
		assert.True(t, ident.Confirmed)
	})

	t.Run("Missing access token means confirmation required", func(t *testing.T) {
		_, adapter := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"id": "u1", "email": "a@b.com",
			})
		})

		ident, err := adapter.SignUp(context.Background(), "a@b.com", "secret123", "A")
		assert.Nil(t, ident)
		assert.Equal(t, apperror.KindConfirmationRequired, apperror.KindOf(err))
	})

	t.Run("Duplicate email translates to user_already_exists", func(t *testing.T) {
		_, adapter := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"msg": "User already registered",
			})
		})

		_, err := adapter.SignUp(context.Background(), "a@b.com", "secret123", "A")
		assert.Equal(t, apperror.KindUserAlreadyExists, apperror.KindOf(err))
	})

	t.Run("Unreachable provider translates to network_error", func(t *testing.T) {
		adapter := identity.New("http://127.0.0.1:1", "anon-key", 200*time.Millisecond, nil)

		_, err := adapter.SignUp(context.Background(), "a@b.com", "secret123", "A")
		assert.Equal(t, apperror.KindNetworkError, apperror.KindOf(err))
	})
}

func TestConfirmSignUp(t *testing.T) {
	t.Run("Accepted code", func(t *testing.T) {
		_, adapter := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/verify", r.URL.Path)
			writeJSON(w, http.StatusOK, map[string]string{})
		})

		ok, err := adapter.ConfirmSignUp(context.Background(), "a@b.com", "123456")
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Rejected code translates to confirmation_failed", func(t *testing.T) {
		_, adapter := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Token has expired or is invalid"})
		})

		ok, err := adapter.ConfirmSignUp(context.Background(), "a@b.com", "000000")
		assert.False(t, ok)
		assert.Equal(t, apperror.KindConfirmationFailed, apperror.KindOf(err))
	})
}

func TestSignIn(t *testing.T) {
	t.Run("Valid credentials", func(t *testing.T) {
		_, adapter := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/token", r.URL.Path)
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"access_token": "tok-2",
				"user":         map[string]string{"id": "u2", "email": "a@b.com"},
			})
		})

		ident, err := adapter.SignIn(context.Background(), "a@b.com", "secret123")
		assert.NoError(t, err)
		assert.Equal(t, "u2", ident.UserID)
	})

	t.Run("Bad credentials translate to authentication_failed with a generic message", func(t *testing.T) {
		_, adapter := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error_description": "Invalid login credentials"})
		})

		_, err := adapter.SignIn(context.Background(), "a@b.com", "wrong")
		assert.Equal(t, apperror.KindAuthenticationFailed, apperror.KindOf(err))
		assert.Equal(t, "Invalid email or password", err.Error())
	})

	t.Run("Unconfirmed account translates to confirmation_required", func(t *testing.T) {
		_, adapter := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error_description": "Email not confirmed"})
		})

		_, err := adapter.SignIn(context.Background(), "a@b.com", "secret123")
		assert.Equal(t, apperror.KindConfirmationRequired, apperror.KindOf(err))
	})
}

func TestCurrentSessionNeverFails(t *testing.T) {
	t.Run("Valid token reports signed in", func(t *testing.T) {
		_, adapter := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok-3", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]string{"id": "u3"})
		})

		info := adapter.CurrentSession(context.Background(), "tok-3")
		assert.True(t, info.IsSignedIn)
		assert.Equal(t, "u3", info.UserID)
	})

	t.Run("Rejected token reports signed out, no error", func(t *testing.T) {
		_, adapter := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "invalid JWT"})
		})

		info := adapter.CurrentSession(context.Background(), "tok-bad")
		assert.False(t, info.IsSignedIn)
	})

	t.Run("Empty token reports signed out without a request", func(t *testing.T) {
		called := false
		_, adapter := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		info := adapter.CurrentSession(context.Background(), "")
		assert.False(t, info.IsSignedIn)
		assert.False(t, called)
	})
}

func TestFetchUserAttributes(t *testing.T) {
	t.Run("Attributes flattened from metadata", func(t *testing.T) {
		_, adapter := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"id":    "u4",
				"email": "a@b.com",
				"phone": "+15550001111",
				"user_metadata": map[string]interface{}{
					"display_name": "Jordan",
					"ignored":      42,
				},
			})
		})

		attrs, err := adapter.FetchUserAttributes(context.Background(), "tok-4")
		assert.NoError(t, err)
		assert.Equal(t, "u4", attrs["sub"])
		assert.Equal(t, "+15550001111", attrs["phone_number"])
		assert.Equal(t, "Jordan", attrs["display_name"])
		assert.NotContains(t, attrs, "ignored")
	})

	t.Run("Expired token translates to session_expired", func(t *testing.T) {
		_, adapter := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "JWT expired"})
		})

		_, err := adapter.FetchUserAttributes(context.Background(), "tok-old")
		assert.Equal(t, apperror.KindSessionExpired, apperror.KindOf(err))
	})
}

func TestUpdateUserAttributes(t *testing.T) {
	_, adapter := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "+15550002222", body["phone"])
		data, _ := body["data"].(map[string]interface{})
		assert.Equal(t, "Jordan", data["display_name"])
		writeJSON(w, http.StatusOK, map[string]string{})
	})

	pending, err := adapter.UpdateUserAttributes(context.Background(), "tok-5", map[string]string{
		"phone_number": "+15550002222",
		"display_name": "Jordan",
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"phone_number"}, pending)
}

func TestSignOut(t *testing.T) {
	t.Run("Global scope requested", func(t *testing.T) {
		_, adapter := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/logout", r.URL.Path)
			assert.Equal(t, "global", r.URL.Query().Get("scope"))
			w.WriteHeader(http.StatusNoContent)
		})

		result := adapter.SignOut(context.Background(), "tok-6", true)
		assert.Equal(t, domain.SignOutComplete, result.Status)
	})

	t.Run("Already-invalid token is partial, not failed", func(t *testing.T) {
		_, adapter := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "invalid JWT"})
		})

		result := adapter.SignOut(context.Background(), "tok-dead", false)
		assert.Equal(t, domain.SignOutPartial, result.Status)
		assert.Len(t, result.SubErrors, 1)
	})

	t.Run("Provider failure is reported as failed", func(t *testing.T) {
		_, adapter := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"msg": "boom"})
		})

		result := adapter.SignOut(context.Background(), "tok-7", false)
		assert.Equal(t, domain.SignOutFailed, result.Status)
	})
}
