package firebaseauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzalendo/kazi/core"
)

func TestSignIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch {
		case req.Email == "ada@example.com" && req.Password == "hunter22":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"localId": "uid-1",
				"email":   req.Email,
				"idToken": "tok-1",
			})
		case req.Email == "ada@example.com":
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{"message": "INVALID_LOGIN_CREDENTIALS"},
			})
		default:
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{"message": "EMAIL_NOT_FOUND"},
			})
		}
	}))
	defer srv.Close()

	p := &Provider{apiKey: "test-key", httpClient: srv.Client(), endpoint: srv.URL}
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		ident, token, err := p.SignIn(ctx, "ada@example.com", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, core.Identity{UID: "uid-1", Email: "ada@example.com"}, ident)
		assert.Equal(t, "tok-1", token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := p.SignIn(ctx, "ada@example.com", "nope")
		authErr, ok := core.AsAuthError(err)
		require.True(t, ok)
		assert.Equal(t, core.AuthWrongCredential, authErr.Kind)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, _, err := p.SignIn(ctx, "ghost@example.com", "hunter22")
		authErr, ok := core.AsAuthError(err)
		require.True(t, ok)
		assert.Equal(t, core.AuthNoSuchAccount, authErr.Kind)
	})
}

func TestMapSignInError(t *testing.T) {
	tests := []struct {
		message string
		kind    core.AuthErrorKind
	}{
		{"EMAIL_NOT_FOUND", core.AuthNoSuchAccount},
		{"INVALID_PASSWORD", core.AuthWrongCredential},
		{"INVALID_LOGIN_CREDENTIALS", core.AuthWrongCredential},
		{"INVALID_EMAIL", core.AuthMalformedEmail},
		{"USER_DISABLED", core.AuthAccountDisabled},
		{"TOO_MANY_ATTEMPTS_TRY_LATER : try again later", core.AuthRateLimited},
		{"SOMETHING_ELSE", core.AuthUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			authErr, ok := core.AsAuthError(mapSignInError(tt.message))
			require.True(t, ok)
			assert.Equal(t, tt.kind, authErr.Kind)
		})
	}
}
