// Package firebaseauth implements core.IdentityProvider on Firebase
// Authentication. Account management and token verification go through the
// Admin SDK; password sign-in is not exposed by the Admin SDK and goes
// through the Identity Toolkit REST API instead.
package firebaseauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"

	"github.com/mzalendo/kazi/core"
)

const signInURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

type Provider struct {
	client *auth.Client
	apiKey string

	httpClient *http.Client
	endpoint   string
}

var _ core.IdentityProvider = (*Provider)(nil)

func NewProvider(ctx context.Context, app *firebase.App, webAPIKey string) (*Provider, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "getting auth client")
	}
	return &Provider{
		client:     client,
		apiKey:     webAPIKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   signInURL,
	}, nil
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (core.Identity, string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password)

	rec, err := p.client.CreateUser(ctx, params)
	if err != nil {
		switch {
		case auth.IsEmailAlreadyExists(err):
			return core.Identity{}, "", core.NewAuthError(core.AuthEmailInUse, err)
		case strings.Contains(err.Error(), "INVALID_EMAIL"):
			return core.Identity{}, "", core.NewAuthError(core.AuthMalformedEmail, err)
		}
		return core.Identity{}, "", errors.Wrap(err, "creating auth user")
	}

	// Sign the fresh account in so the caller gets a session token.
	ident, token, err := p.SignIn(ctx, email, password)
	if err != nil {
		return core.Identity{UID: rec.UID, Email: rec.Email}, "", err
	}
	return ident, token, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (core.Identity, string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return core.Identity{}, "", errors.Wrap(err, "encoding sign-in request")
	}

	url := fmt.Sprintf("%s?key=%s", p.endpoint, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return core.Identity{}, "", errors.Wrap(err, "building sign-in request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.httpClient.Do(req)
	if err != nil {
		return core.Identity{}, "", errors.Wrap(err, "calling identity toolkit")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(res.Body).Decode(&apiErr); err != nil {
			return core.Identity{}, "", errors.Wrapf(err, "sign-in failed with status %d", res.StatusCode)
		}
		return core.Identity{}, "", mapSignInError(apiErr.Error.Message)
	}

	var payload struct {
		LocalID string `json:"localId"`
		Email   string `json:"email"`
		IDToken string `json:"idToken"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return core.Identity{}, "", errors.Wrap(err, "decoding sign-in response")
	}
	return core.Identity{UID: payload.LocalID, Email: payload.Email}, payload.IDToken, nil
}

func (p *Provider) VerifyToken(ctx context.Context, token string) (core.Identity, error) {
	tok, err := p.client.VerifyIDToken(ctx, token)
	if err != nil {
		return core.Identity{}, errors.Wrap(err, "verifying id token")
	}
	email, _ := tok.Claims["email"].(string)
	return core.Identity{UID: tok.UID, Email: email}, nil
}

func (p *Provider) RevokeTokens(ctx context.Context, uid string) error {
	return errors.Wrap(p.client.RevokeRefreshTokens(ctx, uid), "revoking refresh tokens")
}

func mapSignInError(message string) error {
	err := errors.Errorf("identity toolkit: %s", message)
	switch {
	case strings.HasPrefix(message, "EMAIL_NOT_FOUND"):
		return core.NewAuthError(core.AuthNoSuchAccount, err)
	case strings.HasPrefix(message, "INVALID_PASSWORD"),
		strings.HasPrefix(message, "INVALID_LOGIN_CREDENTIALS"):
		return core.NewAuthError(core.AuthWrongCredential, err)
	case strings.HasPrefix(message, "INVALID_EMAIL"):
		return core.NewAuthError(core.AuthMalformedEmail, err)
	case strings.HasPrefix(message, "USER_DISABLED"):
		return core.NewAuthError(core.AuthAccountDisabled, err)
	case strings.HasPrefix(message, "TOO_MANY_ATTEMPTS_TRY_LATER"):
		return core.NewAuthError(core.AuthRateLimited, err)
	}
	return core.NewAuthError(core.AuthUnknown, err)
}
