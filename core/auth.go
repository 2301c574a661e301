package core

import (
	"context"

	"github.com/pkg/errors"
)

// Identity is the hosted provider's view of an account. The UID doubles as
// the key of the matching profile document in the `users` collection.
type Identity struct {
	UID   string
	Email string
}

// IdentityProvider abstracts the hosted identity service (Firebase Auth in
// production, a JWT+bcrypt stand-in locally). Sign-up and sign-in both
// return a session token to be stored in the browser cookie; VerifyToken
// resolves that cookie back into an Identity on every protected request.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (Identity, string, error)
	SignIn(ctx context.Context, email, password string) (Identity, string, error)
	VerifyToken(ctx context.Context, token string) (Identity, error)
	RevokeTokens(ctx context.Context, uid string) error
}

// AuthErrorKind is the closed set of credential failures the UI knows how
// to phrase. Anything else surfaces as a generic auth failure.
type AuthErrorKind int

const (
	AuthUnknown AuthErrorKind = iota
	AuthNoSuchAccount
	AuthWrongCredential
	AuthMalformedEmail
	AuthAccountDisabled
	AuthRateLimited
	AuthEmailInUse
)

var authErrorMessages = map[AuthErrorKind]string{
	AuthUnknown:         "Authentication failed. Please try again.",
	AuthNoSuchAccount:   "No account found with this email. Please sign up.",
	AuthWrongCredential: "Incorrect password. Please try again.",
	AuthMalformedEmail:  "Invalid email address. Please check your email.",
	AuthAccountDisabled: "This account has been disabled. Please contact support.",
	AuthRateLimited:     "Too many failed login attempts. Please try again later.",
	AuthEmailInUse:      "An account with this email already exists. Please log in.",
}

type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func NewAuthError(kind AuthErrorKind, err error) error {
	return &AuthError{Kind: kind, Err: err}
}

func (e AuthError) Error() string {
	if e.Err == nil {
		return e.Message()
	}
	return e.Err.Error()
}

func (e AuthError) Unwrap() error { return e.Err }

// Message is the user-facing phrasing for this failure.
func (e AuthError) Message() string {
	return authErrorMessages[e.Kind]
}

// AsAuthError unpacks err into an *AuthError if it is one.
func AsAuthError(err error) (*AuthError, bool) {
	var aErr *AuthError
	if errors.As(err, &aErr) {
		return aErr, true
	}
	return nil, false
}
