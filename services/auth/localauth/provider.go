// Package localauth is the identity provider used in DEV and in tests:
// bcrypt credentials in the document store, HS256 session tokens. It stands
// in for the hosted provider behind the same core.IdentityProvider surface.
package localauth

import (
	"context"
	"net/mail"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/mzalendo/kazi/core"
	"github.com/mzalendo/kazi/storage/docstore"
)

const credentialsCollection = "credentials"

type (
	// Claims represents the session claims transmitted via a JWT.
	Claims struct {
		jwt.StandardClaims
		Email string `json:"email,omitempty"`
	}

	Provider struct {
		coll     docstore.Collection
		appName  string
		secret   []byte
		tokenTTL time.Duration
	}
)

var _ core.IdentityProvider = (*Provider)(nil)

func NewProvider(store docstore.Store, conf *core.Config) *Provider {
	return &Provider{
		coll:     store.Collection(credentialsCollection),
		appName:  conf.AppName,
		secret:   []byte(conf.SecretKey),
		tokenTTL: conf.Server.SessionTTL,
	}
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (core.Identity, string, error) {
	email = core.CleanString(email, true /* lower */)
	if _, err := mail.ParseAddress(email); err != nil {
		return core.Identity{}, "", core.NewAuthError(core.AuthMalformedEmail, err)
	}

	if _, err := p.findByEmail(ctx, email); err == nil {
		return core.Identity{}, "", core.NewAuthError(core.AuthEmailInUse, nil)
	} else if errors.Cause(err) != errNoCredential {
		return core.Identity{}, "", errors.Wrap(err, "checking existing credential")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return core.Identity{}, "", errors.Wrap(err, "hashing password")
	}

	uid := uuid.NewString()
	err = p.coll.Set(ctx, uid, map[string]interface{}{
		"email":        email,
		"passwordHash": string(hash),
		"disabled":     false,
		"createdAt":    time.Now().UTC(),
	})
	if err != nil {
		return core.Identity{}, "", errors.Wrap(err, "storing credential")
	}

	ident := core.Identity{UID: uid, Email: email}
	token, err := p.generateToken(ident)
	return ident, token, err
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (core.Identity, string, error) {
	email = core.CleanString(email, true /* lower */)
	if _, err := mail.ParseAddress(email); err != nil {
		return core.Identity{}, "", core.NewAuthError(core.AuthMalformedEmail, err)
	}

	cred, err := p.findByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == errNoCredential {
			return core.Identity{}, "", core.NewAuthError(core.AuthNoSuchAccount, err)
		}
		return core.Identity{}, "", errors.Wrap(err, "finding credential")
	}
	if disabled, _ := cred.Data["disabled"].(bool); disabled {
		return core.Identity{}, "", core.NewAuthError(core.AuthAccountDisabled, nil)
	}
	hash, _ := cred.Data["passwordHash"].(string)
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return core.Identity{}, "", core.NewAuthError(core.AuthWrongCredential, err)
	}

	ident := core.Identity{UID: cred.ID, Email: email}
	token, err := p.generateToken(ident)
	return ident, token, err
}

func (p *Provider) VerifyToken(ctx context.Context, token string) (core.Identity, error) {
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !parsed.Valid {
		return core.Identity{}, errors.Wrap(err, "parsing session token")
	}
	return core.Identity{UID: claims.Subject, Email: claims.Email}, nil
}

// RevokeTokens is a no-op: local tokens are stateless and simply expire.
// The hosted provider revokes the account's refresh tokens here.
func (p *Provider) RevokeTokens(ctx context.Context, uid string) error { return nil }

var errNoCredential = errors.New("no credential for email")

func (p *Provider) findByEmail(ctx context.Context, email string) (docstore.Doc, error) {
	docs, err := p.coll.Query(ctx, []docstore.Filter{{Field: "email", Value: email}}, nil)
	if err != nil {
		return docstore.Doc{}, err
	}
	if len(docs) == 0 {
		return docstore.Doc{}, errNoCredential
	}
	return docs[0], nil
}

func (p *Provider) generateToken(ident core.Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    p.appName,
			Subject:   ident.UID,
			ExpiresAt: now.Add(p.tokenTTL).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: ident.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(p.secret)
	return ss, errors.Wrap(err, "signing token")
}
