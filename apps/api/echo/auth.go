package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/Hanyshennawy/moe-scorm-lms/core"
	"github.com/Hanyshennawy/moe-scorm-lms/core/progress"
)

const contextTokenKey = "learnerToken"

// Claims represents the authorization claims transmitted via a JWT issued by the identity provider.
// The subject is the learner id.
type Claims struct {
	jwt.StandardClaims
	Name    string `json:"name,omitempty"`
	IsAdmin bool   `json:"is_admin,omitempty"`
}

func newJWTConfig(secret string) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(secret),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

func (c Claims) Learner() progress.Learner {
	return progress.Learner{ID: c.Subject, Name: c.Name}
}

func (c Claims) Person() core.Person {
	return core.Person{ID: c.Subject, Name: c.Name}
}

// NewClaims returns claims for a learner valid for `ttl`.
func NewClaims(learnerID, name string, isAdmin bool, ttl time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   learnerID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
		Name:    name,
		IsAdmin: isAdmin,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims, secret string) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok && claims.Subject != "" {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextLearner(ctx echo.Context) (progress.Learner, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return progress.Learner{}, err
	}
	return claims.Learner(), nil
}
