package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/role"
)

const jwtContextKey = "userToken"

// Claims represents the authorization claims transmitted via a JWT.
// Tokens are issued by the authentication collaborator; this API only
// consumes them (GenerateToken exists for tests and tooling).
type Claims struct {
	jwt.StandardClaims
	Email     string   `json:"email,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	IsStaff   bool     `json:"is_staff,omitempty"`   // -> ADMIN PORTAL
	IsTeacher bool     `json:"is_teacher,omitempty"` // -> TEACHER PORTAL
	IsLearner bool     `json:"is_learner,omitempty"` // -> STUDENT PORTAL
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    conf.SecretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    jwtContextKey,
		Claims:        new(Claims),
	}
}

// GetClaims builds the claims for a caller identified by subject holding
// the given role set.
func GetClaims(subject string, roles []string, conf *core.Config) *Claims {
	now := time.Now()

	var isStaff, isTeacher, isLearner bool
	for _, r := range roles {
		switch cat, _ := role.CategoryOf(r); cat {
		case role.CategoryExecutive, role.CategoryTechnical, role.CategoryModeration, role.CategorySpecialized:
			isStaff = true
		case role.CategoryTeaching:
			isTeacher = true
		case role.CategoryLearning:
			isLearner = true
		}
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   subject,
			Audience:  "Academia",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Roles:     roles,
		IsStaff:   isStaff,
		IsTeacher: isTeacher,
		IsLearner: isLearner,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	cfg := newJWTConfig(conf)
	method := jwt.GetSigningMethod(cfg.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(cfg.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(jwtContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func contextActor(ctx echo.Context) core.Actor {
	var actor core.Actor
	if claims, err := getContextClaims(ctx); err == nil {
		actor.ID = claims.Subject
		actor.Email = claims.Email
	}
	return actor
}
