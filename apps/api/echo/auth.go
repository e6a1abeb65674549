package echoapi

import (
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/klu2500030136/lptd-app/core/user"
)

const (
	contextTokenKey = "userToken"
	contextUserKey  = "user"
	audience        = "Marksheet"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Username string    `json:"username,omitempty"`
	Role     user.Role `json:"role,omitempty"`
}

// UserID returns the user ID the token was issued for.
func (c Claims) UserID() (int, error) {
	return strconv.Atoi(c.Subject)
}

// Auth issues and verifies the API tokens.
type Auth struct {
	signingKey []byte
	issuer     string
	expDelta   time.Duration

	nowFunc func() time.Time // mockable
}

func NewAuth(secretKey, issuer string, expDelta time.Duration) *Auth {
	return &Auth{
		signingKey: []byte(secretKey),
		issuer:     issuer,
		expDelta:   expDelta,
		nowFunc:    time.Now,
	}
}

func (a *Auth) jwtConfig() middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    a.signingKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

func (a *Auth) UserClaims(usr user.User) *Claims {
	now := a.nowFunc()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    a.issuer,
			Subject:   strconv.Itoa(usr.ID),
			Audience:  audience,
			ExpiresAt: now.Add(a.expDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: usr.Username,
		Role:     usr.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func (a *Auth) GenerateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString(a.signingKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// UserToken is a shortcut for GenerateToken(UserClaims(usr)).
func (a *Auth) UserToken(usr user.User) (string, error) {
	return a.GenerateToken(a.UserClaims(usr))
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextUser loads the token's user, caching it on the context.
func getContextUser(ctx echo.Context, svc *user.Service) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting context claims")
	}
	id, err := claims.UserID()
	if err != nil {
		return user.User{}, errUnauthorized
	}
	usr, err := svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errUnauthorized
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}
