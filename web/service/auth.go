package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sensorlab/doorwatch/config"
	"github.com/sensorlab/doorwatch/database/model"
)

const refreshTokenType = "refresh"

// Claims is the payload of every issued token: the subject is the
// username, the role rides alongside, and refresh tokens are marked so
// they cannot be used directly against the API.
type Claims struct {
	Role model.Role `json:"role"`
	Type string     `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

// AuthService is a stateless signer and verifier of access and refresh
// tokens. Nothing is persisted: possession of a validly signed,
// unexpired token is the sole credential, and tokens stay valid until
// natural expiry because there is no revocation list.
type AuthService struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	userService UserService
}

func NewAuthService() *AuthService {
	return &AuthService{
		Secret:     []byte(config.GetTokenSecret()),
		AccessTTL:  config.GetAccessTokenTTL(),
		RefreshTTL: config.GetRefreshTokenTTL(),
	}
}

// Login verifies the credentials and issues an access/refresh token pair.
func (s *AuthService) Login(username, password string) (access, refresh string, err error) {
	user, err := s.userService.CheckUser(username, password)
	if err != nil {
		return "", "", err
	}
	access, err = s.IssueAccessToken(user.Username, user.Role)
	if err != nil {
		return "", "", err
	}
	refresh, err = s.IssueRefreshToken(user.Username, user.Role)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *AuthService) IssueAccessToken(username string, role model.Role) (string, error) {
	return s.issue(username, role, s.AccessTTL, "")
}

func (s *AuthService) IssueRefreshToken(username string, role model.Role) (string, error) {
	return s.issue(username, role, s.RefreshTTL, refreshTokenType)
}

func (s *AuthService) issue(username string, role model.Role, ttl time.Duration, typ string) (string, error) {
	if username == "" {
		return "", ErrInvalidCredentials
	}
	now := time.Now()
	claims := Claims{
		Role: role,
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// ValidateToken parses and verifies a token, distinguishing bad
// signatures, expiry and garbage input.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// Refresh validates a refresh token and reissues a short-lived access
// token for the same principal.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	claims, err := s.ValidateToken(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.Type != refreshTokenType {
		return "", ErrTokenMalformed
	}
	return s.IssueAccessToken(claims.Subject, claims.Role)
}

// IsRefreshToken reports whether the claims belong to a refresh token.
func (c *Claims) IsRefreshToken() bool {
	return c.Type == refreshTokenType
}
