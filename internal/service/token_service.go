package service

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-enrollment-server/internal/model"
)

// registeredClaims are added by Issue and removed again by Verify.
var registeredClaims = []string{"iat", "exp", "iss"}

type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration, issuer string) *TokenService {
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for issuing and verifying.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

func (s *TokenService) Issue(claim model.IdentityClaim) (string, error) {
	now := s.now().UTC()

	claims := jwt.MapClaims{}
	maps.Copy(claims, claim)
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(s.ttl).Unix()
	if s.issuer != "" {
		claims["iss"] = s.issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

func (s *TokenService) Verify(tokenString string) (claim model.IdentityClaim, err error) {
	defer func() {
		if r := recover(); r != nil {
			claim, err = nil, model.ErrInvalidToken
		}
	}()

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, model.ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, model.ErrInvalidToken
	}

	claim = model.IdentityClaim{}
	maps.Copy(claim, mapClaims)
	for _, key := range registeredClaims {
		delete(claim, key)
	}

	return claim, nil
}
