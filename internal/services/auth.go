package services

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/journey-backend/internal/domain/journeyerr"
	"github.com/yungbote/journey-backend/internal/platform/logger"
	"github.com/yungbote/journey-backend/internal/requestdata"
)

// JWTClaims is the access token payload. Subject carries the user id.
type JWTClaims struct {
	jwt.RegisteredClaims
}

// AuthService validates access tokens issued elsewhere and attaches the
// caller's identity to the request context. Registration, login, and token
// refresh are not this service's business.
type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	// MintToken signs a short-lived token for the user, for seed tooling
	// and tests.
	MintToken(userID uuid.UUID, ttl time.Duration) (string, error)
}

type authService struct {
	log          *logger.Logger
	jwtSecretKey string
}

func NewAuthService(baseLog *logger.Logger, jwtSecretKey string) AuthService {
	return &authService{
		log:          baseLog.With("service", "AuthService"),
		jwtSecretKey: jwtSecretKey,
	}
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	const op = "auth.set_context"
	if tokenString == "" {
		return ctx, journeyerr.New(journeyerr.CodeUnauthorized, op, "missing token", nil)
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, journeyerr.New(journeyerr.CodeUnauthorized, op, "unexpected signing method", nil)
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, journeyerr.New(journeyerr.CodeUnauthorized, op, "invalid token", err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, journeyerr.New(journeyerr.CodeUnauthorized, op, "invalid or expired token", nil)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, journeyerr.New(journeyerr.CodeUnauthorized, op, "invalid user id in token", err)
	}
	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) MintToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}
