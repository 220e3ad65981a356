package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
	appErrors "github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/errors"
)

type authUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// AuthConfig defines how bearer tokens are verified.
type AuthConfig struct {
	AccessTokenSecret string
	Issuer            string
}

// AuthService verifies access tokens issued by the identity service. Token issuance lives there.
type AuthService struct {
	users  authUserReader
	logger *zap.Logger
	config AuthConfig
}

// NewAuthService constructs an AuthService instance. users may be nil to skip the account check.
func NewAuthService(users authUserReader, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{users: users, logger: logger, config: config}
}

// ValidateToken parses and validates a JWT token string.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

// Authenticate validates the token and confirms the account behind it is still active.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if s.users == nil {
		return claims, nil
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		s.logger.Error("failed to load token subject", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, appErrors.Store(err, "failed to verify account")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account is inactive")
	}
	if user.Role != claims.Role {
		s.logger.Warn("token role differs from account role",
			zap.String("user_id", user.ID),
			zap.String("token_role", string(claims.Role)),
			zap.String("account_role", string(user.Role)),
		)
		claims.Role = user.Role
	}
	if claims.FullName == "" {
		claims.FullName = user.FullName
	}
	return claims, nil
}
