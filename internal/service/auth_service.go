package service

import (
	"academy_backend/internal/apperr"
	"academy_backend/internal/config"
	"academy_backend/internal/model"
	"academy_backend/internal/repository"
	"academy_backend/internal/util"
	"academy_backend/pkg/logger"
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

type AuthService struct {
	Store  *repository.Store
	Tokens TokenStore
	Cfg    *config.JWTConfig
}

func NewAuthService(store *repository.Store, tokens TokenStore, cfg *config.JWTConfig) *AuthService {
	return &AuthService{Store: store, Tokens: tokens, Cfg: cfg}
}

var errInvalidCredentials = apperr.Validation("invalid credentials")

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (_ *LoginResponse, err error) {
	defer guard("log in", &err, zap.String("email", req.Email))

	user, err := s.Store.Users.FindOne(ctx, repository.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.Log.Warn("failed login attempt", zap.String("user", user.ID))
		return nil, errInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Cfg.Secret, s.Cfg.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token, ExpiresAt: time.Now().Add(s.Cfg.ExpireTime), User: user}, nil
}

// Logout revokes the token until it expires.
func (s *AuthService) Logout(ctx context.Context, claims *util.Claims) (err error) {
	defer guard("log out", &err, zap.String("user", claims.UserID))

	ttl := time.Hour
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	return s.Tokens.Revoke(ctx, claims.ID, ttl)
}

func (s *AuthService) CurrentUser(ctx context.Context, callerID string) (_ *model.User, err error) {
	defer guard("fetch the current user", &err, zap.String("user", callerID))
	return loadCaller(ctx, s.Store, callerID)
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
