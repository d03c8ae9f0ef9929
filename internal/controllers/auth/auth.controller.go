package authController

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"dutydesk/config"
	"dutydesk/internal/database"
	"dutydesk/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
)

const sessionTTL = 12 * time.Hour

// AuthController issues desk session tokens. The desk is a shared terminal:
// every officer signs in with their own name but the single desk PIN.
type AuthController struct {
	db     database.DB
	config config.Config
	log    logger.Logger
}

type LoginRequest struct {
	DutyOfficer string `json:"dutyOfficer"`
	Pin         string `json:"pin"`
}

type LoginResponse struct {
	Token       string    `json:"token"`
	DutyOfficer string    `json:"dutyOfficer"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Session identifies the officer behind an authenticated request.
type Session struct {
	DutyOfficer string `json:"dutyOfficer"`
	SessionID   string `json:"sessionId"`
}

type AuthControllerInterface interface {
	Login(ctx context.Context, request *LoginRequest) (*LoginResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*Session, error)
	Logout(ctx context.Context, session *Session) error
}

func New(config config.Config, db database.DB) AuthControllerInterface {
	return &AuthController{
		db:     db,
		config: config,
		log:    logger.New("authController"),
	}
}

func (c *AuthController) Login(
	ctx context.Context,
	request *LoginRequest,
) (*LoginResponse, error) {
	log := c.log.Function("Login")

	officer := strings.TrimSpace(request.DutyOfficer)
	if officer == "" {
		return nil, log.ErrorWithType(ErrValidation, "dutyOfficer is required")
	}

	if subtle.ConstantTimeCompare([]byte(request.Pin), []byte(c.config.DeskPin)) != 1 {
		return nil, log.ErrorWithType(ErrUnauthorized, "invalid desk pin", "dutyOfficer", officer)
	}

	sessionID := uuid.New().String()
	expiresAt := time.Now().Add(sessionTTL)

	claims := jwt.RegisteredClaims{
		Subject:   officer,
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(c.config.JWTSecret))
	if err != nil {
		return nil, log.Err("failed to sign session token", err)
	}

	err = database.NewCacheBuilder(c.db.Cache.Session, sessionID).
		WithStruct(officer).
		WithTTL(sessionTTL).
		WithContext(ctx).
		Set()
	if err != nil {
		return nil, log.Err("failed to store session", err, "dutyOfficer", officer)
	}

	log.Info("Officer signed in", "dutyOfficer", officer)

	return &LoginResponse{
		Token:       token,
		DutyOfficer: officer,
		ExpiresAt:   expiresAt,
	}, nil
}

func (c *AuthController) ValidateToken(
	ctx context.Context,
	tokenString string,
) (*Session, error) {
	log := c.log.Function("ValidateToken")

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(c.config.JWTSecret), nil
		},
	)
	if err != nil || !token.Valid {
		return nil, log.ErrorWithType(ErrUnauthorized, "invalid session token")
	}

	// Tokens are revocable: logout removes the session record.
	var officer string
	found, err := database.NewCacheBuilder(c.db.Cache.Session, claims.ID).
		WithContext(ctx).
		Get(&officer)
	if err != nil {
		return nil, log.Err("failed to look up session", err)
	}
	if !found {
		return nil, log.ErrorWithType(ErrUnauthorized, "session expired or revoked")
	}

	return &Session{
		DutyOfficer: officer,
		SessionID:   claims.ID,
	}, nil
}

func (c *AuthController) Logout(ctx context.Context, session *Session) error {
	log := c.log.Function("Logout")

	if session == nil {
		return nil
	}

	err := database.NewCacheBuilder(c.db.Cache.Session, session.SessionID).
		WithContext(ctx).
		Delete()
	if err != nil {
		return log.Err("failed to revoke session", err, "dutyOfficer", session.DutyOfficer)
	}

	log.Info("Officer signed out", "dutyOfficer", session.DutyOfficer)

	return nil
}
