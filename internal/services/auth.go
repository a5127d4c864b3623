package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/riffbook-backend/internal/data/db"
	"github.com/yungbote/riffbook-backend/internal/data/repos"
	types "github.com/yungbote/riffbook-backend/internal/domain"
	"github.com/yungbote/riffbook-backend/internal/platform/apierr"
	"github.com/yungbote/riffbook-backend/internal/platform/ctxutil"
	"github.com/yungbote/riffbook-backend/internal/platform/dbctx"
	"github.com/yungbote/riffbook-backend/internal/platform/logger"
)

const minPasswordLength = 8

type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Timezone    string `json:"timezone"`
}

type AuthService interface {
	Register(dbc dbctx.Context, in RegisterInput) (*types.User, string, error)
	Login(dbc dbctx.Context, email, password string) (*types.User, string, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type JWTClaims struct {
	jwt.RegisteredClaims
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string, accessTTL time.Duration) AuthService {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	return &authService{
		db:           db,
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}
}

func (as *authService) Register(dbc dbctx.Context, in RegisterInput) (*types.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, "", invalid("invalid_email", "a valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, "", invalid("invalid_password", "password must be at least %d characters", minPasswordLength)
	}
	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}
	tz := strings.TrimSpace(in.Timezone)
	if tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return nil, "", invalid("invalid_timezone", "unknown timezone %q", tz)
		}
	}

	exists, err := as.userRepo.EmailExists(dbc, email)
	if err != nil {
		return nil, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, "", apierr.Conflict("email_taken", errors.New("email already registered"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	u := &types.User{
		Email:       email,
		Password:    string(hash),
		DisplayName: displayName,
		Timezone:    tz,
	}
	if _, err := as.userRepo.Create(dbc, []*types.User{u}); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, "", apierr.Conflict("email_taken", errors.New("email already registered"))
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := as.generateAccessToken(u)
	if err != nil {
		return nil, "", err
	}
	as.log.Info("User registered", "user_id", u.ID)
	return u, token, nil
}

func (as *authService) Login(dbc dbctx.Context, email, password string) (*types.User, string, error) {
	u, err := as.userRepo.GetByEmail(dbc, email)
	if err != nil {
		return nil, "", fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, "", apierr.Unauthorized(errors.New("invalid email or password"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, "", apierr.Unauthorized(errors.New("invalid email or password"))
	}
	token, err := as.generateAccessToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (as *authService) generateAccessToken(u *types.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired JWT token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
