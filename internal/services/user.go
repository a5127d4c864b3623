package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/riffbook-backend/internal/data/repos"
	types "github.com/yungbote/riffbook-backend/internal/domain"
	"github.com/yungbote/riffbook-backend/internal/platform/dbctx"
	"github.com/yungbote/riffbook-backend/internal/platform/logger"
)

type UpdateMeInput struct {
	DisplayName OptionalString `json:"display_name"`
	Timezone    OptionalString `json:"timezone"`
}

type UserService interface {
	GetMe(dbc dbctx.Context) (*types.User, error)
	UpdateMe(dbc dbctx.Context, in UpdateMeInput) (*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		db:       db,
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func (us *userService) GetMe(dbc dbctx.Context) (*types.User, error) {
	userID, err := requireUser(dbc)
	if err != nil {
		return nil, err
	}
	u, err := us.userRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (us *userService) UpdateMe(dbc dbctx.Context, in UpdateMeInput) (*types.User, error) {
	userID, err := requireUser(dbc)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.DisplayName.Set {
		name := ""
		if in.DisplayName.Value != nil {
			name = strings.TrimSpace(*in.DisplayName.Value)
		}
		if name == "" {
			return nil, invalid("invalid_display_name", "display name cannot be empty")
		}
		updates["display_name"] = name
	}
	if in.Timezone.Set {
		tz := ""
		if in.Timezone.Value != nil {
			tz = *in.Timezone.Value
			if _, err := time.LoadLocation(tz); err != nil {
				return nil, invalid("invalid_timezone", "unknown timezone %q", tz)
			}
		}
		updates["timezone"] = tz
	}
	if err := us.userRepo.UpdateProfile(dbc, userID, updates); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return us.GetMe(dbc)
}
