package achievement

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/riffbook-backend/internal/data/db"
	types "github.com/yungbote/riffbook-backend/internal/domain"
	"github.com/yungbote/riffbook-backend/internal/platform/dbctx"
	"github.com/yungbote/riffbook-backend/internal/platform/logger"
)

// UserAchievementRepo persists per-user achievement state. Every write is
// conditional and reports whether it applied, so concurrent evaluations
// for the same user can never produce duplicate rows or unlock twice.
// unlocked_at is only ever set by the insert that creates the row.
type UserAchievementRepo interface {
	InsertIfAbsent(dbc dbctx.Context, row *types.UserAchievement) (bool, error)
	UpdateLockedProgress(dbc dbctx.Context, rowID uuid.UUID, progress int) (bool, error)
	PinUnlockedProgress(dbc dbctx.Context, rowID uuid.UUID) (bool, error)
	GetByUserAndAchievement(dbc dbctx.Context, userID, achievementID uuid.UUID) (*types.UserAchievement, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserAchievement, error)
	ListRecentlyUnlocked(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.UserAchievement, error)
}

type userAchievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserAchievementRepo(db *gorm.DB, baseLog *logger.Logger) UserAchievementRepo {
	return &userAchievementRepo{db: db, log: baseLog.With("repo", "UserAchievementRepo")}
}

func (r *userAchievementRepo) InsertIfAbsent(dbc dbctx.Context, row *types.UserAchievement) (bool, error) {
	if row == nil || row.UserID == uuid.Nil || row.AchievementID == uuid.Nil {
		return false, nil
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		if db.IsUniqueViolation(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *userAchievementRepo) UpdateLockedProgress(dbc dbctx.Context, rowID uuid.UUID, progress int) (bool, error) {
	res := dbc.DB(r.db).
		Model(&types.UserAchievement{}).
		Where("id = ? AND unlocked_at IS NULL", rowID).
		Update("progress", progress)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *userAchievementRepo) PinUnlockedProgress(dbc dbctx.Context, rowID uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).
		Model(&types.UserAchievement{}).
		Where("id = ? AND unlocked_at IS NOT NULL", rowID).
		Update("progress", 100)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *userAchievementRepo) GetByUserAndAchievement(dbc dbctx.Context, userID, achievementID uuid.UUID) (*types.UserAchievement, error) {
	var row types.UserAchievement
	if err := dbc.DB(r.db).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *userAchievementRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserAchievement, error) {
	out := []*types.UserAchievement{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userAchievementRepo) ListRecentlyUnlocked(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.UserAchievement, error) {
	out := []*types.UserAchievement{}
	if userID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 {
		limit = 5
	}
	if err := dbc.DB(r.db).
		Where("user_id = ? AND unlocked_at IS NOT NULL", userID).
		Order("unlocked_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
