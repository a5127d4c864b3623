package achievement

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/riffbook-backend/internal/domain"
	"github.com/yungbote/riffbook-backend/internal/platform/dbctx"
	"github.com/yungbote/riffbook-backend/internal/platform/logger"
)

// AchievementRepo stores the seeded catalog rows.
type AchievementRepo interface {
	// Upsert inserts new codes and refreshes metadata of existing ones,
	// keeping their ids stable.
	Upsert(dbc dbctx.Context, rows []*types.Achievement) error
	ListAll(dbc dbctx.Context) ([]*types.Achievement, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Achievement, error)
	Count(dbc dbctx.Context) (int64, error)
}

type achievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return &achievementRepo{db: db, log: baseLog.With("repo", "AchievementRepo")}
}

func (r *achievementRepo) Upsert(dbc dbctx.Context, rows []*types.Achievement) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description", "icon", "category", "threshold"}),
		}).
		Create(&rows).Error
}

func (r *achievementRepo) ListAll(dbc dbctx.Context) ([]*types.Achievement, error) {
	out := []*types.Achievement{}
	if err := dbc.DB(r.db).
		Order("category ASC, threshold ASC, code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *achievementRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Achievement, error) {
	out := []*types.Achievement{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *achievementRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&types.Achievement{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
