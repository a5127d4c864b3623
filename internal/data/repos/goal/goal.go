package goal

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/riffbook-backend/internal/domain"
	"github.com/yungbote/riffbook-backend/internal/platform/dbctx"
	"github.com/yungbote/riffbook-backend/internal/platform/logger"
)

type PracticeGoalRepo interface {
	Create(dbc dbctx.Context, g *types.PracticeGoal) (*types.PracticeGoal, error)
	GetByIDForUser(dbc dbctx.Context, userID, goalID uuid.UUID) (*types.PracticeGoal, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, activeOnly bool) ([]*types.PracticeGoal, error)
	UpdateFields(dbc dbctx.Context, userID, goalID uuid.UUID, updates map[string]any) (bool, error)
	Delete(dbc dbctx.Context, userID, goalID uuid.UUID) (bool, error)
	// ClearInstrument unscopes goals pointing at an instrument that is going away.
	ClearInstrument(dbc dbctx.Context, userID, instrumentID uuid.UUID) error
}

type practiceGoalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPracticeGoalRepo(db *gorm.DB, baseLog *logger.Logger) PracticeGoalRepo {
	return &practiceGoalRepo{db: db, log: baseLog.With("repo", "PracticeGoalRepo")}
}

func (r *practiceGoalRepo) Create(dbc dbctx.Context, g *types.PracticeGoal) (*types.PracticeGoal, error) {
	if g == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(g).Error; err != nil {
		return nil, err
	}
	return g, nil
}

func (r *practiceGoalRepo) GetByIDForUser(dbc dbctx.Context, userID, goalID uuid.UUID) (*types.PracticeGoal, error) {
	if userID == uuid.Nil || goalID == uuid.Nil {
		return nil, nil
	}
	var row types.PracticeGoal
	if err := dbc.DB(r.db).
		Where("id = ? AND user_id = ?", goalID, userID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *practiceGoalRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, activeOnly bool) ([]*types.PracticeGoal, error) {
	out := []*types.PracticeGoal{}
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).Where("user_id = ?", userID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *practiceGoalRepo) UpdateFields(dbc dbctx.Context, userID, goalID uuid.UUID, updates map[string]any) (bool, error) {
	if len(updates) == 0 {
		return false, nil
	}
	res := dbc.DB(r.db).
		Model(&types.PracticeGoal{}).
		Where("id = ? AND user_id = ?", goalID, userID).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *practiceGoalRepo) Delete(dbc dbctx.Context, userID, goalID uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).
		Where("id = ? AND user_id = ?", goalID, userID).
		Delete(&types.PracticeGoal{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *practiceGoalRepo) ClearInstrument(dbc dbctx.Context, userID, instrumentID uuid.UUID) error {
	return dbc.DB(r.db).
		Model(&types.PracticeGoal{}).
		Where("user_id = ? AND instrument_id = ?", userID, instrumentID).
		Update("instrument_id", nil).Error
}
