package practice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/riffbook-backend/internal/domain"
	"github.com/yungbote/riffbook-backend/internal/platform/dbctx"
	"github.com/yungbote/riffbook-backend/internal/platform/logger"
)

type PracticeSessionRepo interface {
	Create(dbc dbctx.Context, s *types.PracticeSession) (*types.PracticeSession, error)
	GetByIDForUser(dbc dbctx.Context, userID, sessionID uuid.UUID) (*types.PracticeSession, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit, offset int) ([]*types.PracticeSession, error)
	// ListAllByUser loads the full history the achievement engine aggregates over.
	ListAllByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.PracticeSession, error)
	ListByUserInRange(dbc dbctx.Context, userID uuid.UUID, from, to time.Time) ([]*types.PracticeSession, error)
	CountByInstrument(dbc dbctx.Context, userID, instrumentID uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, userID, sessionID uuid.UUID, updates map[string]any) (bool, error)
	Delete(dbc dbctx.Context, userID, sessionID uuid.UUID) (bool, error)
}

type practiceSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPracticeSessionRepo(db *gorm.DB, baseLog *logger.Logger) PracticeSessionRepo {
	return &practiceSessionRepo{db: db, log: baseLog.With("repo", "PracticeSessionRepo")}
}

func (r *practiceSessionRepo) Create(dbc dbctx.Context, s *types.PracticeSession) (*types.PracticeSession, error) {
	if s == nil {
		return nil, nil
	}
	s.StartedAt = s.StartedAt.UTC()
	if err := dbc.DB(r.db).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *practiceSessionRepo) GetByIDForUser(dbc dbctx.Context, userID, sessionID uuid.UUID) (*types.PracticeSession, error) {
	if userID == uuid.Nil || sessionID == uuid.Nil {
		return nil, nil
	}
	var row types.PracticeSession
	if err := dbc.DB(r.db).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *practiceSessionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit, offset int) ([]*types.PracticeSession, error) {
	out := []*types.PracticeSession{}
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *practiceSessionRepo) ListAllByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.PracticeSession, error) {
	out := []*types.PracticeSession{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Select("id", "user_id", "instrument_id", "started_at", "duration_seconds", "final_bpm", "completion_rate", "content_source").
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUserInRange returns sessions with from <= started_at <= to.
func (r *practiceSessionRepo) ListByUserInRange(dbc dbctx.Context, userID uuid.UUID, from, to time.Time) ([]*types.PracticeSession, error) {
	out := []*types.PracticeSession{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ? AND started_at >= ? AND started_at <= ?", userID, from.UTC(), to.UTC()).
		Order("started_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *practiceSessionRepo) CountByInstrument(dbc dbctx.Context, userID, instrumentID uuid.UUID) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).
		Model(&types.PracticeSession{}).
		Where("user_id = ? AND instrument_id = ?", userID, instrumentID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *practiceSessionRepo) UpdateFields(dbc dbctx.Context, userID, sessionID uuid.UUID, updates map[string]any) (bool, error) {
	if len(updates) == 0 {
		return false, nil
	}
	res := dbc.DB(r.db).
		Model(&types.PracticeSession{}).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *practiceSessionRepo) Delete(dbc dbctx.Context, userID, sessionID uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Delete(&types.PracticeSession{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
