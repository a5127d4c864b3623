package practice

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/riffbook-backend/internal/domain"
	"github.com/yungbote/riffbook-backend/internal/platform/dbctx"
	"github.com/yungbote/riffbook-backend/internal/platform/logger"
)

type InstrumentRepo interface {
	Create(dbc dbctx.Context, inst *types.Instrument) (*types.Instrument, error)
	GetByIDForUser(dbc dbctx.Context, userID, instrumentID uuid.UUID) (*types.Instrument, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Instrument, error)
	Delete(dbc dbctx.Context, userID, instrumentID uuid.UUID) (bool, error)
}

type instrumentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInstrumentRepo(db *gorm.DB, baseLog *logger.Logger) InstrumentRepo {
	return &instrumentRepo{db: db, log: baseLog.With("repo", "InstrumentRepo")}
}

func (r *instrumentRepo) Create(dbc dbctx.Context, inst *types.Instrument) (*types.Instrument, error) {
	if inst == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(inst).Error; err != nil {
		return nil, err
	}
	return inst, nil
}

func (r *instrumentRepo) GetByIDForUser(dbc dbctx.Context, userID, instrumentID uuid.UUID) (*types.Instrument, error) {
	if userID == uuid.Nil || instrumentID == uuid.Nil {
		return nil, nil
	}
	var row types.Instrument
	if err := dbc.DB(r.db).
		Where("id = ? AND user_id = ?", instrumentID, userID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *instrumentRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Instrument, error) {
	out := []*types.Instrument{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *instrumentRepo) Delete(dbc dbctx.Context, userID, instrumentID uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).
		Where("id = ? AND user_id = ?", instrumentID, userID).
		Delete(&types.Instrument{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
