package progress

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/riffbook-backend/internal/domain"
	"github.com/yungbote/riffbook-backend/internal/platform/dbctx"
)

// State is where a user's row for one achievement stands.
type State int

const (
	StateAbsent State = iota
	StateTracked
	StateUnlocked
)

func (s State) String() string {
	switch s {
	case StateTracked:
		return "tracked"
	case StateUnlocked:
		return "unlocked"
	default:
		return "absent"
	}
}

func StateOf(row *types.UserAchievement) State {
	switch {
	case row == nil:
		return StateAbsent
	case row.UnlockedAt != nil:
		return StateUnlocked
	default:
		return StateTracked
	}
}

type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionInsertUnlocked
	ActionInsertProgress
	ActionUpdateProgress
	ActionPinProgress
)

func (k ActionKind) String() string {
	switch k {
	case ActionInsertUnlocked:
		return "insert_unlocked"
	case ActionInsertProgress:
		return "insert_progress"
	case ActionUpdateProgress:
		return "update_progress"
	case ActionPinProgress:
		return "pin_progress"
	default:
		return "none"
	}
}

// Action is the single write a transition requires.
type Action struct {
	Kind          ActionKind
	AchievementID uuid.UUID
	RowID         uuid.UUID
	Progress      int
}

func (a Action) unlocks() bool {
	return a.Kind == ActionInsertUnlocked
}

// Plan decides the transition for one achievement given the fresh
// evaluation and the stored row (nil when absent). Only an absent row can
// unlock; a tracked row that reaches the threshold just moves its progress.
// Unlocked is terminal: the only write it ever gets is pinning progress
// back to 100.
func Plan(achievementID uuid.UUID, ev Evaluation, row *types.UserAchievement) Action {
	a := Action{AchievementID: achievementID}
	if row != nil {
		a.RowID = row.ID
	}
	switch StateOf(row) {
	case StateAbsent:
		switch {
		case ev.Reached:
			a.Kind, a.Progress = ActionInsertUnlocked, 100
		case ev.Progress > 0:
			a.Kind, a.Progress = ActionInsertProgress, ev.Progress
		}
	case StateTracked:
		if ev.Progress != row.Progress {
			a.Kind, a.Progress = ActionUpdateProgress, ev.Progress
		}
	case StateUnlocked:
		if row.Progress != 100 {
			a.Kind, a.Progress = ActionPinProgress, 100
		}
	}
	return a
}

// StateStore is the persistence surface the reconciler writes through.
// Every write reports whether it took effect so a lost race can be
// detected: inserts are conflict-free upserts on (user, achievement) and
// updates of locked rows only apply while unlocked_at is still null.
type StateStore interface {
	InsertIfAbsent(dbc dbctx.Context, row *types.UserAchievement) (bool, error)
	UpdateLockedProgress(dbc dbctx.Context, rowID uuid.UUID, progress int) (bool, error)
	PinUnlockedProgress(dbc dbctx.Context, rowID uuid.UUID) (bool, error)
	GetByUserAndAchievement(dbc dbctx.Context, userID, achievementID uuid.UUID) (*types.UserAchievement, error)
}

// Target pairs a stored catalog definition with its evaluation.
type Target struct {
	AchievementID uuid.UUID
	Evaluation    Evaluation
}

type ProgressUpdate struct {
	AchievementID uuid.UUID `json:"achievement_id"`
	Progress      int       `json:"progress"`
}

type Result struct {
	Unlocked []uuid.UUID      `json:"unlocked"`
	Updated  []ProgressUpdate `json:"updated"`
}

func (r Result) Empty() bool { return len(r.Unlocked) == 0 && len(r.Updated) == 0 }

type Reconciler struct {
	store StateStore
	now   func() time.Time
}

func NewReconciler(store StateStore, now func() time.Time) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{store: store, now: now}
}

// Reconcile writes the minimal delta between targets and existing rows.
// It stops at the first write error; earlier writes stand and a later run
// picks up whatever is still outstanding.
func (r *Reconciler) Reconcile(dbc dbctx.Context, userID uuid.UUID, targets []Target, existing []*types.UserAchievement) (Result, error) {
	res := Result{Unlocked: []uuid.UUID{}, Updated: []ProgressUpdate{}}
	rows := make(map[uuid.UUID]*types.UserAchievement, len(existing))
	for _, row := range existing {
		if row != nil {
			rows[row.AchievementID] = row
		}
	}

	for _, t := range targets {
		action := Plan(t.AchievementID, t.Evaluation, rows[t.AchievementID])
		if action.Kind == ActionNone {
			continue
		}
		applied, err := r.apply(dbc, userID, action)
		if err != nil {
			return res, fmt.Errorf("reconcile %s (%s): %w", t.Evaluation.Code, action.Kind, err)
		}
		if !applied {
			// Another writer got there first; re-plan once against its row.
			fresh, err := r.store.GetByUserAndAchievement(dbc, userID, t.AchievementID)
			if err != nil {
				return res, fmt.Errorf("reload %s: %w", t.Evaluation.Code, err)
			}
			action = Plan(t.AchievementID, t.Evaluation, fresh)
			if action.Kind == ActionNone {
				continue
			}
			if applied, err = r.apply(dbc, userID, action); err != nil {
				return res, fmt.Errorf("reconcile %s (%s): %w", t.Evaluation.Code, action.Kind, err)
			}
			if !applied {
				continue
			}
		}
		if action.unlocks() {
			res.Unlocked = append(res.Unlocked, t.AchievementID)
		} else {
			res.Updated = append(res.Updated, ProgressUpdate{AchievementID: t.AchievementID, Progress: action.Progress})
		}
	}
	return res, nil
}

func (r *Reconciler) apply(dbc dbctx.Context, userID uuid.UUID, a Action) (bool, error) {
	switch a.Kind {
	case ActionInsertUnlocked:
		at := r.now()
		return r.store.InsertIfAbsent(dbc, &types.UserAchievement{
			UserID:        userID,
			AchievementID: a.AchievementID,
			Progress:      100,
			UnlockedAt:    &at,
		})
	case ActionInsertProgress:
		return r.store.InsertIfAbsent(dbc, &types.UserAchievement{
			UserID:        userID,
			AchievementID: a.AchievementID,
			Progress:      a.Progress,
		})
	case ActionUpdateProgress:
		return r.store.UpdateLockedProgress(dbc, a.RowID, a.Progress)
	case ActionPinProgress:
		return r.store.PinUnlockedProgress(dbc, a.RowID)
	default:
		return false, nil
	}
}
