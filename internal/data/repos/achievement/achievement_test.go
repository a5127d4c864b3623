package achievement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/riffbook-backend/internal/data/repos/testutil"
	types "github.com/yungbote/riffbook-backend/internal/domain"
	"github.com/yungbote/riffbook-backend/internal/platform/dbctx"
)

func TestAchievementRepo_UpsertKeepsIDs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewAchievementRepo(db, testutil.Logger(t))

	if err := repo.Upsert(dbc, []*types.Achievement{
		{Code: "repo_test_1h", Title: "First Hour", Description: "d", Category: "practice", Threshold: 1},
		{Code: "repo_test_3d", Title: "Streak", Description: "d", Category: "streak", Threshold: 3},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	before := byCode(t, repo, dbc)

	if err := repo.Upsert(dbc, []*types.Achievement{
		{Code: "repo_test_1h", Title: "First Hour!", Description: "d2", Category: "practice", Threshold: 1},
	}); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	after := byCode(t, repo, dbc)

	if after["repo_test_1h"].ID != before["repo_test_1h"].ID {
		t.Fatalf("upsert changed the id of an existing code")
	}
	if after["repo_test_1h"].Title != "First Hour!" {
		t.Fatalf("upsert did not refresh metadata: %+v", after["repo_test_1h"])
	}
	if len(after) != len(before) {
		t.Fatalf("upsert changed row count: %d -> %d", len(before), len(after))
	}
}

func byCode(t *testing.T, repo AchievementRepo, dbc dbctx.Context) map[string]*types.Achievement {
	t.Helper()
	rows, err := repo.ListAll(dbc)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	out := map[string]*types.Achievement{}
	for _, r := range rows {
		out[r.Code] = r
	}
	return out
}

func TestUserAchievementRepo_ConditionalWrites(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewUserAchievementRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "ua-repo@example.com")
	a := testutil.SeedAchievement(t, ctx, tx, "ua_repo_10h", "practice", 10)

	inserted, err := repo.InsertIfAbsent(dbc, &types.UserAchievement{UserID: u.ID, AchievementID: a.ID, Progress: 40})
	if err != nil || !inserted {
		t.Fatalf("InsertIfAbsent: inserted=%v err=%v", inserted, err)
	}
	inserted, err = repo.InsertIfAbsent(dbc, &types.UserAchievement{UserID: u.ID, AchievementID: a.ID, Progress: 100})
	if err != nil {
		t.Fatalf("duplicate InsertIfAbsent: %v", err)
	}
	if inserted {
		t.Fatalf("duplicate InsertIfAbsent should not apply")
	}

	row, err := repo.GetByUserAndAchievement(dbc, u.ID, a.ID)
	if err != nil || row == nil {
		t.Fatalf("GetByUserAndAchievement: row=%v err=%v", row, err)
	}
	if row.Progress != 40 || row.UnlockedAt != nil {
		t.Fatalf("first writer's row should stand: %+v", row)
	}

	ok, err := repo.UpdateLockedProgress(dbc, row.ID, 70)
	if err != nil || !ok {
		t.Fatalf("UpdateLockedProgress: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.PinUnlockedProgress(dbc, row.ID); err != nil || ok {
		t.Fatalf("PinUnlockedProgress on a locked row: ok=%v err=%v", ok, err)
	}

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b := testutil.SeedAchievement(t, ctx, tx, "ua_repo_bpm", "bpm", 100)
	inserted, err = repo.InsertIfAbsent(dbc, &types.UserAchievement{UserID: u.ID, AchievementID: b.ID, Progress: 80, UnlockedAt: &at})
	if err != nil || !inserted {
		t.Fatalf("InsertIfAbsent unlocked: inserted=%v err=%v", inserted, err)
	}
	unlocked, _ := repo.GetByUserAndAchievement(dbc, u.ID, b.ID)
	ok, err = repo.UpdateLockedProgress(dbc, unlocked.ID, 10)
	if err != nil || ok {
		t.Fatalf("UpdateLockedProgress on an unlocked row should not apply: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.PinUnlockedProgress(dbc, unlocked.ID); err != nil || !ok {
		t.Fatalf("PinUnlockedProgress: ok=%v err=%v", ok, err)
	}
	unlocked, _ = repo.GetByUserAndAchievement(dbc, u.ID, b.ID)
	if unlocked.UnlockedAt == nil || !unlocked.UnlockedAt.Equal(at) || unlocked.Progress != 100 {
		t.Fatalf("unexpected unlocked row: %+v", unlocked)
	}
	row, _ = repo.GetByUserAndAchievement(dbc, u.ID, a.ID)
	if row.Progress != 70 || row.UnlockedAt != nil {
		t.Fatalf("tracked row should keep its progress: %+v", row)
	}

	recent, err := repo.ListRecentlyUnlocked(dbc, u.ID, 5)
	if err != nil || len(recent) != 1 || recent[0].AchievementID != b.ID {
		t.Fatalf("ListRecentlyUnlocked: %v %v", recent, err)
	}
	all, err := repo.ListByUser(dbc, u.ID)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListByUser: %v %v", all, err)
	}

	missing, err := repo.GetByUserAndAchievement(dbc, u.ID, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("GetByUserAndAchievement missing: %v %v", missing, err)
	}
}
