package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/riffbook-backend/internal/app"
	types "github.com/yungbote/riffbook-backend/internal/domain"
	"github.com/yungbote/riffbook-backend/internal/modules/progress"
	"github.com/yungbote/riffbook-backend/internal/platform/dbctx"
	"github.com/yungbote/riffbook-backend/internal/services"
)

type idList []string

func (l *idList) String() string { return strings.Join(*l, ",") }
func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func main() {
	var users idList
	var all, dryRun bool
	var limit int
	flag.Var(&users, "user", "user id to re-check (repeatable)")
	flag.BoolVar(&all, "all", false, "re-check every user")
	flag.BoolVar(&dryRun, "dry-run", false, "print planned changes without writing them")
	flag.IntVar(&limit, "limit", 0, "limit number of users processed")
	flag.Parse()

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	if !dryRun {
		n, err := application.Services.Achievement.SeedCatalog(ctx)
		if err != nil {
			fmt.Printf("seed catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("seeded %d achievements\n", n)
	}

	var ids []uuid.UUID
	switch {
	case all:
		ids, err = application.Repos.User.ListIDs(dbc)
		if err != nil {
			fmt.Printf("load users: %v\n", err)
			os.Exit(1)
		}
	default:
		for _, s := range users {
			id, err := uuid.Parse(s)
			if err != nil || id == uuid.Nil {
				fmt.Printf("skipping invalid user id %q\n", s)
				continue
			}
			ids = append(ids, id)
		}
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	if len(ids) == 0 {
		if dryRun {
			fmt.Println("no users selected; nothing to plan")
		}
		return
	}

	catalog, err := progress.DefaultCatalog()
	if err != nil {
		fmt.Printf("load catalog: %v\n", err)
		os.Exit(1)
	}

	checked, unlocked := 0, 0
	for _, id := range ids {
		if dryRun {
			if err := plan(application, catalog, dbc, id); err != nil {
				fmt.Printf("plan failed for user %s: %v\n", id, err)
			}
			continue
		}
		res, err := application.Services.Achievement.CheckAchievements(ctx, id)
		if err != nil {
			fmt.Printf("check failed for user %s: %v\n", id, err)
			continue
		}
		checked++
		unlocked += len(res.Unlocked)
		fmt.Printf("user=%s unlocked=%d updated=%d\n", id, len(res.Unlocked), len(res.Updated))
	}
	if !dryRun {
		fmt.Printf("done; checked=%d unlocked=%d\n", checked, unlocked)
	}
}

// plan prints the writes a check would make for userID.
func plan(a *app.App, catalog progress.Catalog, dbc dbctx.Context, userID uuid.UUID) error {
	u, err := a.Repos.User.GetByID(dbc, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("user not found")
	}
	sessions, err := a.Repos.PracticeSession.ListAllByUser(dbc, userID)
	if err != nil {
		return err
	}
	stored, err := a.Repos.Achievement.ListAll(dbc)
	if err != nil {
		return err
	}
	existing, err := a.Repos.UserAchievement.ListByUser(dbc, userID)
	if err != nil {
		return err
	}

	now := time.Now().In(services.LoadLocation(u.Timezone, a.Cfg.Location))
	stats := progress.ComputeStats(progress.RecordsFromSessions(sessions), now)
	evals, err := progress.Evaluate(catalog, stats)
	if err != nil {
		return err
	}

	idByCode := make(map[string]uuid.UUID, len(stored))
	for _, s := range stored {
		idByCode[s.Code] = s.ID
	}
	rows := make(map[uuid.UUID]*types.UserAchievement, len(existing))
	for _, r := range existing {
		rows[r.AchievementID] = r
	}
	for _, ev := range evals {
		achievementID, ok := idByCode[ev.Code]
		if !ok {
			fmt.Printf("[dry-run] user=%s %s not seeded\n", userID, ev.Code)
			continue
		}
		action := progress.Plan(achievementID, ev, rows[achievementID])
		if action.Kind == progress.ActionNone {
			continue
		}
		fmt.Printf("[dry-run] user=%s %s %s progress=%d\n", userID, ev.Code, action.Kind, action.Progress)
	}
	return nil
}
