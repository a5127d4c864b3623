package services

import (
	"context"
	"testing"

	"github.com/yungbote/riffbook-backend/internal/data/repos/testutil"
	"github.com/yungbote/riffbook-backend/internal/platform/ctxutil"
	"github.com/yungbote/riffbook-backend/internal/platform/dbctx"
)

func TestAuth_RegisterLoginAndToken(t *testing.T) {
	env := newTestEnv(t)
	dbc := dbctx.Context{Ctx: context.Background()}

	u, token, err := env.auth.Register(dbc, RegisterInput{
		Email:    "  Player@Riffbook.Test ",
		Password: "correct-horse",
		Timezone: "Asia/Seoul",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "player@riffbook.test" || u.DisplayName != "player" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.Password == "correct-horse" {
		t.Fatalf("password stored in plain text")
	}

	ctx, err := env.auth.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if got := ctxutil.UserID(ctx); got != u.ID {
		t.Fatalf("token user = %s, want %s", got, u.ID)
	}

	if _, _, err := env.auth.Login(dbc, "player@riffbook.test", "correct-horse"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, _, err := env.auth.Login(dbc, "player@riffbook.test", "wrong-password"); apiCode(err) != "unauthorized" {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, _, err := env.auth.Register(dbc, RegisterInput{Email: "player@riffbook.test", Password: "another-pass"}); apiCode(err) != "email_taken" {
		t.Fatalf("expected email_taken, got %v", err)
	}
}

func TestAuth_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	cases := []struct {
		name string
		in   RegisterInput
		code string
	}{
		{"bad email", RegisterInput{Email: "nope", Password: "long-enough"}, "invalid_email"},
		{"short password", RegisterInput{Email: "a@b.test", Password: "short"}, "invalid_password"},
		{"bad timezone", RegisterInput{Email: "a@b.test", Password: "long-enough", Timezone: "Mars/Olympus"}, "invalid_timezone"},
	}
	for _, tc := range cases {
		if _, _, err := env.auth.Register(dbc, tc.in); apiCode(err) != tc.code {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.code, err)
		}
	}
}

func TestAuth_RejectsForeignToken(t *testing.T) {
	env := newTestEnv(t)
	other := NewAuthService(env.db, testutil.Logger(t), env.userRepo, "other-secret", 0)
	_, token, err := other.Register(dbctx.Context{Ctx: context.Background()}, RegisterInput{Email: "x@riffbook.test", Password: "long-enough"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := env.auth.SetContextFromToken(context.Background(), token); err == nil {
		t.Fatalf("expected token signed with another key to be rejected")
	}
}
