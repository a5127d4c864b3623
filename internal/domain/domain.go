package domain

import (
	"github.com/yungbote/riffbook-backend/internal/domain/achievement"
	"github.com/yungbote/riffbook-backend/internal/domain/goal"
	"github.com/yungbote/riffbook-backend/internal/domain/practice"
	"github.com/yungbote/riffbook-backend/internal/domain/user"
)

type User = user.User

type Instrument = practice.Instrument
type PracticeSession = practice.PracticeSession
type ContentSource = practice.ContentSource

const (
	ContentSourceAIGenerated   = practice.ContentSourceAIGenerated
	ContentSourceAIRecommended = practice.ContentSourceAIRecommended
	ContentSourceUserSelected  = practice.ContentSourceUserSelected
	ContentSourceCustom        = practice.ContentSourceCustom
)

type Achievement = achievement.Achievement
type UserAchievement = achievement.UserAchievement

type PracticeGoal = goal.PracticeGoal
type GoalType = goal.Type
type GoalTargetType = goal.TargetType
type GoalProgress = goal.Progress

const (
	GoalDaily   = goal.TypeDaily
	GoalWeekly  = goal.TypeWeekly
	GoalMonthly = goal.TypeMonthly

	GoalTargetTime     = goal.TargetTime
	GoalTargetSessions = goal.TargetSessions
	GoalTargetBPM      = goal.TargetBPM
)
