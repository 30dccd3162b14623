package service

import (
	"testing"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

func newDashboardService(t *testing.T) (*DashboardService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	svc := NewDashboardService(
		repository.NewUserRepository(db),
		repository.NewQuizAttemptRepository(db),
		rdb,
	)
	return svc, db
}

func seedUser(t *testing.T, db *gorm.DB, name string) *model.User {
	t.Helper()
	user := &model.User{Name: name, Email: name + "@example.com", Password: "hash", Role: model.RoleUser}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return user
}

func TestLeaderboardOrdersByScore(t *testing.T) {
	svc, db := newDashboardService(t)

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	if err := svc.RecordScore(1, alice.ID, 80); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := svc.RecordScore(1, bob.ID, 95); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := svc.RecordScore(1, carol.ID, 60); err != nil {
		t.Fatalf("record: %v", err)
	}
	// a score on another package must not leak in
	if err := svc.RecordScore(2, alice.ID, 110); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := svc.GetLeaderboard(1, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	wantNames := []string{"bob", "alice", "carol"}
	wantScores := []int{95, 80, 60}
	for i, e := range entries {
		if e.UserName != wantNames[i] || e.Score != wantScores[i] {
			t.Fatalf("position %d expected %s/%d, got %s/%d", i, wantNames[i], wantScores[i], e.UserName, e.Score)
		}
	}
}

func TestRecordScoreKeepsLatest(t *testing.T) {
	svc, db := newDashboardService(t)
	alice := seedUser(t, db, "alice")

	if err := svc.RecordScore(1, alice.ID, 90); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := svc.RecordScore(1, alice.ID, 70); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := svc.GetLeaderboard(1, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected a single entry per user, got %d", len(entries))
	}
	if entries[0].Score != 70 {
		t.Fatalf("expected the latest score, got %d", entries[0].Score)
	}
}

func TestLeaderboardLimit(t *testing.T) {
	svc, db := newDashboardService(t)

	for _, name := range []string{"u1", "u2", "u3", "u4"} {
		user := seedUser(t, db, name)
		if err := svc.RecordScore(1, user.ID, int(user.ID)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	entries, err := svc.GetLeaderboard(1, 2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected limit to cap entries, got %d", len(entries))
	}
}

func TestGetUserStats(t *testing.T) {
	svc, db := newDashboardService(t)

	attempts := []model.QuizAttempt{
		{UserID: 1, PackageID: 1, Status: model.AttemptCompleted},
		{UserID: 1, PackageID: 2, Status: model.AttemptCompleted},
		{UserID: 1, PackageID: 3, Status: model.AttemptTimedOut},
		{UserID: 1, PackageID: 4, Status: model.AttemptInProgress},
		{UserID: 2, PackageID: 1, Status: model.AttemptCompleted},
	}
	for i := range attempts {
		if err := db.Create(&attempts[i]).Error; err != nil {
			t.Fatalf("create attempt: %v", err)
		}
	}

	stats, err := svc.GetUserStats(1)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.InProgress != 1 || stats.Completed != 2 || stats.TimedOut != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
