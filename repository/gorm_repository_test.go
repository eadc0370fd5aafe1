package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/prepwise/interview-coach/models"
	"github.com/prepwise/interview-coach/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestRepo connects to the database named by DATABASE_URL and skips the
// test when none is configured.
func openTestRepo(t *testing.T) *repository.GORMRepository {
	t.Helper()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	repo := repository.NewGORMRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return repo
}

// createTestUser inserts a unique user and registers cleanup for it.
func createTestUser(t *testing.T, repo *repository.GORMRepository) *models.User {
	t.Helper()

	user := &models.User{
		Username:     fmt.Sprintf("testuser_%s", uuid.New().String()[:8]),
		Email:        fmt.Sprintf("%s@example.com", uuid.New().String()[:8]),
		PasswordHash: "not-a-real-hash",
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func sampleSession(userID string) *models.InterviewSession {
	id := uuid.New().String()
	return &models.InterviewSession{
		ID:              id,
		UserID:          userID,
		Date:            "2026-08-31",
		Domain:          "Tech & Engineering",
		Specialization:  "Backend Developer",
		OverallFeedback: "Solid round.",
		Scores: []models.Score{
			{SessionID: id, Metric: "Communication", Score: 7.5, Feedback: "Clear."},
			{SessionID: id, Metric: "Confidence", Score: 6, Feedback: "Steady."},
		},
		Answers: []models.Answer{
			{SessionID: id, Question: "Q1?", Answer: "A1"},
			{SessionID: id, Question: "Q2?", Answer: ""},
		},
	}
}

func TestUserRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	user := createTestUser(t, repo)
	if user.ID == "" {
		t.Fatal("created user has no generated id")
	}

	byName, err := repo.GetUserByUsername(ctx, user.Username)
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if byName == nil || byName.ID != user.ID {
		t.Errorf("GetUserByUsername = %+v", byName)
	}

	byID, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID == nil || byID.Username != user.Username {
		t.Errorf("GetUserByID = %+v", byID)
	}

	missing, err := repo.GetUserByUsername(ctx, "no-such-user")
	if err != nil {
		t.Fatalf("GetUserByUsername for missing user failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for a missing user, got %+v", missing)
	}
}

func TestDuplicateUserTranslatesError(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	user := createTestUser(t, repo)

	dup := &models.User{
		Username:     user.Username,
		Email:        "different@example.com",
		PasswordHash: "x",
	}
	err := repo.CreateUser(ctx, dup)
	if err != gorm.ErrDuplicatedKey {
		t.Errorf("duplicate create error = %v, want gorm.ErrDuplicatedKey", err)
	}
}

func TestInterviewSessionRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	user := createTestUser(t, repo)
	session := sampleSession(user.ID)

	if err := repo.CreateInterviewSession(ctx, session); err != nil {
		t.Fatalf("CreateInterviewSession failed: %v", err)
	}

	got, err := repo.GetInterviewSession(ctx, session.ID, user.ID)
	if err != nil {
		t.Fatalf("GetInterviewSession failed: %v", err)
	}
	if got == nil {
		t.Fatal("session not found after create")
	}
	if len(got.Scores) != 2 || len(got.Answers) != 2 {
		t.Errorf("preload mismatch: %d scores, %d answers", len(got.Scores), len(got.Answers))
	}
	if got.OverallFeedback != "Solid round." {
		t.Errorf("feedback = %q", got.OverallFeedback)
	}
}

func TestInterviewSessionOwnerScoping(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	owner := createTestUser(t, repo)
	stranger := createTestUser(t, repo)

	session := sampleSession(owner.ID)
	if err := repo.CreateInterviewSession(ctx, session); err != nil {
		t.Fatalf("CreateInterviewSession failed: %v", err)
	}

	// Someone else's session id reads as missing.
	got, err := repo.GetInterviewSession(ctx, session.ID, stranger.ID)
	if err != nil {
		t.Fatalf("GetInterviewSession failed: %v", err)
	}
	if got != nil {
		t.Errorf("stranger could read the session: %+v", got)
	}
}

func TestInterviewSessionsOrderedOldestFirst(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	user := createTestUser(t, repo)

	first := sampleSession(user.ID)
	second := sampleSession(user.ID)
	if err := repo.CreateInterviewSession(ctx, first); err != nil {
		t.Fatalf("create first failed: %v", err)
	}
	if err := repo.CreateInterviewSession(ctx, second); err != nil {
		t.Fatalf("create second failed: %v", err)
	}

	sessions, err := repo.GetInterviewSessions(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetInterviewSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != first.ID {
		t.Errorf("sessions out of order: first listed is %s", sessions[0].ID)
	}
}
