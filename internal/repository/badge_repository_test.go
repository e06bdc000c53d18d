package repository

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/crithinklab/crithink/internal/models"
)

// setupBadgeTestDB creates an in-memory SQLite database for testing.
func setupBadgeTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	// Enable foreign key constraints (SQLite default is off)
	db.Exec("PRAGMA foreign_keys = ON")

	// In-memory SQLite gives every pooled connection its own database, so
	// pin the pool to a single connection.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	testDB := &DB{db}
	if err := testDB.AutoMigrate(); err != nil {
		t.Fatalf("Failed to auto-migrate tables: %v", err)
	}

	return testDB
}

// createTestUser creates a test user in the database.
func createTestUser(t *testing.T, db *DB, username, cohort string) *models.User {
	t.Helper()

	user := &models.User{
		Username:    username,
		DisplayName: username,
		Cohort:      cohort,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// createTestBadge creates a test badge in the database.
func createTestBadge(t *testing.T, repo *BadgeRepository, name, title string) *models.Badge {
	t.Helper()

	badge := &models.Badge{
		Name:        name,
		Title:       title,
		Description: "test badge",
	}
	if err := repo.Create(badge); err != nil {
		t.Fatalf("Failed to create test badge: %v", err)
	}
	return badge
}

func TestInsertAward_NewAward(t *testing.T) {
	db := setupBadgeTestDB(t)
	repo := NewBadgeRepository(db)

	user := createTestUser(t, db, "alice", "spring")
	badge := createTestBadge(t, repo, "reason_giver", "Reason Giver")

	inserted, err := repo.InsertAward(user.ID, badge.ID, "debate")
	if err != nil {
		t.Fatalf("InsertAward failed: %v", err)
	}
	if !inserted {
		t.Error("Expected first award to insert a row")
	}

	earned, err := repo.HasUserEarnedBadge(user.ID, badge.ID)
	if err != nil {
		t.Fatalf("HasUserEarnedBadge failed: %v", err)
	}
	if !earned {
		t.Error("Expected user to hold the badge")
	}
}

func TestInsertAward_DuplicateKeepsOneRow(t *testing.T) {
	db := setupBadgeTestDB(t)
	repo := NewBadgeRepository(db)

	user := createTestUser(t, db, "alice", "spring")
	badge := createTestBadge(t, repo, "evidence_expert", "Evidence Expert")

	inserted, err := repo.InsertAward(user.ID, badge.ID, "debate")
	if err != nil {
		t.Fatalf("First InsertAward failed: %v", err)
	}
	if !inserted {
		t.Error("Expected first award to insert a row")
	}

	inserted, err = repo.InsertAward(user.ID, badge.ID, "socratic")
	if err != nil {
		t.Fatalf("Duplicate InsertAward failed: %v", err)
	}
	if inserted {
		t.Error("Expected duplicate award to insert nothing")
	}

	var count int64
	db.Model(&models.BadgeAward{}).
		Where("user_id = ? AND badge_id = ?", user.ID, badge.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("Expected exactly 1 award row, got %d", count)
	}
}

func TestInsertAward_SameBadgeDifferentUsers(t *testing.T) {
	db := setupBadgeTestDB(t)
	repo := NewBadgeRepository(db)

	alice := createTestUser(t, db, "alice", "spring")
	bob := createTestUser(t, db, "bob", "spring")
	badge := createTestBadge(t, repo, "fallacy_hunter", "Fallacy Hunter")

	for _, userID := range []uint{alice.ID, bob.ID} {
		inserted, err := repo.InsertAward(userID, badge.ID, "debate")
		if err != nil {
			t.Fatalf("InsertAward failed: %v", err)
		}
		if !inserted {
			t.Errorf("Expected award to insert for user %d", userID)
		}
	}

	holders, err := repo.GetBadgeHoldersCount(badge.ID)
	if err != nil {
		t.Fatalf("GetBadgeHoldersCount failed: %v", err)
	}
	if holders != 2 {
		t.Errorf("Expected 2 holders, got %d", holders)
	}
}

func TestGetUserBadges_NewestFirst(t *testing.T) {
	db := setupBadgeTestDB(t)
	repo := NewBadgeRepository(db)

	user := createTestUser(t, db, "alice", "spring")
	first := createTestBadge(t, repo, "reason_giver", "Reason Giver")
	second := createTestBadge(t, repo, "logic_knight", "Logic Knight")

	// Insert with explicit timestamps to fix the ordering.
	db.Create(&models.BadgeAward{
		UserID: user.ID, BadgeID: first.ID, ContextTag: "debate",
		EarnedAt: time.Now().Add(-time.Hour),
	})
	db.Create(&models.BadgeAward{
		UserID: user.ID, BadgeID: second.ID, ContextTag: "challenge",
		EarnedAt: time.Now(),
	})

	awards, err := repo.GetUserBadges(user.ID)
	if err != nil {
		t.Fatalf("GetUserBadges failed: %v", err)
	}
	if len(awards) != 2 {
		t.Fatalf("Expected 2 awards, got %d", len(awards))
	}
	if awards[0].BadgeID != second.ID {
		t.Error("Expected most recent award first")
	}
	if awards[0].Badge.Name != "logic_knight" {
		t.Errorf("Expected badge preloaded, got %q", awards[0].Badge.Name)
	}
}

func TestGetByName_Missing(t *testing.T) {
	db := setupBadgeTestDB(t)
	repo := NewBadgeRepository(db)

	_, err := repo.GetByName("no_such_badge")
	if err != gorm.ErrRecordNotFound {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestSeed_Idempotent(t *testing.T) {
	db := setupBadgeTestDB(t)
	repo := NewBadgeRepository(db)

	catalog := []models.Badge{
		{Name: "reason_giver", Title: "Reason Giver"},
		{Name: "socratic_probe", Title: "Socratic Probe"},
	}
	if err := repo.Seed(catalog); err != nil {
		t.Fatalf("First seed failed: %v", err)
	}
	if err := repo.Seed([]models.Badge{{Name: "reason_giver", Title: "Reason Giver"}}); err != nil {
		t.Fatalf("Second seed failed: %v", err)
	}

	badges, err := repo.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(badges) != 2 {
		t.Errorf("Expected 2 badges after reseeding, got %d", len(badges))
	}
}

func TestGetRecentlyAwarded(t *testing.T) {
	db := setupBadgeTestDB(t)
	repo := NewBadgeRepository(db)

	user := createTestUser(t, db, "alice", "spring")
	badge := createTestBadge(t, repo, "evidence_expert", "Evidence Expert")

	db.Create(&models.BadgeAward{
		UserID: user.ID, BadgeID: badge.ID, ContextTag: "debate",
		EarnedAt: time.Now().Add(-48 * time.Hour),
	})

	recent, err := repo.GetRecentlyAwarded(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("GetRecentlyAwarded failed: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("Expected no awards in window, got %d", len(recent))
	}

	recent, err = repo.GetRecentlyAwarded(time.Now().Add(-72 * time.Hour))
	if err != nil {
		t.Fatalf("GetRecentlyAwarded failed: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("Expected 1 award in window, got %d", len(recent))
	}
}
