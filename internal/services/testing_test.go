package services

import (
	"sync"
	"testing"

	"creator-market/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens the shared in-memory database and resets every table.
// :memory: is unique per connection unless cache=shared is used, and gorm
// pools connections, so the shared cache is required.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.TikTokAccount{},
		&models.Campaign{},
		&models.RewardTier{},
		&models.Submission{},
		&models.VideoStats{},
		&models.VideoStatsHistory{},
		&models.Invoice{},
		&models.ReferralCommission{},
		&models.ReferralInvoice{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	tables := []string{
		"notifications", "referral_invoices", "referral_commissions", "invoices",
		"video_stats_history", "video_stats", "submissions", "reward_tiers",
		"campaigns", "tiktok_accounts", "users",
	}
	for _, table := range tables {
		db.Exec("DELETE FROM " + table)
	}

	return db
}

// recordedEvent is one call captured by fakeNotifier
type recordedEvent struct {
	EventType string
	UserID    uint
	Payload   map[string]interface{}
}

// fakeNotifier records notifications synchronously for assertions
type fakeNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeNotifier) Notify(eventType string, userID uint, payload map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{EventType: eventType, UserID: userID, Payload: payload})
}

func (f *fakeNotifier) eventsOfType(eventType string) []recordedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedEvent
	for _, ev := range f.events {
		if ev.EventType == eventType {
			out = append(out, ev)
		}
	}
	return out
}
