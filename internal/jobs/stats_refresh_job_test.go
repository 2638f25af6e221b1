package jobs

import (
	"context"
	"testing"
	"time"

	"creator-market/internal/models"
	"creator-market/internal/services"
	"creator-market/internal/tiktok"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// blockingClient parks GetVideoStats until released, so a cycle can be held
// in progress from the test
type blockingClient struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingClient) RefreshAccessToken(_ context.Context, _ string) (*tiktok.TokenData, error) {
	return &tiktok.TokenData{AccessToken: "a", RefreshToken: "r", ExpiresIn: 86400}, nil
}

func (b *blockingClient) GetVideoStats(_ context.Context, _ string, videoIDs []string) ([]tiktok.VideoStatsData, error) {
	b.entered <- struct{}{}
	<-b.release
	out := make([]tiktok.VideoStatsData, 0, len(videoIDs))
	for _, id := range videoIDs {
		out = append(out, tiktok.VideoStatsData{ID: id, Views: 100})
	}
	return out, nil
}

type noopNotifier struct{}

func (noopNotifier) Notify(string, uint, map[string]interface{}) {}

func setupJobService(t *testing.T, client services.VideoPlatformClient) *services.StatsRefreshService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.TikTokAccount{}, &models.Campaign{}, &models.RewardTier{},
		&models.Submission{}, &models.VideoStats{}, &models.VideoStatsHistory{},
	); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	for _, table := range []string{"video_stats_history", "video_stats", "submissions", "reward_tiers", "campaigns", "tiktok_accounts", "users"} {
		db.Exec("DELETE FROM " + table)
	}

	account := models.TikTokAccount{
		UserID:         1,
		Username:       "job-tt",
		OpenID:         "job-open",
		AccessToken:    "access",
		TokenExpiresAt: time.Now().Add(time.Hour),
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	sub := models.Submission{
		CampaignID:      1,
		TikTokAccountID: account.ID,
		VideoID:         "vid-job",
		Status:          models.SubmissionStatusAccepted,
	}
	if err := db.Create(&sub).Error; err != nil {
		t.Fatalf("failed to create submission: %v", err)
	}

	return services.NewStatsRefreshService(db, client, noopNotifier{})
}

func TestTriggerNowRejectedWhileCycleRuns(t *testing.T) {
	client := &blockingClient{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	service := setupJobService(t, client)

	job := NewStatsRefreshJob(service, time.Hour)
	defer job.Stop()
	job.Start(context.Background())

	// The startup cycle is now parked inside the stats call
	select {
	case <-client.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("startup cycle never reached the stats call")
	}

	if job.TriggerNow() {
		t.Error("expected TriggerNow rejected while a cycle is running")
	}

	close(client.release)

	// Once the cycle finishes its report is published and triggers are
	// accepted again
	deadline := time.After(5 * time.Second)
	for job.LastReport() == nil {
		select {
		case <-deadline:
			t.Fatal("cycle never published a report")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if !job.TriggerNow() {
		t.Error("expected TriggerNow accepted after the cycle finished")
	}
	// The queued trigger runs another cycle
	select {
	case <-client.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("queued trigger never started a cycle")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	client := &blockingClient{
		entered: make(chan struct{}, 4),
		release: make(chan struct{}),
	}
	close(client.release)
	service := setupJobService(t, client)

	job := NewStatsRefreshJob(service, time.Hour)
	job.Start(context.Background())

	// Shutdown paths can reach Stop twice; the second call must be a no-op
	job.Stop()
	job.Stop()
}

func TestLastReportCountsUpdatedVideos(t *testing.T) {
	client := &blockingClient{
		entered: make(chan struct{}, 4),
		release: make(chan struct{}),
	}
	close(client.release)
	service := setupJobService(t, client)

	job := NewStatsRefreshJob(service, time.Hour)
	defer job.Stop()
	job.Start(context.Background())

	deadline := time.After(5 * time.Second)
	for job.LastReport() == nil {
		select {
		case <-deadline:
			t.Fatal("cycle never published a report")
		case <-time.After(10 * time.Millisecond):
		}
	}

	report := job.LastReport()
	if report.Accounts != 1 || report.UpdatedVideos != 1 {
		t.Errorf("expected 1 account / 1 updated video, got %d / %d", report.Accounts, report.UpdatedVideos)
	}
	if report.FinishedAt.Before(report.StartedAt) {
		t.Errorf("report finished before it started: %+v", report)
	}
}
