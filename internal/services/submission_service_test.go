package services

import (
	"errors"
	"testing"

	"creator-market/internal/models"
)

func TestCreateSubmissionCreatesZeroedSnapshot(t *testing.T) {
	db := setupTestDB(t)
	service := NewSubmissionService(db, &fakeNotifier{})

	user, account := seedCreatorWithAccount(t, db, "create@test.io")
	campaign, _ := seedCampaignWithTier(t, db, 1000, 5000)

	sub, err := service.CreateSubmission(campaign.ID, user.ID, account.ID, "vid-new")
	if err != nil {
		t.Fatalf("CreateSubmission failed: %v", err)
	}
	if sub.Status != models.SubmissionStatusPending {
		t.Errorf("expected pending status, got %s", sub.Status)
	}

	snapshot := loadSnapshot(t, db, sub.ID)
	if snapshot.Views != 0 || snapshot.Likes != 0 {
		t.Errorf("expected zeroed snapshot, got views=%d likes=%d", snapshot.Views, snapshot.Likes)
	}
}

func TestCreateSubmissionRejectsDuplicateVideo(t *testing.T) {
	db := setupTestDB(t)
	service := NewSubmissionService(db, &fakeNotifier{})

	user, account := seedCreatorWithAccount(t, db, "dup@test.io")
	campaign, _ := seedCampaignWithTier(t, db, 1000, 5000)
	other, _ := seedCampaignWithTier(t, db, 2000, 8000)

	if _, err := service.CreateSubmission(campaign.ID, user.ID, account.ID, "vid-dup"); err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	// Duplicate in the same campaign
	if _, err := service.CreateSubmission(campaign.ID, user.ID, account.ID, "vid-dup"); !errors.Is(err, ErrDuplicateVideo) {
		t.Fatalf("expected ErrDuplicateVideo, got %v", err)
	}
	// Uniqueness is global, not per campaign
	if _, err := service.CreateSubmission(other.ID, user.ID, account.ID, "vid-dup"); !errors.Is(err, ErrDuplicateVideo) {
		t.Fatalf("expected ErrDuplicateVideo across campaigns, got %v", err)
	}
}

func TestCreateSubmissionRequiresPublishedCampaign(t *testing.T) {
	db := setupTestDB(t)
	service := NewSubmissionService(db, &fakeNotifier{})

	user, account := seedCreatorWithAccount(t, db, "draft@test.io")
	campaign, _ := seedCampaignWithTier(t, db, 1000, 5000)
	if err := db.Model(campaign).Update("status", models.CampaignStatusDraft).Error; err != nil {
		t.Fatalf("failed to move campaign to draft: %v", err)
	}

	if _, err := service.CreateSubmission(campaign.ID, user.ID, account.ID, "vid-draft"); err == nil {
		t.Error("expected error submitting to draft campaign")
	}
}

func TestCreateSubmissionRejectsForeignAccount(t *testing.T) {
	db := setupTestDB(t)
	service := NewSubmissionService(db, &fakeNotifier{})

	_, account := seedCreatorWithAccount(t, db, "owner@test.io")
	intruder, _ := seedCreatorWithAccount(t, db, "intruder@test.io")
	campaign, _ := seedCampaignWithTier(t, db, 1000, 5000)

	if _, err := service.CreateSubmission(campaign.ID, intruder.ID, account.ID, "vid-foreign"); err == nil {
		t.Error("expected error submitting through another user's account")
	}
}

func TestValidateAndRefuseAreTerminal(t *testing.T) {
	db := setupTestDB(t)
	notifier := &fakeNotifier{}
	service := NewSubmissionService(db, notifier)

	user, account := seedCreatorWithAccount(t, db, "terminal@test.io")
	campaign, _ := seedCampaignWithTier(t, db, 1000, 5000)

	accepted, err := service.CreateSubmission(campaign.ID, user.ID, account.ID, "vid-acc")
	if err != nil {
		t.Fatalf("CreateSubmission failed: %v", err)
	}
	refused, err := service.CreateSubmission(campaign.ID, user.ID, account.ID, "vid-ref")
	if err != nil {
		t.Fatalf("CreateSubmission failed: %v", err)
	}

	if err := service.ValidateSubmission(accepted.ID); err != nil {
		t.Fatalf("ValidateSubmission failed: %v", err)
	}
	if err := service.RefuseSubmission(refused.ID, "off brand"); err != nil {
		t.Fatalf("RefuseSubmission failed: %v", err)
	}

	// Both states are terminal
	if err := service.RefuseSubmission(accepted.ID, "changed my mind"); err == nil {
		t.Error("expected error refusing an accepted submission")
	}
	if err := service.ValidateSubmission(refused.ID); err == nil {
		t.Error("expected error validating a refused submission")
	}

	var reloaded models.Submission
	if err := db.First(&reloaded, accepted.ID).Error; err != nil {
		t.Fatalf("failed to reload submission: %v", err)
	}
	if reloaded.Status != models.SubmissionStatusAccepted || reloaded.ValidatedAt == nil {
		t.Errorf("expected accepted with timestamp, got %s %v", reloaded.Status, reloaded.ValidatedAt)
	}

	if got := notifier.eventsOfType(models.NotificationSubmissionAccepted); len(got) != 1 {
		t.Errorf("expected 1 accepted notification, got %d", len(got))
	}
	if got := notifier.eventsOfType(models.NotificationSubmissionRefused); len(got) != 1 {
		t.Errorf("expected 1 refused notification, got %d", len(got))
	}
}

func TestDeleteSubmissionRules(t *testing.T) {
	db := setupTestDB(t)
	service := NewSubmissionService(db, &fakeNotifier{})

	user, account := seedCreatorWithAccount(t, db, "delete@test.io")
	campaign, _ := seedCampaignWithTier(t, db, 1000, 5000)

	pending, err := service.CreateSubmission(campaign.ID, user.ID, account.ID, "vid-del-pending")
	if err != nil {
		t.Fatalf("CreateSubmission failed: %v", err)
	}
	locked, err := service.CreateSubmission(campaign.ID, user.ID, account.ID, "vid-del-locked")
	if err != nil {
		t.Fatalf("CreateSubmission failed: %v", err)
	}
	if err := service.ValidateSubmission(locked.ID); err != nil {
		t.Fatalf("ValidateSubmission failed: %v", err)
	}

	// Creator can delete while pending, not after acceptance
	if err := service.DeleteSubmission(pending.ID, user.ID, models.RoleCreator); err != nil {
		t.Fatalf("creator delete of pending failed: %v", err)
	}
	if err := service.DeleteSubmission(locked.ID, user.ID, models.RoleCreator); err == nil {
		t.Error("expected error deleting accepted submission as creator")
	}

	// Another brand cannot delete it
	otherBrand := models.User{Email: "other-brand@test.io", Name: "OB", Role: models.RoleBrand, ReferralCode: "OB"}
	if err := db.Create(&otherBrand).Error; err != nil {
		t.Fatalf("failed to create brand: %v", err)
	}
	if err := service.DeleteSubmission(locked.ID, otherBrand.ID, models.RoleBrand); err == nil {
		t.Error("expected error deleting another brand's campaign submission")
	}

	// The owning brand can, stats rows go with it
	if err := service.DeleteSubmission(locked.ID, campaign.BrandID, models.RoleBrand); err != nil {
		t.Fatalf("brand delete failed: %v", err)
	}
	var stats int64
	db.Model(&models.VideoStats{}).Where("submission_id = ?", locked.ID).Count(&stats)
	if stats != 0 {
		t.Errorf("expected stats snapshot deleted, got %d rows", stats)
	}
}

func TestSetAdsCodeOnlyOnOwnAcceptedSubmission(t *testing.T) {
	db := setupTestDB(t)
	service := NewSubmissionService(db, &fakeNotifier{})

	user, account := seedCreatorWithAccount(t, db, "ads@test.io")
	stranger, _ := seedCreatorWithAccount(t, db, "stranger@test.io")
	campaign, _ := seedCampaignWithTier(t, db, 1000, 5000)

	sub, err := service.CreateSubmission(campaign.ID, user.ID, account.ID, "vid-ads")
	if err != nil {
		t.Fatalf("CreateSubmission failed: %v", err)
	}

	// Pending submissions cannot take an ads code
	if err := service.SetAdsCode(sub.ID, user.ID, "ads-1"); err == nil {
		t.Error("expected error setting ads code on pending submission")
	}

	if err := service.ValidateSubmission(sub.ID); err != nil {
		t.Fatalf("ValidateSubmission failed: %v", err)
	}

	if err := service.SetAdsCode(sub.ID, stranger.ID, "ads-1"); err == nil {
		t.Error("expected error setting ads code on another user's submission")
	}

	if err := service.SetAdsCode(sub.ID, user.ID, "ads-1"); err != nil {
		t.Fatalf("SetAdsCode failed: %v", err)
	}
	var reloaded models.Submission
	if err := db.First(&reloaded, sub.ID).Error; err != nil {
		t.Fatalf("failed to reload submission: %v", err)
	}
	if reloaded.AdsCode == nil || *reloaded.AdsCode != "ads-1" {
		t.Errorf("expected ads code persisted, got %v", reloaded.AdsCode)
	}
}
