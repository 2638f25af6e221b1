package services

import (
	"encoding/json"
	"fmt"
	"testing"

	"creator-market/internal/models"
)

func TestNotifyPersistsToInbox(t *testing.T) {
	db := setupTestDB(t)
	service := NewNotificationService(db)

	service.Notify(models.NotificationMilestoneReached, 7, map[string]interface{}{
		"campaign_id":  uint(3),
		"views_target": int64(1000),
	})
	service.Notify(models.NotificationInvoicePaid, 7, nil)
	service.Close()

	notifications, err := service.GetUserNotifications(7)
	if err != nil {
		t.Fatalf("GetUserNotifications failed: %v", err)
	}
	if len(notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifications))
	}

	var milestone *models.Notification
	for i := range notifications {
		if notifications[i].Type == models.NotificationMilestoneReached {
			milestone = &notifications[i]
		}
	}
	if milestone == nil {
		t.Fatal("milestone notification not persisted")
	}
	if milestone.Read {
		t.Error("expected notification unread")
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(milestone.Payload), &payload); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if payload["views_target"].(float64) != 1000 {
		t.Errorf("unexpected payload %v", payload)
	}
}

func TestCloseDrainsQueue(t *testing.T) {
	db := setupTestDB(t)
	service := NewNotificationService(db)

	for i := 0; i < 50; i++ {
		service.Notify(models.NotificationCommissionEarned, 9, map[string]interface{}{
			"n": fmt.Sprintf("%d", i),
		})
	}
	service.Close()

	var count int64
	db.Model(&models.Notification{}).Where("user_id = ?", 9).Count(&count)
	if count != 50 {
		t.Errorf("expected all 50 queued notifications persisted on close, got %d", count)
	}

	// Close is idempotent
	service.Close()
}

func TestNotifyAfterCloseDropsEvent(t *testing.T) {
	db := setupTestDB(t)
	service := NewNotificationService(db)
	service.Close()

	// A refresh cycle finishing during shutdown may still emit events; they
	// must be dropped, not crash the process
	service.Notify(models.NotificationMilestoneReached, 3, map[string]interface{}{
		"views_target": int64(1000),
	})

	var count int64
	db.Model(&models.Notification{}).Where("user_id = ?", 3).Count(&count)
	if count != 0 {
		t.Errorf("expected late event dropped, got %d notifications", count)
	}
}

func TestMarkReadScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	service := NewNotificationService(db)
	defer service.Close()

	notification := models.Notification{UserID: 11, Type: models.NotificationInvoicePaid}
	if err := db.Create(&notification).Error; err != nil {
		t.Fatalf("failed to create notification: %v", err)
	}

	// Another user cannot mark it
	if err := service.MarkRead(12, notification.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	var reloaded models.Notification
	if err := db.First(&reloaded, notification.ID).Error; err != nil {
		t.Fatalf("failed to reload notification: %v", err)
	}
	if reloaded.Read {
		t.Error("expected notification untouched by non-owner")
	}

	if err := service.MarkRead(11, notification.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if err := db.First(&reloaded, notification.ID).Error; err != nil {
		t.Fatalf("failed to reload notification: %v", err)
	}
	if !reloaded.Read {
		t.Error("expected notification marked read by owner")
	}
}
