package services

import (
	"encoding/json"
	"log"
	"sync"

	"creator-market/internal/models"

	"gorm.io/gorm"
)

// Notifier is the outbound notification contract used by the settlement
// services. Delivery is fire-and-forget: failures are logged, never returned.
type Notifier interface {
	Notify(eventType string, userID uint, payload map[string]interface{})
}

type event struct {
	eventType string
	userID    uint
	payload   map[string]interface{}
}

// NotificationService queues outbound events on a buffered channel and
// persists them to the in-app inbox from a dedicated dispatcher goroutine,
// keeping delivery off the callers' critical path.
type NotificationService struct {
	db     *gorm.DB
	events chan event
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	s := &NotificationService{
		db:     db,
		events: make(chan event, 256),
		done:   make(chan struct{}),
	}

	go s.dispatch()
	return s
}

// Notify enqueues an event for delivery. It never blocks: when the queue is
// full, or the service is already closed, the event is dropped and logged.
// A refresh cycle can still be finishing while the server shuts down, so
// late events must degrade to a drop rather than hit the closed channel.
func (s *NotificationService) Notify(eventType string, userID uint, payload map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		log.Printf("Notification service closed, dropping %s for user %d", eventType, userID)
		return
	}

	select {
	case s.events <- event{eventType: eventType, userID: userID, payload: payload}:
	default:
		log.Printf("Notification queue full, dropping %s for user %d", eventType, userID)
	}
}

// Close stops accepting events and drains the queue. Safe to call more than
// once.
func (s *NotificationService) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.events)
	s.mu.Unlock()

	<-s.done
}

func (s *NotificationService) dispatch() {
	defer close(s.done)

	for ev := range s.events {
		if err := s.deliver(ev); err != nil {
			log.Printf("Failed to deliver notification %s to user %d: %v", ev.eventType, ev.userID, err)
		}
	}
}

func (s *NotificationService) deliver(ev event) error {
	payload := ""
	if ev.payload != nil {
		data, err := json.Marshal(ev.payload)
		if err != nil {
			return err
		}
		payload = string(data)
	}

	notification := models.Notification{
		UserID:  ev.userID,
		Type:    ev.eventType,
		Payload: payload,
	}

	return s.db.Create(&notification).Error
}

// GetUserNotifications returns a user's inbox, newest first
func (s *NotificationService) GetUserNotifications(userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead marks a single notification as read
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	return s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true).Error
}
