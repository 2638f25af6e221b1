package models

import (
	"time"
)

// Notification event types
const (
	NotificationMilestoneReached   = "milestone_reached"
	NotificationSubmissionAccepted = "submission_accepted"
	NotificationSubmissionRefused  = "submission_refused"
	NotificationInvoicePaid        = "invoice_paid"
	NotificationCommissionEarned   = "commission_earned"
	NotificationWithdrawalRequest  = "withdrawal_requested"
	NotificationWithdrawalPaid     = "withdrawal_paid"
)

// Notification is an in-app inbox entry written by the dispatcher
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Type      string    `gorm:"size:50;not null" json:"type"`
	Payload   string    `gorm:"type:text" json:"payload"`
	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Notification model
func (Notification) TableName() string {
	return "notifications"
}
