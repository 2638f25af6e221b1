package services

import (
	"fmt"
	"sync"
	"time"

	"creator-market/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrInsufficientBalance is returned when a withdrawal request exceeds the
// referrer's available commission balance
var ErrInsufficientBalance = fmt.Errorf("requested amount exceeds available balance")

// ErrAlreadyPaid is returned when paying an invoice or withdrawal that is not
// in the uploaded state
var ErrAlreadyPaid = fmt.Errorf("already paid")

// CommissionService owns referral commission creation and the withdrawal
// state machine
type CommissionService struct {
	db       *gorm.DB
	notifier Notifier
	mu       sync.Mutex
}

func NewCommissionService(db *gorm.DB, notifier Notifier) *CommissionService {
	return &CommissionService{
		db:       db,
		notifier: notifier,
	}
}

// OnInvoicePaid records the referrer's cut of a freshly paid campaign
// invoice. No-op when the creator has no referrer or the computed amount
// floors to zero. The invoice's uploaded->paid guard upstream makes this
// at-most-once per invoice.
func (s *CommissionService) OnInvoicePaid(invoice *models.Invoice) error {
	return s.onInvoicePaid(s.db, invoice)
}

// onInvoicePaid runs against the given handle so the invoice payment can
// include commission creation in its own transaction.
func (s *CommissionService) onInvoicePaid(db *gorm.DB, invoice *models.Invoice) error {
	creator, err := s.resolveCreator(db, invoice.SubmissionID)
	if err != nil {
		return err
	}

	if creator.ReferrerID == nil {
		return nil
	}

	var referrer models.User
	if err := db.Where("id = ?", *creator.ReferrerID).First(&referrer).Error; err != nil {
		return fmt.Errorf("failed to load referrer: %w", err)
	}

	// floor(amount * percentage / 100)
	amount := invoice.AmountCents.
		Mul(referrer.ReferralPercentage).
		Div(decimal.NewFromInt(100)).
		Floor()

	if !amount.IsPositive() {
		return nil
	}

	commission := models.ReferralCommission{
		ReferrerID:  referrer.ID,
		RefereeID:   creator.ID,
		InvoiceID:   invoice.ID,
		AmountCents: amount,
		Status:      models.CommissionStatusAvailable,
	}

	if err := db.Create(&commission).Error; err != nil {
		return fmt.Errorf("failed to create commission: %w", err)
	}

	s.notifier.Notify(models.NotificationCommissionEarned, referrer.ID, map[string]interface{}{
		"amount_cents": amount,
		"referee_name": creator.Name,
		"invoice_id":   invoice.ID,
	})

	return nil
}

// AvailableBalance sums the referrer's commissions still marked available
func (s *CommissionService) AvailableBalance(referrerID uint) (decimal.Decimal, error) {
	var balance decimal.Decimal
	row := s.db.Model(&models.ReferralCommission{}).
		Where("referrer_id = ? AND status = ?", referrerID, models.CommissionStatusAvailable).
		Select("COALESCE(SUM(amount_cents), 0)").Row()
	if err := row.Scan(&balance); err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute balance: %w", err)
	}
	return balance, nil
}

// RequestWithdrawal creates a withdrawal invoice for the requested amount and
// consumes available commissions oldest-first until it is covered. A
// commission only partially needed to cover the remainder is still marked
// fully withdrawn: commissions are atomic units, never split.
func (s *CommissionService) RequestWithdrawal(referrerID uint, amount decimal.Decimal) (*models.ReferralInvoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !amount.IsPositive() {
		return nil, fmt.Errorf("withdrawal amount must be positive")
	}

	balance, err := s.AvailableBalance(referrerID)
	if err != nil {
		return nil, err
	}

	if amount.GreaterThan(balance) {
		return nil, ErrInsufficientBalance
	}

	withdrawal := models.ReferralInvoice{
		UserID:      referrerID,
		Reference:   uuid.NewString(),
		AmountCents: amount,
		Status:      models.InvoiceStatusUploaded,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&withdrawal).Error; err != nil {
			return fmt.Errorf("failed to create withdrawal invoice: %w", err)
		}

		var commissions []models.ReferralCommission
		if err := tx.Where("referrer_id = ? AND status = ?", referrerID, models.CommissionStatusAvailable).
			Order("created_at ASC, id ASC").Find(&commissions).Error; err != nil {
			return fmt.Errorf("failed to load commissions: %w", err)
		}

		consumed := decimal.Zero
		for _, commission := range commissions {
			if consumed.GreaterThanOrEqual(amount) {
				break
			}
			if err := tx.Model(&models.ReferralCommission{}).Where("id = ?", commission.ID).
				Update("status", models.CommissionStatusWithdrawn).Error; err != nil {
				return fmt.Errorf("failed to consume commission %d: %w", commission.ID, err)
			}
			consumed = consumed.Add(commission.AmountCents)
		}

		if consumed.LessThan(amount) {
			return ErrInsufficientBalance
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyBrandUsers(models.NotificationWithdrawalRequest, map[string]interface{}{
		"withdrawal_id": withdrawal.ID,
		"reference":     withdrawal.Reference,
		"user_id":       referrerID,
		"amount_cents":  amount,
	})

	return &withdrawal, nil
}

// MarkWithdrawalPaid settles a withdrawal invoice. Fails with ErrAlreadyPaid
// unless the invoice is still uploaded.
func (s *CommissionService) MarkWithdrawalPaid(withdrawalID uint) error {
	var withdrawal models.ReferralInvoice
	if err := s.db.Where("id = ?", withdrawalID).First(&withdrawal).Error; err != nil {
		return fmt.Errorf("failed to load withdrawal invoice: %w", err)
	}

	if withdrawal.Status != models.InvoiceStatusUploaded {
		return ErrAlreadyPaid
	}

	now := time.Now()
	if err := s.db.Model(&withdrawal).Updates(map[string]interface{}{
		"status":  models.InvoiceStatusPaid,
		"paid_at": now,
	}).Error; err != nil {
		return fmt.Errorf("failed to mark withdrawal paid: %w", err)
	}

	s.notifier.Notify(models.NotificationWithdrawalPaid, withdrawal.UserID, map[string]interface{}{
		"withdrawal_id": withdrawal.ID,
		"reference":     withdrawal.Reference,
		"amount_cents":  withdrawal.AmountCents,
	})

	return nil
}

// GetUserCommissions returns a referrer's commissions, newest first
func (s *CommissionService) GetUserCommissions(referrerID uint) ([]models.ReferralCommission, error) {
	var commissions []models.ReferralCommission
	if err := s.db.Where("referrer_id = ?", referrerID).
		Preload("Referee").Order("created_at DESC").Find(&commissions).Error; err != nil {
		return nil, err
	}
	return commissions, nil
}

// GetUserWithdrawals returns a referrer's withdrawal invoices, newest first
func (s *CommissionService) GetUserWithdrawals(userID uint) ([]models.ReferralInvoice, error) {
	var withdrawals []models.ReferralInvoice
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&withdrawals).Error; err != nil {
		return nil, err
	}
	return withdrawals, nil
}

// resolveCreator walks invoice submission -> tiktok account -> owning user
func (s *CommissionService) resolveCreator(db *gorm.DB, submissionID uint) (*models.User, error) {
	var sub models.Submission
	if err := db.Preload("TikTokAccount").Where("id = ?", submissionID).First(&sub).Error; err != nil {
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}

	if sub.TikTokAccount == nil {
		return nil, fmt.Errorf("submission %d has no tiktok account", submissionID)
	}

	var creator models.User
	if err := db.Where("id = ?", sub.TikTokAccount.UserID).First(&creator).Error; err != nil {
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}

	return &creator, nil
}

// notifyBrandUsers fans a single event out to every brand-side user
func (s *CommissionService) notifyBrandUsers(eventType string, payload map[string]interface{}) {
	var brandIDs []uint
	if err := s.db.Model(&models.User{}).Where("role = ?", models.RoleBrand).
		Pluck("id", &brandIDs).Error; err != nil {
		return
	}

	for _, id := range brandIDs {
		s.notifier.Notify(eventType, id, payload)
	}
}
