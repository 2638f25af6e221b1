package services

import (
	"fmt"
	"time"

	"creator-market/internal/models"

	"gorm.io/gorm"
)

// ErrMissingAdsCode is returned when invoicing while an accepted submission
// still lacks its ads authorization code
var ErrMissingAdsCode = fmt.Errorf("accepted submission missing ads code")

// ErrTierLocked is returned when invoicing a reward tier the creator has not
// unlocked
var ErrTierLocked = fmt.Errorf("reward tier not unlocked")

// InvoiceService owns the campaign invoice lifecycle: creation against an
// unlocked tier and the uploaded->paid transition that triggers commissions
type InvoiceService struct {
	db          *gorm.DB
	rewards     *RewardService
	commissions *CommissionService
	notifier    Notifier
}

func NewInvoiceService(db *gorm.DB, rewards *RewardService, commissions *CommissionService, notifier Notifier) *InvoiceService {
	return &InvoiceService{
		db:          db,
		rewards:     rewards,
		commissions: commissions,
		notifier:    notifier,
	}
}

// CreateInvoice raises an invoice for an unlocked reward tier. Every accepted
// submission of the creator in the campaign must carry an ads code, and the
// invoice anchors to the creator's earliest accepted submission.
func (s *InvoiceService) CreateInvoice(campaignID, userID, tierID uint) (*models.Invoice, error) {
	statuses, err := s.rewards.ComputeRewardStatus(campaignID, userID)
	if err != nil {
		return nil, err
	}

	var target *RewardStatus
	for i := range statuses {
		if statuses[i].Tier.ID == tierID {
			target = &statuses[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("reward tier %d not found in campaign %d", tierID, campaignID)
	}

	if !target.IsUnlocked || target.AnchorSubmissionID == nil {
		return nil, ErrTierLocked
	}

	if target.Invoice != nil {
		return nil, fmt.Errorf("reward tier %d already invoiced", tierID)
	}

	if err := s.checkAdsCodes(campaignID, userID); err != nil {
		return nil, err
	}

	invoice := models.Invoice{
		SubmissionID: *target.AnchorSubmissionID,
		RewardTierID: tierID,
		AmountCents:  target.Tier.AmountCents,
		Status:       models.InvoiceStatusUploaded,
	}

	if err := s.db.Create(&invoice).Error; err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	return &invoice, nil
}

// PayInvoice transitions an invoice uploaded->paid. Paying twice fails with
// ErrAlreadyPaid; commission creation relies on this guard for idempotence.
// The status flip and the commission share one transaction: a commission
// failure rolls the invoice back to uploaded so the payment can be retried.
func (s *InvoiceService) PayInvoice(invoiceID uint) error {
	var invoice models.Invoice
	if err := s.db.Where("id = ?", invoiceID).First(&invoice).Error; err != nil {
		return fmt.Errorf("failed to load invoice: %w", err)
	}

	if invoice.Status != models.InvoiceStatusUploaded {
		return ErrAlreadyPaid
	}

	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&invoice).Updates(map[string]interface{}{
			"status":  models.InvoiceStatusPaid,
			"paid_at": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to mark invoice paid: %w", err)
		}

		if err := s.commissions.onInvoicePaid(tx, &invoice); err != nil {
			return fmt.Errorf("failed to create commission for invoice %d: %w", invoice.ID, err)
		}

		return nil
	})
	if err != nil {
		return err
	}
	invoice.Status = models.InvoiceStatusPaid
	invoice.PaidAt = &now

	var sub models.Submission
	if err := s.db.Preload("TikTokAccount").Where("id = ?", invoice.SubmissionID).First(&sub).Error; err == nil && sub.TikTokAccount != nil {
		s.notifier.Notify(models.NotificationInvoicePaid, sub.TikTokAccount.UserID, map[string]interface{}{
			"invoice_id":   invoice.ID,
			"amount_cents": invoice.AmountCents,
		})
	}

	return nil
}

// GetInvoice returns a single invoice with its tier and submission
func (s *InvoiceService) GetInvoice(invoiceID uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := s.db.Preload("RewardTier").Preload("Submission").
		Where("id = ?", invoiceID).First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// checkAdsCodes verifies every accepted submission of the creator in the
// campaign carries an ads code
func (s *InvoiceService) checkAdsCodes(campaignID, userID uint) error {
	var accountIDs []uint
	if err := s.db.Model(&models.TikTokAccount{}).Where("user_id = ?", userID).
		Pluck("id", &accountIDs).Error; err != nil {
		return fmt.Errorf("failed to load creator accounts: %w", err)
	}

	var missing int64
	if err := s.db.Model(&models.Submission{}).
		Where("campaign_id = ? AND tiktok_account_id IN ? AND status = ? AND (ads_code IS NULL OR ads_code = '')",
			campaignID, accountIDs, models.SubmissionStatusAccepted).
		Count(&missing).Error; err != nil {
		return fmt.Errorf("failed to check ads codes: %w", err)
	}

	if missing > 0 {
		return ErrMissingAdsCode
	}

	return nil
}
