package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"arena-ledger/domain/entities"
	"arena-ledger/domain/events"
	"arena-ledger/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const referralCodeLength = 8

// referralService implements referral code handling and first-deposit rewards
type referralService struct {
	userRepo       interfaces.UserRepository
	referralRepo   interfaces.ReferralRepository
	wallet         interfaces.WalletService
	eventPublisher interfaces.EventPublisher
	referrerReward int64
	refereeReward  int64
}

// NewReferralService creates a new referral service paying the given coin rewards
func NewReferralService(
	userRepo interfaces.UserRepository,
	referralRepo interfaces.ReferralRepository,
	wallet interfaces.WalletService,
	eventPublisher interfaces.EventPublisher,
	referrerReward int64,
	refereeReward int64,
) interfaces.ReferralService {
	return &referralService{
		userRepo:       userRepo,
		referralRepo:   referralRepo,
		wallet:         wallet,
		eventPublisher: eventPublisher,
		referrerReward: referrerReward,
		refereeReward:  refereeReward,
	}
}

// GetReferralCode returns the user's referral code, generating it on first request
func (s *referralService) GetReferralCode(ctx context.Context, userID string) (string, error) {
	if err := validateUserID(userID); err != nil {
		return "", err
	}
	if err := s.userRepo.EnsureExists(ctx, userID); err != nil {
		return "", fmt.Errorf("failed to ensure user %s: %w", userID, err)
	}

	user, err := s.userRepo.GetByIDForUpdate(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to lock user %s: %w", userID, err)
	}
	if user == nil {
		return "", entities.NewSettlementError(entities.ErrTransactionAborted, "user %s vanished", userID)
	}
	if user.ReferralCode != nil && *user.ReferralCode != "" {
		return *user.ReferralCode, nil
	}

	code := newReferralCode()
	if err := s.userRepo.AssignReferralCode(ctx, userID, code); err != nil {
		return "", fmt.Errorf("failed to assign referral code to user %s: %w", userID, err)
	}
	return code, nil
}

// ApplyReferralCode links a new user to the owner of code
func (s *referralService) ApplyReferralCode(ctx context.Context, userID, code string) (*entities.Referral, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput, "referral code is required")
	}

	referrer, err := s.userRepo.GetByReferralCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up referral code: %w", err)
	}
	if referrer == nil {
		return nil, entities.NewSettlementError(entities.ErrNotFound, "referral code %s not found", code)
	}
	if referrer.ID == userID {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput, "users cannot refer themselves")
	}

	if err := s.userRepo.EnsureExists(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure user %s: %w", userID, err)
	}
	user, err := s.userRepo.GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock user %s: %w", userID, err)
	}
	if user == nil {
		return nil, entities.NewSettlementError(entities.ErrTransactionAborted, "user %s vanished", userID)
	}
	if user.WasReferred() {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput, "user %s was already referred", userID)
	}
	if user.HasMadeFirstDeposit {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput,
			"referral codes must be applied before the first deposit")
	}

	set, err := s.userRepo.SetReferredBy(ctx, userID, referrer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to set referrer of user %s: %w", userID, err)
	}
	if !set {
		return nil, entities.NewSettlementError(entities.ErrInvalidInput, "user %s was already referred", userID)
	}

	referral := &entities.Referral{
		ReferrerID:     referrer.ID,
		ReferredUserID: userID,
		ReferralCode:   code,
	}
	if err := s.referralRepo.Create(ctx, referral); err != nil {
		return nil, fmt.Errorf("failed to create referral for user %s: %w", userID, err)
	}

	log.WithFields(log.Fields{
		"referralID": referral.ID,
		"referrerID": referrer.ID,
		"userID":     userID,
	}).Info("Referral code applied")

	return referral, nil
}

// ProcessFirstDeposit pays the referrer and the referred user, once per referral
func (s *referralService) ProcessFirstDeposit(ctx context.Context, userID string) (*interfaces.ReferralRewardResult, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	if user == nil {
		return nil, entities.NewSettlementError(entities.ErrNotFound, "user %s not found", userID)
	}
	if !user.WasReferred() {
		return &interfaces.ReferralRewardResult{}, nil
	}

	referral, err := s.referralRepo.GetByReferredUserForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock referral of user %s: %w", userID, err)
	}
	if referral == nil || referral.ReferrerID != *user.ReferredBy {
		log.WithFields(log.Fields{
			"userID":     userID,
			"referredBy": *user.ReferredBy,
		}).Warn("Referred user has no matching referral record, skipping reward")
		return &interfaces.ReferralRewardResult{}, nil
	}
	if referral.RewardGiven {
		return &interfaces.ReferralRewardResult{Referral: referral, AlreadySettled: true}, nil
	}

	if s.referrerReward > 0 {
		if _, err := s.wallet.Credit(ctx, interfaces.LedgerRequest{
			AccountID:   referral.ReferrerID,
			Amount:      s.referrerReward,
			Description: fmt.Sprintf("Referral reward for inviting %s", userID),
			Reference:   entities.ReferrerRewardReference(referral.ReferrerID, referral.ID),
			Currency:    entities.CurrencyCoin,
			Metadata:    map[string]any{"referral_id": referral.ID},
		}); err != nil {
			return nil, fmt.Errorf("failed to credit referrer %s: %w", referral.ReferrerID, err)
		}
	}

	if s.refereeReward > 0 {
		if _, err := s.wallet.Credit(ctx, interfaces.LedgerRequest{
			AccountID:   userID,
			Amount:      s.refereeReward,
			Description: "Welcome reward for joining with a referral code",
			Reference:   entities.RefereeRewardReference(userID, referral.ID),
			Currency:    entities.CurrencyCoin,
			Metadata:    map[string]any{"referral_id": referral.ID},
		}); err != nil {
			return nil, fmt.Errorf("failed to credit referred user %s: %w", userID, err)
		}
	}

	now := time.Now().UTC()
	marked, err := s.referralRepo.MarkRewarded(ctx, referral.ID, s.referrerReward, now)
	if err != nil {
		return nil, fmt.Errorf("failed to mark referral %d rewarded: %w", referral.ID, err)
	}
	if !marked {
		return nil, entities.NewSettlementError(entities.ErrTransactionAborted,
			"referral %d was rewarded concurrently", referral.ID)
	}
	referral.RewardGiven = true
	referral.RewardAmount = s.referrerReward
	referral.FirstDepositAt = &now

	if _, err := s.userRepo.MarkFirstDeposit(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to mark first deposit for user %s: %w", userID, err)
	}

	if err := s.eventPublisher.Publish(events.ReferralRewardedEvent{
		ReferralID:     referral.ID,
		ReferrerID:     referral.ReferrerID,
		ReferredUserID: userID,
		ReferrerReward: s.referrerReward,
		RefereeReward:  s.refereeReward,
	}); err != nil {
		log.WithError(err).Error("Failed to publish referral rewarded event")
	}

	log.WithFields(log.Fields{
		"referralID":     referral.ID,
		"referrerID":     referral.ReferrerID,
		"userID":         userID,
		"referrerReward": s.referrerReward,
		"refereeReward":  s.refereeReward,
	}).Info("Referral reward issued")

	return &interfaces.ReferralRewardResult{
		Referral:       referral,
		Rewarded:       true,
		ReferrerReward: s.referrerReward,
		RefereeReward:  s.refereeReward,
	}, nil
}

// GetReferral returns the referral that brought userID in
func (s *referralService) GetReferral(ctx context.Context, userID string) (*entities.Referral, error) {
	referral, err := s.referralRepo.GetByReferredUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get referral of user %s: %w", userID, err)
	}
	if referral == nil {
		return nil, entities.NewSettlementError(entities.ErrNotFound, "user %s has no referral", userID)
	}
	return referral, nil
}

// ListReferrals returns the users referred by referrerID
func (s *referralService) ListReferrals(ctx context.Context, referrerID string) ([]*entities.Referral, error) {
	referrals, err := s.referralRepo.ListByReferrer(ctx, referrerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals of user %s: %w", referrerID, err)
	}
	return referrals, nil
}

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return entities.NewSettlementError(entities.ErrInvalidInput, "user id is required")
	}
	if userID == entities.HouseAccountID {
		return entities.NewSettlementError(entities.ErrInvalidInput, "user id %q is reserved", userID)
	}
	return nil
}

func newReferralCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:referralCodeLength])
}
