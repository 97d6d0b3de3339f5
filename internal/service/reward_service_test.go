package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plotvote-server/internal/mocks"
	"plotvote-server/internal/models"
	"plotvote-server/internal/service"
)

type rewardMocks struct {
	userRepo    *mocks.MockUserRepository
	creditRepo  *mocks.MockCreditRepository
	storyRepo   *mocks.MockStoryRepository
	readingRepo *mocks.MockReadingRepository
	ledger      *mocks.MockCreditLedger
	readerCache *mocks.MockReaderCountCache
}

func newRewardService(t *testing.T) (service.RewardService, rewardMocks) {
	m := rewardMocks{
		userRepo:    mocks.NewMockUserRepository(t),
		creditRepo:  mocks.NewMockCreditRepository(t),
		storyRepo:   mocks.NewMockStoryRepository(t),
		readingRepo: mocks.NewMockReadingRepository(t),
		ledger:      mocks.NewMockCreditLedger(t),
		readerCache: mocks.NewMockReaderCountCache(t),
	}
	svc := service.NewRewardService(
		nil,
		&mocks.MockTxManager{},
		m.userRepo,
		m.creditRepo,
		m.storyRepo,
		m.readingRepo,
		m.ledger,
		m.readerCache,
		zap.NewNop(),
	)
	return svc, m
}

func todayUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func TestRewardService_ProcessDailyLogin(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("first login starts streak without reward", func(t *testing.T) {
		svc, m := newRewardService(t)

		m.userRepo.On("GetProfileForUpdate", mock.Anything, mock.Anything, userID).
			Return(&models.UserProfile{UserID: userID}, nil).Once()
		m.userRepo.On("UpdateLoginStreak", mock.Anything, mock.Anything, mock.MatchedBy(func(p *models.UserProfile) bool {
			return p.ConsecutiveDays == 1 && p.LastLoginDate != nil
		})).Return(nil).Once()

		awarded, err := svc.ProcessDailyLogin(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, 0, awarded)
		m.ledger.AssertNotCalled(t, "AddCreditsTx",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("second consecutive day awards one credit", func(t *testing.T) {
		svc, m := newRewardService(t)
		yesterday := todayUTC().AddDate(0, 0, -1)

		m.userRepo.On("GetProfileForUpdate", mock.Anything, mock.Anything, userID).
			Return(&models.UserProfile{UserID: userID, ConsecutiveDays: 1, LastLoginDate: &yesterday}, nil).Once()
		m.userRepo.On("UpdateLoginStreak", mock.Anything, mock.Anything, mock.MatchedBy(func(p *models.UserProfile) bool {
			return p.ConsecutiveDays == 2
		})).Return(nil).Once()
		m.creditRepo.On("SumEarnedSince", mock.Anything, mock.Anything, userID, "Daily login reward", mock.Anything).
			Return(0, nil).Once()
		m.ledger.On("AddCreditsTx", mock.Anything, mock.Anything, userID, models.DailyLoginCredits,
			models.TransactionTypeEarned, "Daily login reward (day 2)", models.TransactionRefs{}).
			Return(11, nil).Once()

		awarded, err := svc.ProcessDailyLogin(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, models.DailyLoginCredits, awarded)
		m.ledger.AssertExpectations(t)
	})

	t.Run("broken streak resets to one", func(t *testing.T) {
		svc, m := newRewardService(t)
		threeDaysAgo := todayUTC().AddDate(0, 0, -3)

		m.userRepo.On("GetProfileForUpdate", mock.Anything, mock.Anything, userID).
			Return(&models.UserProfile{UserID: userID, ConsecutiveDays: 6, LastLoginDate: &threeDaysAgo}, nil).Once()
		m.userRepo.On("UpdateLoginStreak", mock.Anything, mock.Anything, mock.MatchedBy(func(p *models.UserProfile) bool {
			return p.ConsecutiveDays == 1
		})).Return(nil).Once()

		awarded, err := svc.ProcessDailyLogin(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, 0, awarded)
	})

	t.Run("repeated login same day is a no-op", func(t *testing.T) {
		svc, m := newRewardService(t)
		today := todayUTC()

		m.userRepo.On("GetProfileForUpdate", mock.Anything, mock.Anything, userID).
			Return(&models.UserProfile{UserID: userID, ConsecutiveDays: 2, LastLoginDate: &today}, nil).Once()

		awarded, err := svc.ProcessDailyLogin(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, 0, awarded)
		m.userRepo.AssertNotCalled(t, "UpdateLoginStreak", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("monthly cap stops rewards but keeps streak", func(t *testing.T) {
		svc, m := newRewardService(t)
		yesterday := todayUTC().AddDate(0, 0, -1)

		m.userRepo.On("GetProfileForUpdate", mock.Anything, mock.Anything, userID).
			Return(&models.UserProfile{UserID: userID, ConsecutiveDays: 29, LastLoginDate: &yesterday}, nil).Once()
		m.userRepo.On("UpdateLoginStreak", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		m.creditRepo.On("SumEarnedSince", mock.Anything, mock.Anything, userID, "Daily login reward", mock.Anything).
			Return(models.DailyLoginMonthlyCap, nil).Once()

		awarded, err := svc.ProcessDailyLogin(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, 0, awarded)
		m.ledger.AssertNotCalled(t, "AddCreditsTx",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRewardService_GrantWelcomeBonus(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	svc, m := newRewardService(t)
	// Приветственный бонус — одноразовый, без месячного лимита
	m.ledger.On("AddCreditsTx", mock.Anything, mock.Anything, userID, models.WelcomeBonusCredits,
		models.TransactionTypeBonus, "Welcome bonus", models.TransactionRefs{}).
		Return(models.WelcomeBonusCredits, nil).Once()

	err := svc.GrantWelcomeBonus(ctx, nil, userID)

	require.NoError(t, err)
	m.ledger.AssertExpectations(t)
}

func TestRewardService_ProcessReadingMilestones(t *testing.T) {
	ctx := context.Background()
	storyID := uuid.New()
	authorID := uuid.New()
	story := &models.Story{ID: storyID, AuthorID: authorID}

	t.Run("awards first milestone once", func(t *testing.T) {
		svc, m := newRewardService(t)
		desc := fmt.Sprintf("Reading milestone: 10 readers for story %s", storyID)

		m.storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).Return(story, nil).Once()
		m.readerCache.On("Get", mock.Anything, storyID).Return(0, false, nil).Once()
		m.readingRepo.On("CountQualifiedReaders", mock.Anything, mock.Anything, storyID, models.MinReadPercentage).
			Return(12, nil).Once()
		m.readerCache.On("Set", mock.Anything, storyID, 12).Return(nil).Once()
		m.creditRepo.On("ExistsEarnedForStory", mock.Anything, mock.Anything, authorID, storyID, desc).
			Return(false, nil).Once()
		m.creditRepo.On("SumEarnedSince", mock.Anything, mock.Anything, authorID, "Reading milestone", mock.Anything).
			Return(0, nil).Once()
		m.ledger.On("AddCreditsTx", mock.Anything, mock.Anything, authorID, 1,
			models.TransactionTypeEarned, desc, models.StoryRef(storyID)).Return(11, nil).Once()

		awarded, err := svc.ProcessReadingMilestones(ctx, storyID)

		require.NoError(t, err)
		assert.Equal(t, 1, awarded)
	})

	t.Run("already granted milestone is skipped", func(t *testing.T) {
		svc, m := newRewardService(t)

		m.storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).Return(story, nil).Once()
		m.readerCache.On("Get", mock.Anything, storyID).Return(15, true, nil).Once()
		m.creditRepo.On("ExistsEarnedForStory", mock.Anything, mock.Anything, authorID, storyID, mock.Anything).
			Return(true, nil).Once()

		awarded, err := svc.ProcessReadingMilestones(ctx, storyID)

		require.NoError(t, err)
		assert.Equal(t, 0, awarded)
		m.ledger.AssertNotCalled(t, "AddCreditsTx",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("award that exceeds the monthly cap is skipped whole", func(t *testing.T) {
		svc, m := newRewardService(t)

		m.storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).Return(story, nil).Once()
		m.readerCache.On("Get", mock.Anything, storyID).Return(55, true, nil).Once()
		// Порог 10 уже выдан; за порог 50 положено 5 кредитов,
		// но в остатке месячного лимита только 2 — награда не дробится
		m.creditRepo.On("ExistsEarnedForStory", mock.Anything, mock.Anything, authorID, storyID,
			fmt.Sprintf("Reading milestone: 10 readers for story %s", storyID)).Return(true, nil).Once()
		m.creditRepo.On("ExistsEarnedForStory", mock.Anything, mock.Anything, authorID, storyID,
			fmt.Sprintf("Reading milestone: 50 readers for story %s", storyID)).Return(false, nil).Once()
		m.creditRepo.On("SumEarnedSince", mock.Anything, mock.Anything, authorID, "Reading milestone", mock.Anything).
			Return(models.MilestoneMonthlyCap-2, nil).Once()

		awarded, err := svc.ProcessReadingMilestones(ctx, storyID)

		require.NoError(t, err)
		assert.Equal(t, 0, awarded)
		m.ledger.AssertNotCalled(t, "AddCreditsTx",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("award that fits the remaining cap is granted in full", func(t *testing.T) {
		svc, m := newRewardService(t)
		desc := fmt.Sprintf("Reading milestone: 50 readers for story %s", storyID)

		m.storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).Return(story, nil).Once()
		m.readerCache.On("Get", mock.Anything, storyID).Return(55, true, nil).Once()
		m.creditRepo.On("ExistsEarnedForStory", mock.Anything, mock.Anything, authorID, storyID,
			fmt.Sprintf("Reading milestone: 10 readers for story %s", storyID)).Return(true, nil).Once()
		m.creditRepo.On("ExistsEarnedForStory", mock.Anything, mock.Anything, authorID, storyID, desc).
			Return(false, nil).Once()
		m.creditRepo.On("SumEarnedSince", mock.Anything, mock.Anything, authorID, "Reading milestone", mock.Anything).
			Return(models.MilestoneMonthlyCap-5, nil).Once()
		m.ledger.On("AddCreditsTx", mock.Anything, mock.Anything, authorID, 5,
			models.TransactionTypeEarned, desc, models.StoryRef(storyID)).Return(0, nil).Once()

		awarded, err := svc.ProcessReadingMilestones(ctx, storyID)

		require.NoError(t, err)
		assert.Equal(t, 5, awarded)
	})
}

func TestRewardService_ProcessReferral(t *testing.T) {
	ctx := context.Background()
	referredID := uuid.New()
	referrerID := uuid.New()

	t.Run("rewards both sides", func(t *testing.T) {
		svc, m := newRewardService(t)

		m.userRepo.On("GetProfileForUpdate", mock.Anything, mock.Anything, referredID).
			Return(&models.UserProfile{UserID: referredID}, nil).Once()
		m.ledger.On("AddCreditsTx", mock.Anything, mock.Anything, referredID, models.ReferralReferredBonus,
			models.TransactionTypeBonus, "Referral welcome bonus", models.TransactionRefs{}).
			Return(15, nil).Once()
		m.userRepo.On("MarkReferralRewarded", mock.Anything, mock.Anything, referredID).Return(nil).Once()
		m.creditRepo.On("SumEarnedSince", mock.Anything, mock.Anything, referrerID, "Referral reward", mock.Anything).
			Return(0, nil).Once()
		m.ledger.On("AddCreditsTx", mock.Anything, mock.Anything, referrerID, models.ReferralReferrerBonus,
			models.TransactionTypeEarned, fmt.Sprintf("Referral reward: invited user %s", referredID), models.TransactionRefs{}).
			Return(20, nil).Once()

		err := svc.ProcessReferral(ctx, nil, referredID, referrerID)

		require.NoError(t, err)
		m.ledger.AssertExpectations(t)
	})

	t.Run("referred bonus is one-time", func(t *testing.T) {
		svc, m := newRewardService(t)

		m.userRepo.On("GetProfileForUpdate", mock.Anything, mock.Anything, referredID).
			Return(&models.UserProfile{UserID: referredID, ReferralRewarded: true}, nil).Once()
		m.creditRepo.On("SumEarnedSince", mock.Anything, mock.Anything, referrerID, "Referral reward", mock.Anything).
			Return(0, nil).Once()
		m.ledger.On("AddCreditsTx", mock.Anything, mock.Anything, referrerID, models.ReferralReferrerBonus,
			models.TransactionTypeEarned, mock.Anything, models.TransactionRefs{}).
			Return(20, nil).Once()

		err := svc.ProcessReferral(ctx, nil, referredID, referrerID)

		require.NoError(t, err)
		m.userRepo.AssertNotCalled(t, "MarkReferralRewarded", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("referrer capped for the month", func(t *testing.T) {
		svc, m := newRewardService(t)

		m.userRepo.On("GetProfileForUpdate", mock.Anything, mock.Anything, referredID).
			Return(&models.UserProfile{UserID: referredID}, nil).Once()
		m.ledger.On("AddCreditsTx", mock.Anything, mock.Anything, referredID, models.ReferralReferredBonus,
			models.TransactionTypeBonus, mock.Anything, models.TransactionRefs{}).
			Return(15, nil).Once()
		m.userRepo.On("MarkReferralRewarded", mock.Anything, mock.Anything, referredID).Return(nil).Once()
		m.creditRepo.On("SumEarnedSince", mock.Anything, mock.Anything, referrerID, "Referral reward", mock.Anything).
			Return(models.ReferralMonthlyCap, nil).Once()

		err := svc.ProcessReferral(ctx, nil, referredID, referrerID)

		require.NoError(t, err)
		m.ledger.AssertNotCalled(t, "AddCreditsTx",
			mock.Anything, mock.Anything, referrerID, models.ReferralReferrerBonus,
			mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRewardService_ProcessSocialShare(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	storyID := uuid.New()
	ownStory := &models.Story{ID: storyID, AuthorID: userID}

	t.Run("first share of the day is rewarded", func(t *testing.T) {
		svc, m := newRewardService(t)

		m.storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).
			Return(ownStory, nil).Once()
		m.creditRepo.On("HasShareToday", mock.Anything, mock.Anything, userID, "twitter", mock.Anything).
			Return(false, nil).Once()
		m.creditRepo.On("CreateSocialShare", mock.Anything, mock.Anything, mock.MatchedBy(func(s *models.SocialShare) bool {
			return s.UserID == userID && s.StoryID == storyID && s.Platform == "twitter"
		})).Return(nil).Once()
		m.creditRepo.On("SumEarnedSince", mock.Anything, mock.Anything, userID, "Social share reward", mock.Anything).
			Return(0, nil).Once()
		m.ledger.On("AddCreditsTx", mock.Anything, mock.Anything, userID, models.SocialShareCredits,
			models.TransactionTypeEarned, "Social share reward: twitter", models.StoryRef(storyID)).
			Return(11, nil).Once()

		awarded, err := svc.ProcessSocialShare(ctx, userID, storyID, "twitter")

		require.NoError(t, err)
		assert.Equal(t, models.SocialShareCredits, awarded)
	})

	t.Run("sharing someone else's story is not rewarded", func(t *testing.T) {
		svc, m := newRewardService(t)

		m.storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).
			Return(&models.Story{ID: storyID, AuthorID: uuid.New()}, nil).Once()

		_, err := svc.ProcessSocialShare(ctx, userID, storyID, "twitter")

		assert.ErrorIs(t, err, service.ErrPermissionDenied)
		m.ledger.AssertNotCalled(t, "AddCreditsTx",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("second share same platform same day records but does not reward", func(t *testing.T) {
		svc, m := newRewardService(t)

		m.storyRepo.On("GetByID", mock.Anything, mock.Anything, storyID).
			Return(ownStory, nil).Once()
		m.creditRepo.On("HasShareToday", mock.Anything, mock.Anything, userID, "twitter", mock.Anything).
			Return(true, nil).Once()
		m.creditRepo.On("CreateSocialShare", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		awarded, err := svc.ProcessSocialShare(ctx, userID, storyID, "twitter")

		require.NoError(t, err)
		assert.Equal(t, 0, awarded)
		m.ledger.AssertNotCalled(t, "AddCreditsTx",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty platform rejected", func(t *testing.T) {
		svc, _ := newRewardService(t)
		_, err := svc.ProcessSocialShare(ctx, userID, storyID, "")
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})
}
