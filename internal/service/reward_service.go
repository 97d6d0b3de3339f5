package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

// Префиксы описаний строк аудита. По ним считаются месячные лимиты
// и проверяется идемпотентность начислений.
const (
	descWelcomeBonus     = "Welcome bonus"
	descDailyLoginPrefix = "Daily login reward"
	descMilestonePrefix  = "Reading milestone"
	descReferralWelcome  = "Referral welcome bonus"
	descReferralPrefix   = "Referral reward"
	descSharePrefix      = "Social share reward"
)

// RewardService начисляет кредиты по правилам наград.
type RewardService interface {
	// GrantWelcomeBonus начисляет одноразовый бонус при регистрации.
	GrantWelcomeBonus(ctx context.Context, tx interfaces.DBTX, userID uuid.UUID) error

	// ProcessDailyLogin обновляет серию ежедневных входов и начисляет
	// 1 кредит за каждый второй день подряд. Возвращает начисленную сумму (0 или 1).
	ProcessDailyLogin(ctx context.Context, userID uuid.UUID) (int, error)

	// ProcessReadingMilestones проверяет пороги читателей истории и начисляет
	// автору награды за новые достигнутые пороги. Возвращает суммарное начисление.
	ProcessReadingMilestones(ctx context.Context, storyID uuid.UUID) (int, error)

	// ProcessReferral начисляет бонусы за приглашение: приглашенному — одноразово,
	// пригласившему — за каждого приглашенного.
	ProcessReferral(ctx context.Context, tx interfaces.DBTX, referredUserID, referrerUserID uuid.UUID) error

	// ProcessSocialShare начисляет 1 кредит за шаринг (раз в день на платформу).
	ProcessSocialShare(ctx context.Context, userID, storyID uuid.UUID, platform string) (int, error)
}

type rewardServiceImpl struct {
	db          interfaces.DBTX
	txManager   interfaces.TxManager
	userRepo    interfaces.UserRepository
	creditRepo  interfaces.CreditRepository
	storyRepo   interfaces.StoryRepository
	readingRepo interfaces.ReadingRepository
	ledger      CreditLedger
	readerCache interfaces.ReaderCountCache
	logger      *zap.Logger
	now         func() time.Time
}

// NewRewardService создает новый экземпляр RewardService.
func NewRewardService(
	db interfaces.DBTX,
	txManager interfaces.TxManager,
	userRepo interfaces.UserRepository,
	creditRepo interfaces.CreditRepository,
	storyRepo interfaces.StoryRepository,
	readingRepo interfaces.ReadingRepository,
	ledger CreditLedger,
	readerCache interfaces.ReaderCountCache,
	logger *zap.Logger,
) RewardService {
	return &rewardServiceImpl{
		db:          db,
		txManager:   txManager,
		userRepo:    userRepo,
		creditRepo:  creditRepo,
		storyRepo:   storyRepo,
		readingRepo: readingRepo,
		ledger:      ledger,
		readerCache: readerCache,
		logger:      logger.Named("RewardService"),
		now:         time.Now,
	}
}

// monthStart возвращает начало текущего месяца в UTC.
func (s *rewardServiceImpl) monthStart() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// dayStart возвращает начало текущих суток в UTC.
func (s *rewardServiceImpl) dayStart() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// GrantWelcomeBonus начисляет одноразовый бонус при регистрации.
func (s *rewardServiceImpl) GrantWelcomeBonus(ctx context.Context, tx interfaces.DBTX, userID uuid.UUID) error {
	_, err := s.ledger.AddCreditsTx(ctx, tx, userID, models.WelcomeBonusCredits,
		models.TransactionTypeBonus, descWelcomeBonus, models.TransactionRefs{})
	return err
}

// ProcessDailyLogin обновляет серию входов и начисляет кредит
// за каждый второй день подряд, не больше 15 кредитов в месяц.
func (s *rewardServiceImpl) ProcessDailyLogin(ctx context.Context, userID uuid.UUID) (int, error) {
	awarded := 0
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		profile, err := s.userRepo.GetProfileForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}

		today := s.dayStart()
		if profile.LastLoginDate != nil {
			last := profile.LastLoginDate.UTC().Truncate(24 * time.Hour)
			switch {
			case last.Equal(today):
				// Уже засчитан сегодня
				return nil
			case last.Equal(today.AddDate(0, 0, -1)):
				profile.ConsecutiveDays++
			default:
				// Серия прервана
				profile.ConsecutiveDays = 1
			}
		} else {
			profile.ConsecutiveDays = 1
		}
		profile.LastLoginDate = &today

		if err := s.userRepo.UpdateLoginStreak(ctx, tx, profile); err != nil {
			return err
		}

		// Кредит — за каждый второй день серии
		if profile.ConsecutiveDays%2 != 0 {
			return nil
		}

		earned, err := s.creditRepo.SumEarnedSince(ctx, tx, userID, descDailyLoginPrefix, s.monthStart())
		if err != nil {
			return err
		}
		if earned >= models.DailyLoginMonthlyCap {
			s.logger.Debug("Daily login monthly cap reached", zap.String("userID", userID.String()))
			return nil
		}

		desc := fmt.Sprintf("%s (day %d)", descDailyLoginPrefix, profile.ConsecutiveDays)
		if _, err := s.ledger.AddCreditsTx(ctx, tx, userID, models.DailyLoginCredits,
			models.TransactionTypeEarned, desc, models.TransactionRefs{}); err != nil {
			return err
		}
		awarded = models.DailyLoginCredits
		return nil
	})
	if err != nil {
		if !errors.Is(err, models.ErrUserNotFound) {
			s.logger.Error("Failed to process daily login", zap.String("userID", userID.String()), zap.Error(err))
		}
		return 0, err
	}
	return awarded, nil
}

// ProcessReadingMilestones начисляет автору истории награды за пороги
// уникальных читателей (прочитавших >= 60% хотя бы одной главы).
// Идемпотентность — по точному описанию строки аудита; месячный лимит 50.
func (s *rewardServiceImpl) ProcessReadingMilestones(ctx context.Context, storyID uuid.UUID) (int, error) {
	story, err := s.storyRepo.GetByID(ctx, s.db, storyID)
	if err != nil {
		return 0, err
	}

	readers, err := s.qualifiedReaders(ctx, storyID)
	if err != nil {
		return 0, err
	}

	totalAwarded := 0
	for _, milestone := range models.MilestoneThresholds {
		if readers < milestone.Readers {
			break
		}

		milestone := milestone
		desc := fmt.Sprintf("%s: %d readers for story %s", descMilestonePrefix, milestone.Readers, storyID)

		err := s.txManager.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
			exists, err := s.creditRepo.ExistsEarnedForStory(ctx, tx, story.AuthorID, storyID, desc)
			if err != nil {
				return err
			}
			if exists {
				return nil
			}

			earned, err := s.creditRepo.SumEarnedSince(ctx, tx, story.AuthorID, descMilestonePrefix, s.monthStart())
			if err != nil {
				return err
			}
			// Награда не дробится: если она не помещается в остаток
			// месячного лимита, начисление пропускается целиком.
			if earned+milestone.Credits > models.MilestoneMonthlyCap {
				s.logger.Debug("Milestone monthly cap reached",
					zap.String("authorID", story.AuthorID.String()),
					zap.Int("earned", earned),
					zap.Int("credits", milestone.Credits))
				return nil
			}

			if _, err := s.ledger.AddCreditsTx(ctx, tx, story.AuthorID, milestone.Credits,
				models.TransactionTypeEarned, desc, models.StoryRef(storyID)); err != nil {
				return err
			}
			totalAwarded += milestone.Credits
			s.logger.Info("Reading milestone reward granted",
				zap.String("storyID", storyID.String()),
				zap.Int("readers", milestone.Readers),
				zap.Int("credits", milestone.Credits))
			return nil
		})
		if err != nil {
			return totalAwarded, err
		}
	}

	return totalAwarded, nil
}

// qualifiedReaders возвращает число квалифицированных читателей,
// используя Redis-кэш, чтобы не пересчитывать на каждое обновление прогресса.
func (s *rewardServiceImpl) qualifiedReaders(ctx context.Context, storyID uuid.UUID) (int, error) {
	if s.readerCache != nil {
		count, found, err := s.readerCache.Get(ctx, storyID)
		if err != nil {
			s.logger.Warn("Reader count cache unavailable", zap.Error(err))
		} else if found {
			return count, nil
		}
	}

	count, err := s.readingRepo.CountQualifiedReaders(ctx, s.db, storyID, models.MinReadPercentage)
	if err != nil {
		return 0, err
	}

	if s.readerCache != nil {
		if err := s.readerCache.Set(ctx, storyID, count); err != nil {
			s.logger.Warn("Failed to cache reader count", zap.Error(err))
		}
	}
	return count, nil
}

// ProcessReferral начисляет реферальные бонусы внутри транзакции регистрации.
func (s *rewardServiceImpl) ProcessReferral(ctx context.Context, tx interfaces.DBTX, referredUserID, referrerUserID uuid.UUID) error {
	// Приглашенному — одноразовый бонус
	referredProfile, err := s.userRepo.GetProfileForUpdate(ctx, tx, referredUserID)
	if err != nil {
		return err
	}
	if !referredProfile.ReferralRewarded {
		if _, err := s.ledger.AddCreditsTx(ctx, tx, referredUserID, models.ReferralReferredBonus,
			models.TransactionTypeBonus, descReferralWelcome, models.TransactionRefs{}); err != nil {
			return err
		}
		if err := s.userRepo.MarkReferralRewarded(ctx, tx, referredUserID); err != nil {
			return err
		}
	}

	// Пригласившему — бонус за каждого, в пределах месячного лимита
	earned, err := s.creditRepo.SumEarnedSince(ctx, tx, referrerUserID, descReferralPrefix, s.monthStart())
	if err != nil {
		return err
	}
	if earned >= models.ReferralMonthlyCap {
		s.logger.Debug("Referral monthly cap reached", zap.String("referrerID", referrerUserID.String()))
		return nil
	}

	desc := fmt.Sprintf("%s: invited user %s", descReferralPrefix, referredUserID)
	if _, err := s.ledger.AddCreditsTx(ctx, tx, referrerUserID, models.ReferralReferrerBonus,
		models.TransactionTypeEarned, desc, models.TransactionRefs{}); err != nil {
		return err
	}

	s.logger.Info("Referral rewards granted",
		zap.String("referredID", referredUserID.String()),
		zap.String("referrerID", referrerUserID.String()))
	return nil
}

// ProcessSocialShare начисляет кредит за шаринг истории.
// Награждается только шаринг собственной истории, не больше одного
// начисления в день на платформу и 5 кредитов в месяц.
func (s *rewardServiceImpl) ProcessSocialShare(ctx context.Context, userID, storyID uuid.UUID, platform string) (int, error) {
	if platform == "" {
		return 0, models.ErrInvalidInput
	}

	story, err := s.storyRepo.GetByID(ctx, s.db, storyID)
	if err != nil {
		return 0, err
	}
	if story.AuthorID != userID {
		return 0, ErrPermissionDenied
	}

	awarded := 0
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		shared, err := s.creditRepo.HasShareToday(ctx, tx, userID, platform, s.dayStart())
		if err != nil {
			return err
		}

		share := &models.SocialShare{
			ID:       uuid.New(),
			UserID:   userID,
			StoryID:  storyID,
			Platform: platform,
			SharedAt: s.now().UTC(),
		}
		if err := s.creditRepo.CreateSocialShare(ctx, tx, share); err != nil {
			return err
		}

		if shared {
			// Шаринг записан, но награда сегодня уже выдана
			return nil
		}

		earned, err := s.creditRepo.SumEarnedSince(ctx, tx, userID, descSharePrefix, s.monthStart())
		if err != nil {
			return err
		}
		if earned >= models.SocialShareMonthlyCap {
			s.logger.Debug("Social share monthly cap reached", zap.String("userID", userID.String()))
			return nil
		}

		desc := fmt.Sprintf("%s: %s", descSharePrefix, platform)
		if _, err := s.ledger.AddCreditsTx(ctx, tx, userID, models.SocialShareCredits,
			models.TransactionTypeEarned, desc, models.StoryRef(storyID)); err != nil {
			return err
		}
		awarded = models.SocialShareCredits
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to process social share",
			zap.String("userID", userID.String()), zap.String("platform", platform), zap.Error(err))
		return 0, err
	}
	return awarded, nil
}
