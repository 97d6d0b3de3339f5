package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

const (
	createUserQuery = `
        INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NOW(), NOW())`

	getUserByIDQuery = `
        SELECT id, username, email, password_hash, created_at, updated_at
        FROM users WHERE id = $1`

	getUserByUsernameQuery = `
        SELECT id, username, email, password_hash, created_at, updated_at
        FROM users WHERE username = $1`

	createProfileQuery = `
        INSERT INTO user_profiles (user_id, credits, total_purchased, total_earned, total_used, consecutive_days, last_login_date, referral_code, referred_by_user_id, referral_rewarded, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())`

	getProfileQuery = `
        SELECT user_id, credits, total_purchased, total_earned, total_used, consecutive_days, last_login_date, referral_code, referred_by_user_id, referral_rewarded, created_at, updated_at
        FROM user_profiles WHERE user_id = $1`

	getProfileForUpdateQuery = getProfileQuery + ` FOR UPDATE`

	getProfileByReferralCodeQuery = `
        SELECT user_id, credits, total_purchased, total_earned, total_used, consecutive_days, last_login_date, referral_code, referred_by_user_id, referral_rewarded, created_at, updated_at
        FROM user_profiles WHERE referral_code = $1`

	updateCreditsQuery = `
        UPDATE user_profiles
        SET credits = $2, total_purchased = $3, total_earned = $4, total_used = $5, updated_at = NOW()
        WHERE user_id = $1`

	updateLoginStreakQuery = `
        UPDATE user_profiles SET consecutive_days = $2, last_login_date = $3, updated_at = NOW()
        WHERE user_id = $1`

	markReferralRewardedQuery = `UPDATE user_profiles SET referral_rewarded = TRUE, updated_at = NOW() WHERE user_id = $1`
)

// pgUserRepository реализует интерфейс UserRepository для PostgreSQL.
type pgUserRepository struct {
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.UserRepository = (*pgUserRepository)(nil)

// NewPgUserRepository создает новый экземпляр репозитория пользователей.
func NewPgUserRepository(logger *zap.Logger) interfaces.UserRepository {
	return &pgUserRepository{logger: logger.Named("PgUserRepo")}
}

// CreateUser сохраняет пользователя.
func (r *pgUserRepository) CreateUser(ctx context.Context, querier interfaces.DBTX, user *models.User) error {
	log := r.logger.With(zap.String("username", user.Username))

	_, err := querier.Exec(ctx, createUserQuery, user.ID, user.Username, user.Email, user.PasswordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			// Различаем конфликт по имени и по email через имя констрейнта
			if strings.Contains(pgErr.ConstraintName, "email") {
				log.Warn("Email already exists")
				return models.ErrEmailAlreadyExists
			}
			log.Warn("Username already exists")
			return models.ErrUserAlreadyExists
		}
		log.Error("Failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("User created", zap.String("userID", user.ID.String()))
	return nil
}

// GetUserByID возвращает пользователя по ID.
func (r *pgUserRepository) GetUserByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := pgxscan.Get(ctx, querier, &user, getUserByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by ID", zap.String("userID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return &user, nil
}

// GetUserByUsername возвращает пользователя по имени.
func (r *pgUserRepository) GetUserByUsername(ctx context.Context, querier interfaces.DBTX, username string) (*models.User, error) {
	var user models.User
	err := pgxscan.Get(ctx, querier, &user, getUserByUsernameQuery, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by username", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

// CreateProfile создает профиль пользователя.
func (r *pgUserRepository) CreateProfile(ctx context.Context, querier interfaces.DBTX, profile *models.UserProfile) error {
	_, err := querier.Exec(ctx, createProfileQuery,
		profile.UserID, profile.Credits, profile.TotalPurchased, profile.TotalEarned, profile.TotalUsed,
		profile.ConsecutiveDays, profile.LastLoginDate,
		profile.ReferralCode, profile.ReferredByUserID, profile.ReferralRewarded)
	if err != nil {
		r.logger.Error("Failed to create user profile", zap.String("userID", profile.UserID.String()), zap.Error(err))
		return fmt.Errorf("failed to create user profile: %w", err)
	}
	return nil
}

// GetProfile возвращает профиль пользователя.
func (r *pgUserRepository) GetProfile(ctx context.Context, querier interfaces.DBTX, userID uuid.UUID) (*models.UserProfile, error) {
	return r.getProfile(ctx, querier, getProfileQuery, userID)
}

// GetProfileForUpdate возвращает профиль с блокировкой строки.
func (r *pgUserRepository) GetProfileForUpdate(ctx context.Context, querier interfaces.DBTX, userID uuid.UUID) (*models.UserProfile, error) {
	return r.getProfile(ctx, querier, getProfileForUpdateQuery, userID)
}

func (r *pgUserRepository) getProfile(ctx context.Context, querier interfaces.DBTX, query string, userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := pgxscan.Get(ctx, querier, &profile, query, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user profile", zap.String("userID", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return &profile, nil
}

// GetProfileByReferralCode возвращает профиль по реферальному коду.
func (r *pgUserRepository) GetProfileByReferralCode(ctx context.Context, querier interfaces.DBTX, code string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := pgxscan.Get(ctx, querier, &profile, getProfileByReferralCodeQuery, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get profile by referral code", zap.Error(err))
		return nil, fmt.Errorf("failed to get profile by referral code: %w", err)
	}
	return &profile, nil
}

// UpdateCredits записывает баланс кредитов и накопительные счетчики профиля.
func (r *pgUserRepository) UpdateCredits(ctx context.Context, querier interfaces.DBTX, profile *models.UserProfile) error {
	commandTag, err := querier.Exec(ctx, updateCreditsQuery,
		profile.UserID, profile.Credits, profile.TotalPurchased, profile.TotalEarned, profile.TotalUsed)
	if err != nil {
		r.logger.Error("Failed to update credits", zap.String("userID", profile.UserID.String()), zap.Error(err))
		return fmt.Errorf("failed to update credits: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// UpdateLoginStreak записывает состояние серии ежедневных входов.
func (r *pgUserRepository) UpdateLoginStreak(ctx context.Context, querier interfaces.DBTX, profile *models.UserProfile) error {
	commandTag, err := querier.Exec(ctx, updateLoginStreakQuery,
		profile.UserID, profile.ConsecutiveDays, profile.LastLoginDate)
	if err != nil {
		r.logger.Error("Failed to update login streak", zap.String("userID", profile.UserID.String()), zap.Error(err))
		return fmt.Errorf("failed to update login streak: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// MarkReferralRewarded помечает, что одноразовый реферальный бонус выдан.
func (r *pgUserRepository) MarkReferralRewarded(ctx context.Context, querier interfaces.DBTX, userID uuid.UUID) error {
	commandTag, err := querier.Exec(ctx, markReferralRewardedQuery, userID)
	if err != nil {
		r.logger.Error("Failed to mark referral rewarded", zap.String("userID", userID.String()), zap.Error(err))
		return fmt.Errorf("failed to mark referral rewarded: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}
