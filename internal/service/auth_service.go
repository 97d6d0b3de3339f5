package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

// AuthService отвечает за регистрацию, вход и выпуск токенов.
type AuthService interface {
	Register(ctx context.Context, username, email, password, referralCode string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
}

// TokenVerifier проверяет токен и возвращает его claims.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, tokenString string) (*models.Claims, error)
}

// AuthConfig — параметры выпуска токенов.
type AuthConfig struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type authServiceImpl struct {
	db        interfaces.DBTX
	txManager interfaces.TxManager
	userRepo  interfaces.UserRepository
	rewards   RewardService
	verifier  TokenVerifier
	cfg       AuthConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(
	db interfaces.DBTX,
	txManager interfaces.TxManager,
	userRepo interfaces.UserRepository,
	rewards RewardService,
	verifier TokenVerifier,
	cfg AuthConfig,
	logger *zap.Logger,
) AuthService {
	return &authServiceImpl{
		db:        db,
		txManager: txManager,
		userRepo:  userRepo,
		rewards:   rewards,
		verifier:  verifier,
		cfg:       cfg,
		logger:    logger.Named("AuthService"),
		now:       time.Now,
	}
}

// Register создает пользователя с профилем, начисляет welcome-бонус
// и применяет реферальные бонусы, если указан код приглашения.
// Все идет в одной транзакции: либо пользователь создан целиком, либо никак.
func (s *authServiceImpl) Register(ctx context.Context, username, email, password, referralCode string) (*models.User, error) {
	if username == "" || email == "" || len(password) < 8 {
		return nil, models.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, ErrInternal
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		// Код приглашения проверяем до создания строк
		var referrer *models.UserProfile
		if referralCode != "" {
			referrer, err = s.userRepo.GetProfileByReferralCode(ctx, tx, referralCode)
			if err != nil {
				if errors.Is(err, models.ErrUserNotFound) {
					// Неверный код не должен блокировать регистрацию
					s.logger.Warn("Unknown referral code at registration", zap.String("code", referralCode))
					referrer = nil
				} else {
					return err
				}
			}
		}

		if err := s.userRepo.CreateUser(ctx, tx, user); err != nil {
			return err
		}

		profile := &models.UserProfile{
			UserID:       user.ID,
			ReferralCode: newReferralCode(),
		}
		if referrer != nil {
			id := referrer.UserID
			profile.ReferredByUserID = &id
		}
		if err := s.userRepo.CreateProfile(ctx, tx, profile); err != nil {
			return err
		}

		if err := s.rewards.GrantWelcomeBonus(ctx, tx, user.ID); err != nil {
			return err
		}

		if referrer != nil {
			if err := s.rewards.ProcessReferral(ctx, tx, user.ID, referrer.UserID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if !errors.Is(err, models.ErrUserAlreadyExists) && !errors.Is(err, models.ErrEmailAlreadyExists) {
			s.logger.Error("Failed to register user", zap.String("username", username), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("userID", user.ID.String()),
		zap.String("username", username),
		zap.Bool("referred", referralCode != ""))
	return user, nil
}

// Login проверяет учетные данные, выдает пару токенов и засчитывает
// ежедневный вход.
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*models.TokenPair, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, s.db, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(user)
	if err != nil {
		s.logger.Error("Failed to issue tokens", zap.String("userID", user.ID.String()), zap.Error(err))
		return nil, ErrInternal
	}

	// Награда за вход не должна блокировать логин
	if _, err := s.rewards.ProcessDailyLogin(ctx, user.ID); err != nil {
		s.logger.Error("Failed to process daily login reward",
			zap.String("userID", user.ID.String()), zap.Error(err))
	}

	s.logger.Info("User logged in", zap.String("userID", user.ID.String()))
	return pair, nil
}

// Refresh обменивает действительный refresh-токен на новую пару токенов.
func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	claims, err := s.verifier.VerifyToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	// Пользователь мог быть удален после выдачи токена
	user, err := s.userRepo.GetUserByID(ctx, s.db, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrTokenInvalid
		}
		return nil, err
	}

	pair, err := s.issueTokenPair(user)
	if err != nil {
		s.logger.Error("Failed to issue tokens on refresh", zap.String("userID", user.ID.String()), zap.Error(err))
		return nil, ErrInternal
	}
	return pair, nil
}

// GetProfile возвращает профиль пользователя.
func (s *authServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	return s.userRepo.GetProfile(ctx, s.db, userID)
}

// issueTokenPair подписывает access- и refresh-токены с разным временем жизни.
func (s *authServiceImpl) issueTokenPair(user *models.User) (*models.TokenPair, error) {
	access, err := s.signToken(user, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signToken(user, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authServiceImpl) signToken(user *models.User, ttl time.Duration) (string, error) {
	now := s.now()
	claims := models.Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// newReferralCode генерирует короткий код приглашения.
func newReferralCode() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand практически не падает; запасной вариант — от UUID
		return uuid.NewString()[:8]
	}
	return hex.EncodeToString(buf)
}
