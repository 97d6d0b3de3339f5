package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// User represents a user in the system.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"` // Не отдаем хеш пароля
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// UserProfile хранит баланс кредитов и состояние наград пользователя.
// Создается вместе с пользователем (welcome-бонус начисляется при регистрации).
type UserProfile struct {
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	Credits          int        `json:"credits" db:"credits"`
	TotalPurchased   int        `json:"total_purchased" db:"total_purchased"`   // Куплено за все время
	TotalEarned      int        `json:"total_earned" db:"total_earned"`         // Начислено наградами и бонусами
	TotalUsed        int        `json:"total_used" db:"total_used"`             // Потрачено за все время
	ConsecutiveDays  int        `json:"consecutive_days" db:"consecutive_days"` // Длина текущей серии ежедневных входов
	LastLoginDate    *time.Time `json:"last_login_date,omitempty" db:"last_login_date"`
	ReferralCode     string     `json:"referral_code" db:"referral_code"`
	ReferredByUserID *uuid.UUID `json:"referred_by_user_id,omitempty" db:"referred_by_user_id"`
	ReferralRewarded bool       `json:"referral_rewarded" db:"referral_rewarded"` // Одноразовый бонус +5 уже выдан
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// Claims представляет стандартные поля JWT и пользовательские данные,
// которые мы хотим включить в токен.
type Claims struct {
	UserID               uuid.UUID `json:"user_id"`
	Username             string    `json:"username"`
	jwt.RegisteredClaims           // Встраиваем стандартные поля: Issuer, Subject, ExpiresAt, IssuedAt и т.д.
}

// TokenPair — пара access/refresh токенов, выдаваемая при логине.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
