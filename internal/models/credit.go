package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType определяет источник движения кредитов.
type TransactionType string

const (
	TransactionTypePurchase TransactionType = "purchase" // Оплаченный пакет
	TransactionTypeEarned   TransactionType = "earned"   // Награды с месячными лимитами
	TransactionTypeSpent    TransactionType = "spent"
	TransactionTypeRefund   TransactionType = "refund"
	TransactionTypeBonus    TransactionType = "bonus" // Одноразовые бонусы без лимитов
)

// RewardRule — источник начисления для правил наград.
type RewardRule string

const (
	RewardWelcome     RewardRule = "welcome"
	RewardDailyLogin  RewardRule = "daily_login"
	RewardMilestone   RewardRule = "reading_milestone"
	RewardReferral    RewardRule = "referral"
	RewardSocialShare RewardRule = "social_share"
)

// Суммы и месячные лимиты правил наград.
const (
	WelcomeBonusCredits = 10

	DailyLoginCredits      = 1
	DailyLoginMonthlyCap   = 15
	MilestoneMonthlyCap    = 50
	ReferralReferredBonus  = 5 // Одноразово приглашенному
	ReferralReferrerBonus  = 3 // Пригласившему за каждого
	ReferralMonthlyCap     = 30
	SocialShareCredits     = 1
	SocialShareMonthlyCap  = 5
	PersonalChapterCredits = 1 // Стоимость генерации главы личной истории
)

// MilestoneThresholds — пороги читателей, за которые автор получает награду.
// Читатель засчитывается при прочтении >= 60% главы.
var MilestoneThresholds = []struct {
	Readers int
	Credits int
}{
	{10, 1},
	{50, 5},
	{100, 12},
	{500, 75},
	{1000, 200},
}

// CreditTransaction — строка аудита движения кредитов.
// Amount знаковый: начисления положительные, списания отрицательные,
// так что сумма строк пользователя равна его балансу.
// BalanceAfter фиксирует баланс после применения операции.
type CreditTransaction struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	UserID       uuid.UUID       `json:"user_id" db:"user_id"`
	Amount       int             `json:"amount" db:"amount"`
	Type         TransactionType `json:"type" db:"type"`
	Description  string          `json:"description" db:"description"`
	StoryID      *uuid.UUID      `json:"story_id,omitempty" db:"story_id"`
	ChapterID    *uuid.UUID      `json:"chapter_id,omitempty" db:"chapter_id"`
	BalanceAfter int             `json:"balance_after" db:"balance_after"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// TransactionRefs — необязательные ссылки операции на историю и главу.
type TransactionRefs struct {
	StoryID   *uuid.UUID
	ChapterID *uuid.UUID
}

// StoryRef — ссылка только на историю.
func StoryRef(storyID uuid.UUID) TransactionRefs {
	return TransactionRefs{StoryID: &storyID}
}

// CreditPackage — пакет кредитов, доступный для покупки.
type CreditPackage struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Credits      int       `json:"credits" db:"credits"`
	BonusCredits int       `json:"bonus_credits" db:"bonus_credits"`
	PriceCents   int       `json:"price_cents" db:"price_cents"`
	Currency     string    `json:"currency" db:"currency"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	SortOrder    int       `json:"sort_order" db:"sort_order"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// TotalCredits — сколько кредитов получит покупатель пакета.
func (p *CreditPackage) TotalCredits() int {
	return p.Credits + p.BonusCredits
}

// SocialShare — факт шаринга истории в соцсети.
// Награда выдается раз в день на платформу.
type SocialShare struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	StoryID   uuid.UUID `json:"story_id" db:"story_id"`
	Platform  string    `json:"platform" db:"platform"`
	SharedAt  time.Time `json:"shared_at" db:"shared_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
