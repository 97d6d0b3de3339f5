package models

import "time"

// SiteSetting — настройка процесса, хранящаяся в БД и кэшируемая в памяти.
// Обновления рассылаются через fanout-обменник, чтобы все инстансы перечитали кэш.
type SiteSetting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Ключи настроек, используемые кодом.
const (
	SettingKeyBetaMode         = "site.beta_mode"
	SettingKeyDefaultVotesNeed = "stories.votes_needed"
	SettingKeyGenerationModel  = "ai.model"
)
