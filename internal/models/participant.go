package models

import "time"

// Participant is a canonical contertulio identity in the registry
type Participant struct {
	ID        uint                 `json:"-" gorm:"primaryKey"`
	Canonical string               `json:"canonical" gorm:"uniqueIndex;not null"`
	Variants  []ParticipantVariant `json:"variants,omitempty" gorm:"foreignKey:ParticipantID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time            `json:"created_at"`
}

// ParticipantVariant is one raw spelling observed for a participant
type ParticipantVariant struct {
	ID            uint      `json:"-" gorm:"primaryKey"`
	ParticipantID uint      `json:"-" gorm:"uniqueIndex:idx_participant_variant;not null"`
	Raw           string    `json:"raw" gorm:"uniqueIndex:idx_participant_variant;not null"`
	CreatedAt     time.Time `json:"created_at"`
}

// NameCandidate is one registry entry considered for a raw name
type NameCandidate struct {
	Canonical string  `json:"canonical"`
	Score     float64 `json:"score"`
	Variants  int     `json:"variants"`
}

// NameDecision is the audit record of one normalization outcome
// that was not an exact match.
type NameDecision struct {
	ID         string          `json:"id" gorm:"primaryKey"`
	Raw        string          `json:"raw" gorm:"index"`
	Cleaned    string          `json:"cleaned"`
	Canonical  string          `json:"canonical" gorm:"index"`
	Outcome    string          `json:"outcome" gorm:"index"`
	Reason     string          `json:"reason"`
	Candidates []NameCandidate `json:"candidates,omitempty" gorm:"serializer:json"`
	CreatedAt  time.Time       `json:"created_at"`
}
