package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionStatus is the lifecycle state of a game session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// GameSession is one completed play-through. Rows are written once with status
// completed and never updated afterwards.
type GameSession struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	UserID         uint          `gorm:"index;uniqueIndex:idx_session_idempotency,priority:1;not null" json:"user_id"`
	IdempotencyKey *string       `gorm:"size:128;uniqueIndex:idx_session_idempotency,priority:2" json:"-"`
	StartedAt      time.Time     `gorm:"not null" json:"started_at"`
	EndedAt        *time.Time    `json:"ended_at"`
	TotalRounds    int           `gorm:"not null" json:"total_rounds"`
	CorrectAnswers int           `gorm:"not null" json:"correct_answers"`
	Score          int           `gorm:"not null" json:"score"`
	GameMode       string        `gorm:"size:64;index;not null" json:"game_mode"`
	Status         SessionStatus `gorm:"size:16;not null;default:'completed'" json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	Rounds         []GameRound   `gorm:"foreignKey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"rounds,omitempty"`
}

// BeforeCreate fills timestamps the caller did not provide.
func (s *GameSession) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if s.StartedAt.IsZero() {
		s.StartedAt = now
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.Status == "" {
		s.Status = SessionCompleted
	}
	return nil
}

// GameRound is a single question inside a session.
type GameRound struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SessionID    uint      `gorm:"index;not null" json:"session_id"`
	RoundNumber  int       `gorm:"not null" json:"round_number"`
	TrackID      string    `gorm:"size:64" json:"track_id"`
	TrackTitle   string    `gorm:"size:255" json:"track_title"`
	TrackArtist  string    `gorm:"size:255" json:"track_artist"`
	TrackAlbum   string    `gorm:"size:255" json:"track_album"`
	PreviewURL   string    `gorm:"size:512" json:"preview_url"`
	UserGuess    string    `gorm:"size:255" json:"user_guess"`
	IsCorrect    bool      `gorm:"not null;default:false" json:"is_correct"`
	TimeTakenMs  int       `gorm:"not null;default:0" json:"time_taken_ms"`
	PointsEarned int       `gorm:"not null;default:0" json:"points_earned"`
	CreatedAt    time.Time `json:"created_at"`
}
