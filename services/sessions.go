package services

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/cppla/beatguess/models"
)

// SessionService reads a user's finished games.
type SessionService struct {
	db *gorm.DB
}

// NewSessionService creates a new SessionService.
func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db}
}

// History returns one page of the user's sessions, newest first.
func (s *SessionService) History(ctx context.Context, userID uint, page, pageSize int) ([]models.GameSession, int64, error) {
	var total int64
	q := s.db.WithContext(ctx).Model(&models.GameSession{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sessions := make([]models.GameSession, 0, pageSize)
	err := q.Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&sessions).Error
	return sessions, total, err
}

// Get returns one session with its rounds. Sessions of other users are reported
// as not found.
func (s *SessionService) Get(ctx context.Context, userID, sessionID uint) (*models.GameSession, error) {
	var session models.GameSession
	err := s.db.WithContext(ctx).
		Preload("Rounds", func(db *gorm.DB) *gorm.DB {
			return db.Order("round_number ASC")
		}).
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "session", Key: strconv.FormatUint(uint64(sessionID), 10)}
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}
