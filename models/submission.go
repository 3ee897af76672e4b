package models

// RoundInput is one round as reported by the client. Track fields are opaque.
type RoundInput struct {
	RoundNumber  int    `json:"round_number"`
	TrackID      string `json:"track_id"`
	TrackTitle   string `json:"track_title"`
	TrackArtist  string `json:"track_artist"`
	TrackAlbum   string `json:"track_album"`
	PreviewURL   string `json:"preview_url"`
	UserGuess    string `json:"user_guess"`
	IsCorrect    bool   `json:"is_correct"`
	TimeTakenMs  int    `json:"time_taken_ms"`
	PointsEarned int    `json:"points_earned"`
}

// ScoreSubmission is the finished-game payload accepted by the coordinator.
type ScoreSubmission struct {
	TotalRounds    int          `json:"total_rounds"`
	CorrectAnswers int          `json:"correct_answers"`
	Score          int          `json:"score"`
	GameMode       string       `json:"game_mode"`
	Rounds         []RoundInput `json:"rounds"`
	IdempotencyKey string       `json:"idempotency_key,omitempty"`
}

// GameSnapshot is what the achievement evaluator knows about the game just played.
type GameSnapshot struct {
	Score          int
	Accuracy       float64
	TotalRounds    int
	CorrectAnswers int
	CurrentStreak  int
}

// StreakSummary is the streak block of a submission response.
type StreakSummary struct {
	CurrentStreak   int  `json:"current_streak"`
	LongestStreak   int  `json:"longest_streak"`
	StreakContinued bool `json:"streak_continued"`
}

// SubmitResult is returned by a score submission. The *_degraded flags report
// secondary effects that failed after the score was committed.
type SubmitResult struct {
	SessionID            uint              `json:"session_id"`
	LeaderboardPosition  int64             `json:"leaderboard_position"`
	PersonalBest         bool              `json:"personal_best"`
	Streak               StreakSummary     `json:"streak"`
	StreakDegraded       bool              `json:"streak_degraded"`
	NewAchievements      []AchievementView `json:"new_achievements"`
	AchievementCount     int               `json:"achievement_count"`
	AchievementsDegraded bool              `json:"achievements_degraded"`
	Replayed             bool              `json:"replayed,omitempty"`
}
