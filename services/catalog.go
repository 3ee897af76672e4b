package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/beatguess/models"
)

// DefaultAchievements is the built-in catalog.
var DefaultAchievements = []models.AchievementDefinition{
	{Code: "FIRST_GAME", Name: "First Note", Description: "Finish your first game", Icon: "🎵",
		ConditionType: models.ConditionGames, ThresholdType: models.ThresholdTotal, ThresholdValue: 1, Points: 10},
	{Code: "GAMES_10", Name: "Regular Listener", Description: "Finish 10 games", Icon: "🎧",
		ConditionType: models.ConditionGames, ThresholdType: models.ThresholdTotal, ThresholdValue: 10, Points: 25},
	{Code: "GAMES_50", Name: "Heavy Rotation", Description: "Finish 50 games", Icon: "📻",
		ConditionType: models.ConditionGames, ThresholdType: models.ThresholdTotal, ThresholdValue: 50, Points: 50},
	{Code: "GAMES_100", Name: "Platinum Record", Description: "Finish 100 games", Icon: "💿",
		ConditionType: models.ConditionGames, ThresholdType: models.ThresholdTotal, ThresholdValue: 100, Points: 100},
	{Code: "SCORE_500", Name: "Warm Up", Description: "Score 500 points in a single game", Icon: "🔥",
		ConditionType: models.ConditionScore, ThresholdType: models.ThresholdSingleGame, ThresholdValue: 500, Points: 15},
	{Code: "SCORE_1000", Name: "Chart Topper", Description: "Score 1000 points in a single game", Icon: "🏆",
		ConditionType: models.ConditionScore, ThresholdType: models.ThresholdSingleGame, ThresholdValue: 1000, Points: 40},
	{Code: "TOTAL_SCORE_10000", Name: "Gold Record", Description: "Collect 10000 points across all games", Icon: "🥇",
		ConditionType: models.ConditionScore, ThresholdType: models.ThresholdTotal, ThresholdValue: 10000, Points: 50},
	{Code: "ACCURACY_80", Name: "Sharp Ear", Description: "Reach 80% accuracy in a single game", Icon: "👂",
		ConditionType: models.ConditionAccuracy, ThresholdType: models.ThresholdSingleGame, ThresholdValue: 80, Points: 20},
	{Code: "ACCURACY_100", Name: "Perfect Pitch", Description: "Answer every round correctly in a game", Icon: "🎯",
		ConditionType: models.ConditionAccuracy, ThresholdType: models.ThresholdSingleGame, ThresholdValue: 100, Points: 50},
	{Code: "STREAK_3", Name: "On Repeat", Description: "Play 3 days in a row", Icon: "🔁",
		ConditionType: models.ConditionStreak, ThresholdType: models.ThresholdTotal, ThresholdValue: 3, Points: 15},
	{Code: "STREAK_7", Name: "Weekly Rotation", Description: "Play 7 days in a row", Icon: "📅",
		ConditionType: models.ConditionStreak, ThresholdType: models.ThresholdTotal, ThresholdValue: 7, Points: 35},
	{Code: "STREAK_30", Name: "Residency", Description: "Play 30 days in a row", Icon: "🏟️",
		ConditionType: models.ConditionStreak, ThresholdType: models.ThresholdTotal, ThresholdValue: 30, Points: 100},
	{Code: "ROUNDS_100", Name: "Crate Digger", Description: "Play 100 rounds", Icon: "📦",
		ConditionType: models.ConditionRounds, ThresholdType: models.ThresholdTotal, ThresholdValue: 100, Points: 20},
	{Code: "ROUNDS_1000", Name: "Encyclopedia", Description: "Play 1000 rounds", Icon: "📚",
		ConditionType: models.ConditionRounds, ThresholdType: models.ThresholdTotal, ThresholdValue: 1000, Points: 75},
}

// supportedRules lists every (condition, threshold) pair the evaluator can measure.
var supportedRules = map[models.ConditionType]map[models.ThresholdType]bool{
	models.ConditionScore:    {models.ThresholdSingleGame: true, models.ThresholdTotal: true},
	models.ConditionGames:    {models.ThresholdTotal: true},
	models.ConditionAccuracy: {models.ThresholdSingleGame: true, models.ThresholdTotal: true},
	models.ConditionStreak:   {models.ThresholdTotal: true},
	models.ConditionRounds:   {models.ThresholdSingleGame: true, models.ThresholdTotal: true},
}

// Catalog is the validated, read-only set of achievement definitions.
type Catalog struct {
	defs   []models.AchievementDefinition
	byCode map[string]int
}

// NewCatalog validates defs. Every definition needs a unique code, a positive
// threshold and a supported rule, so evaluation never divides by zero or meets
// an unknown condition.
func NewCatalog(defs []models.AchievementDefinition) (*Catalog, error) {
	c := &Catalog{byCode: make(map[string]int, len(defs))}
	for _, d := range defs {
		if d.Code == "" {
			return nil, fmt.Errorf("achievement %q: empty code", d.Name)
		}
		if _, dup := c.byCode[d.Code]; dup {
			return nil, fmt.Errorf("achievement %s: duplicate code", d.Code)
		}
		if d.ThresholdValue <= 0 {
			return nil, fmt.Errorf("achievement %s: threshold must be > 0", d.Code)
		}
		if !supportedRules[d.ConditionType][d.ThresholdType] {
			return nil, fmt.Errorf("achievement %s: unsupported rule %s/%s", d.Code, d.ConditionType, d.ThresholdType)
		}
		c.byCode[d.Code] = len(c.defs)
		c.defs = append(c.defs, d)
	}
	return c, nil
}

// Sync upserts the catalog into the achievements table keyed by code and
// records the database ids on the in-memory definitions.
func (c *Catalog) Sync(ctx context.Context, db *gorm.DB) error {
	if len(c.defs) == 0 {
		return nil
	}
	rows := make([]models.AchievementDefinition, len(c.defs))
	codes := make([]string, len(c.defs))
	for i, d := range c.defs {
		d.ID = 0
		rows[i] = d
		codes[i] = d.Code
	}

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "description", "icon", "condition_type", "threshold_type", "threshold_value", "points",
		}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("sync achievements: %w", err)
	}

	var stored []models.AchievementDefinition
	if err := db.WithContext(ctx).Where("code IN ?", codes).Find(&stored).Error; err != nil {
		return fmt.Errorf("reload achievements: %w", err)
	}
	for _, row := range stored {
		if i, ok := c.byCode[row.Code]; ok {
			c.defs[i].ID = row.ID
		}
	}
	for _, d := range c.defs {
		if d.ID == 0 {
			return fmt.Errorf("achievement %s missing after sync", d.Code)
		}
	}
	return nil
}

// Definitions returns a copy of the catalog in declaration order.
func (c *Catalog) Definitions() []models.AchievementDefinition {
	out := make([]models.AchievementDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

// ByCode looks a definition up by its code.
func (c *Catalog) ByCode(code string) (models.AchievementDefinition, error) {
	i, ok := c.byCode[code]
	if !ok {
		return models.AchievementDefinition{}, &NotFoundError{Resource: "achievement", Key: code}
	}
	return c.defs[i], nil
}
