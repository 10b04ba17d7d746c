package model

import (
	"fmt"
	"slices"
	"strings"
)

const (
	StartingLocation   = "新手村"
	DefaultMaxStat     = 100
	ExperiencePerLevel = 100
	LevelUpStatGain    = 2
)

// Persisted field names. Renaming any of them breaks loading of existing saves.
const (
	FieldPlayerName     = "player_name"
	FieldPlayerClass    = "player_class"
	FieldClassCatalog   = "valid_classes"
	FieldLocation       = "location"
	FieldExperience     = "experience"
	FieldLevel          = "level"
	FieldGold           = "gold"
	FieldInventory      = "inventory"
	FieldCompletedTasks = "completed_tasks"
	FieldQuests         = "quests"
	FieldStats          = "stats"
	FieldMaxStats       = "max_stats"
)

// RequiredFields must all be present in a persisted record.
var RequiredFields = []string{
	FieldPlayerName,
	FieldPlayerClass,
	FieldClassCatalog,
	FieldLocation,
	FieldExperience,
	FieldLevel,
	FieldGold,
	FieldInventory,
	FieldCompletedTasks,
	FieldQuests,
	FieldStats,
	FieldMaxStats,
}

// PlayerState is the single persisted record of one player.
type PlayerState struct {
	PlayerName     string       `json:"player_name"`
	PlayerClass    string       `json:"player_class"`
	ClassCatalog   ClassCatalog `json:"valid_classes"`
	Location       string       `json:"location"`
	Experience     int          `json:"experience"`
	Level          int          `json:"level"`
	Gold           int          `json:"gold"`
	Inventory      []string     `json:"inventory"`
	CompletedTasks []string     `json:"completed_tasks"`
	Quests         []string     `json:"quests"`
	Stats          StatTriple   `json:"stats"`
	MaxStats       StatTriple   `json:"max_stats"`
}

// DefaultMaxStats returns the cap used for new characters.
func DefaultMaxStats() StatTriple {
	return StatTriple{Attack: DefaultMaxStat, Defense: DefaultMaxStat, Magic: DefaultMaxStat}
}

// NewPlayerState creates a level 1 character of the given class.
// The catalog is snapshotted into the state.
func NewPlayerState(name, class string, catalog ClassCatalog) (*PlayerState, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: player name is empty", ErrInvalidInput)
	}
	stats, ok := catalog.Stats(class)
	if !ok {
		return nil, fmt.Errorf("%w: unknown class '%s'", ErrInvalidInput, class)
	}
	maxStats := DefaultMaxStats()
	return &PlayerState{
		PlayerName:     name,
		PlayerClass:    class,
		ClassCatalog:   catalog.Clone(),
		Location:       StartingLocation,
		Experience:     0,
		Level:          1,
		Gold:           0,
		Inventory:      []string{},
		CompletedTasks: []string{},
		Quests:         []string{},
		Stats:          stats.Clamp(maxStats),
		MaxStats:       maxStats,
	}, nil
}

// ExperienceToNextLevel is the experience threshold of the current level.
func (s *PlayerState) ExperienceToNextLevel() int {
	return s.Level * ExperiencePerLevel
}

// HasQuest reports whether quest is already open.
func (s *PlayerState) HasQuest(quest string) bool {
	return slices.Contains(s.Quests, quest)
}

// Normalize replaces nil lists with empty ones so the record never serialises null lists.
func (s *PlayerState) Normalize() {
	if s.Inventory == nil {
		s.Inventory = []string{}
	}
	if s.CompletedTasks == nil {
		s.CompletedTasks = []string{}
	}
	if s.Quests == nil {
		s.Quests = []string{}
	}
	if s.ClassCatalog.Classes == nil {
		s.ClassCatalog = NewClassCatalog()
	}
}

// Clone returns a deep copy.
func (s *PlayerState) Clone() *PlayerState {
	c := *s
	c.ClassCatalog = s.ClassCatalog.Clone()
	c.Inventory = slices.Clone(s.Inventory)
	c.CompletedTasks = slices.Clone(s.CompletedTasks)
	c.Quests = slices.Clone(s.Quests)
	c.Normalize()
	return &c
}

// Validate checks the numeric and list invariants of a state.
// Experience above the level threshold is accepted; the next update levels it down.
func (s *PlayerState) Validate() error {
	if strings.TrimSpace(s.PlayerName) == "" {
		return fmt.Errorf("%w: empty player name", ErrInvalidInput)
	}
	if s.Level < 1 {
		return fmt.Errorf("%w: level %d below 1", ErrInvalidInput, s.Level)
	}
	if s.Experience < 0 || s.Gold < 0 {
		return fmt.Errorf("%w: negative experience or gold", ErrInvalidInput)
	}
	if !s.MaxStats.WithinBounds(s.MaxStats) {
		return fmt.Errorf("%w: max stats %v below %d", ErrInvalidInput, s.MaxStats, MinStat)
	}
	if !s.Stats.WithinBounds(s.MaxStats) {
		return fmt.Errorf("%w: stats %v outside [%d, max %v]", ErrInvalidInput, s.Stats, MinStat, s.MaxStats)
	}
	for field, list := range map[string][]string{
		FieldInventory:      s.Inventory,
		FieldCompletedTasks: s.CompletedTasks,
		FieldQuests:         s.Quests,
	} {
		if slices.Contains(list, "") {
			return fmt.Errorf("%w: empty entry in %s", ErrInvalidInput, field)
		}
	}
	return nil
}
