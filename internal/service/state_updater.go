package service

import (
	"fmt"
	"slices"

	"text-adventure/internal/model"

	"go.uber.org/zap"
)

// ApplyResult summarises what an update changed, for display.
type ApplyResult struct {
	LevelsGained    int
	NewLevel        int
	ItemsAdded      []string
	QuestsAdded     []string
	LocationChanged bool
}

// QuestResolution is a quest taken out of the open list while its outcome is being narrated.
type QuestResolution struct {
	Quest string
	// Index is the 0-based position the quest occupied.
	Index int
}

// StateUpdater is the only component that mutates a PlayerState.
type StateUpdater struct {
	logger *zap.Logger
}

func NewStateUpdater(logger *zap.Logger) *StateUpdater {
	return &StateUpdater{logger: logger.Named("StateUpdater")}
}

// Apply merges a delta into the state in place.
// Order: experience, leveling, gold, items, location, quests. Stat boosts are ignored here.
func (u *StateUpdater) Apply(state *model.PlayerState, delta model.Delta) ApplyResult {
	state.Normalize()
	res := ApplyResult{}

	if delta.Experience > 0 {
		state.Experience = model.SaturatingAdd(state.Experience, delta.Experience)
	}
	res.LevelsGained = u.levelUp(state)
	res.NewLevel = state.Level

	if delta.Gold > 0 {
		state.Gold = model.SaturatingAdd(state.Gold, delta.Gold)
	}

	for _, item := range delta.Items {
		if item == "" {
			continue
		}
		state.Inventory = append(state.Inventory, item)
		res.ItemsAdded = append(res.ItemsAdded, item)
	}

	if delta.Location != "" && delta.Location != state.Location {
		state.Location = delta.Location
		res.LocationChanged = true
	}

	for _, quest := range delta.Quests {
		if quest == "" || state.HasQuest(quest) {
			continue
		}
		state.Quests = append(state.Quests, quest)
		res.QuestsAdded = append(res.QuestsAdded, quest)
	}

	if res.LevelsGained > 0 {
		u.logger.Info("Player leveled up",
			zap.String("player", state.PlayerName),
			zap.Int("levelsGained", res.LevelsGained),
			zap.Int("level", state.Level),
		)
	}
	u.logger.Debug("Delta applied",
		zap.String("player", state.PlayerName),
		zap.Int("experience", delta.Experience),
		zap.Int("gold", delta.Gold),
		zap.Strings("items", res.ItemsAdded),
		zap.Strings("quests", res.QuestsAdded),
		zap.Bool("locationChanged", res.LocationChanged),
	)
	return res
}

// levelUp converts experience into levels until it falls below the current threshold.
// Every level adds LevelUpStatGain to each stat, capped by max stats.
func (u *StateUpdater) levelUp(state *model.PlayerState) int {
	if state.Level < 1 {
		state.Level = 1
	}
	gained := 0
	gain := model.StatTriple{Attack: model.LevelUpStatGain, Defense: model.LevelUpStatGain, Magic: model.LevelUpStatGain}
	for state.Experience >= state.ExperienceToNextLevel() {
		state.Experience -= state.ExperienceToNextLevel()
		state.Level++
		state.Stats = state.Stats.Add(gain).Clamp(state.MaxStats)
		gained++
	}
	return gained
}

// BeginQuest removes the quest at the 1-based index from the open list.
// The state is untouched when the index is out of range.
func (u *StateUpdater) BeginQuest(state *model.PlayerState, index int) (QuestResolution, error) {
	if index < 1 || index > len(state.Quests) {
		return QuestResolution{}, fmt.Errorf("%w: quest %d of %d", model.ErrIndexOutOfRange, index, len(state.Quests))
	}
	i := index - 1
	res := QuestResolution{Quest: state.Quests[i], Index: i}
	state.Quests = slices.Delete(state.Quests, i, i+1)
	return res, nil
}

// CompleteQuest applies the reward part of the delta and records the quest as completed.
func (u *StateUpdater) CompleteQuest(state *model.PlayerState, resolution QuestResolution, delta model.Delta) ApplyResult {
	res := u.Apply(state, delta.Rewards())
	state.CompletedTasks = append(state.CompletedTasks, resolution.Quest)
	u.logger.Info("Quest completed",
		zap.String("player", state.PlayerName),
		zap.String("quest", resolution.Quest),
	)
	return res
}

// AbortQuest puts a quest back where BeginQuest took it from.
func (u *StateUpdater) AbortQuest(state *model.PlayerState, resolution QuestResolution) {
	if state.HasQuest(resolution.Quest) {
		return
	}
	i := min(max(resolution.Index, 0), len(state.Quests))
	state.Quests = slices.Insert(state.Quests, i, resolution.Quest)
}

// ConsumeItem removes and returns the item at the 1-based index. Consumption is final.
func (u *StateUpdater) ConsumeItem(state *model.PlayerState, index int) (string, error) {
	if index < 1 || index > len(state.Inventory) {
		return "", fmt.Errorf("%w: item %d of %d", model.ErrIndexOutOfRange, index, len(state.Inventory))
	}
	i := index - 1
	item := state.Inventory[i]
	state.Inventory = slices.Delete(state.Inventory, i, i+1)
	u.logger.Info("Item consumed", zap.String("player", state.PlayerName), zap.String("item", item))
	return item, nil
}

// ApplyItemEffect adds the stat boosts of the delta, capped by max stats. A boost never lowers a stat.
// It returns the increase that actually took effect.
func (u *StateUpdater) ApplyItemEffect(state *model.PlayerState, delta model.Delta) model.StatTriple {
	boosts := delta.Boosts().StatBoosts
	if boosts.IsZero() {
		return model.StatTriple{}
	}
	before := state.Stats
	state.Stats = state.Stats.Add(boosts).Clamp(state.MaxStats)
	applied := state.Stats.Sub(before)
	u.logger.Info("Item effect applied",
		zap.String("player", state.PlayerName),
		zap.Stringer("boosts", boosts),
		zap.Stringer("applied", applied),
	)
	return applied
}
