package service_test

import (
	"math"
	"testing"

	"text-adventure/internal/model"
	"text-adventure/internal/schemas"
	"text-adventure/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestState(t *testing.T) *model.PlayerState {
	t.Helper()
	s, err := model.NewPlayerState("阿明", "战士", model.DefaultClassCatalog())
	require.NoError(t, err)
	return s
}

func TestStateUpdater_Apply_SingleLevelUp(t *testing.T) {
	u := service.NewStateUpdater(zap.NewNop())
	s := newTestState(t)
	s.Experience = 80

	res := u.Apply(s, model.Delta{Experience: 30})

	assert.Equal(t, 10, s.Experience)
	assert.Equal(t, 2, s.Level)
	assert.Equal(t, 12, s.Stats.Attack)
	assert.Equal(t, 10, s.Stats.Defense)
	assert.Equal(t, 4, s.Stats.Magic)
	assert.Equal(t, 1, res.LevelsGained)
	assert.Equal(t, 2, res.NewLevel)
}

func TestStateUpdater_Apply_MultipleLevelUps(t *testing.T) {
	u := service.NewStateUpdater(zap.NewNop())
	s := newTestState(t)

	// 100 (L1) + 200 (L2) + 300 (L3) = 600, 50 left at level 4
	res := u.Apply(s, model.Delta{Experience: 650})

	assert.Equal(t, 4, s.Level)
	assert.Equal(t, 50, s.Experience)
	assert.Equal(t, 3, res.LevelsGained)
	assert.Equal(t, 16, s.Stats.Attack)
}

func TestStateUpdater_Apply_HugeRewardsKeepStateValid(t *testing.T) {
	u := service.NewStateUpdater(zap.NewNop())
	s := newTestState(t)
	s.Experience = 80
	s.Gold = math.MaxInt - 5

	// numbers past int32 never reach the state
	u.Apply(s, schemas.ExtractFacts("获得经验 9223372036854775807 获得金币 9223372036854775807"))
	assert.Equal(t, 80, s.Experience)
	assert.Equal(t, math.MaxInt-5, s.Gold)

	res := u.Apply(s, model.Delta{Experience: math.MaxInt32, Gold: 100})
	assert.Equal(t, math.MaxInt, s.Gold)
	assert.GreaterOrEqual(t, s.Experience, 0)
	assert.Less(t, s.Experience, s.ExperienceToNextLevel())
	assert.Positive(t, res.LevelsGained)
	assert.NoError(t, s.Validate())
}

func TestStateUpdater_Apply_LevelingProperty(t *testing.T) {
	u := service.NewStateUpdater(zap.NewNop())

	for level := 1; level <= 5; level++ {
		for _, x := range []int{0, 1, level*100 - 1} {
			for _, e := range []int{0, 1, 99, 100, 101, 250, 999, 5000} {
				s := newTestState(t)
				s.Level = level
				s.Experience = x

				u.Apply(s, model.Delta{Experience: e})

				// replay the subtraction independently
				wantLevel, wantXP := level, x+e
				for wantXP >= wantLevel*100 {
					wantXP -= wantLevel * 100
					wantLevel++
				}
				assert.Equal(t, wantLevel, s.Level, "level=%d x=%d e=%d", level, x, e)
				assert.Equal(t, wantXP, s.Experience, "level=%d x=%d e=%d", level, x, e)
				assert.Less(t, s.Experience, s.Level*100)
				assert.True(t, s.Stats.WithinBounds(s.MaxStats))
			}
		}
	}
}

func TestStateUpdater_Apply_LevelUpClampsStats(t *testing.T) {
	u := service.NewStateUpdater(zap.NewNop())
	s := newTestState(t)
	s.MaxStats = model.StatTriple{Attack: 11, Defense: 100, Magic: 100}

	u.Apply(s, model.Delta{Experience: 300})

	assert.Equal(t, 3, s.Level)
	assert.Equal(t, 11, s.Stats.Attack)
	assert.Equal(t, 12, s.Stats.Defense)
}

func TestStateUpdater_Apply_LevelsStaleExperience(t *testing.T) {
	u := service.NewStateUpdater(zap.NewNop())
	s := newTestState(t)
	s.Experience = 120

	res := u.Apply(s, model.Delta{})

	assert.Equal(t, 2, s.Level)
	assert.Equal(t, 20, s.Experience)
	assert.Equal(t, 1, res.LevelsGained)
}

func TestStateUpdater_Apply_ItemFromNarrative(t *testing.T) {
	u := service.NewStateUpdater(zap.NewNop())
	s := newTestState(t)

	res := u.Apply(s, schemas.ExtractFacts("你获得物品 治疗药水"))

	assert.Equal(t, []string{"治疗药水"}, s.Inventory)
	assert.Equal(t, []string{"治疗药水"}, res.ItemsAdded)
	assert.Zero(t, s.Gold)
	assert.Zero(t, s.Experience)
	assert.Equal(t, 1, s.Level)
}

func TestStateUpdater_Apply_DuplicateItemsKept(t *testing.T) {
	u := service.NewStateUpdater(zap.NewNop())
	s := newTestState(t)

	u.Apply(s, model.Delta{Items: []string{"苹果"}})
	u.Apply(s, model.Delta{Items: []string{"苹果", ""}})

	assert.Equal(t, []string{"苹果", "苹果"}, s.Inventory)
}

func TestStateUpdater_Apply_LocationFromNarrative(t *testing.T) {
	u := service.NewStateUpdater(zap.NewNop())
	s := newTestState(t)
	s.Quests = []string{"找到长老"}

	res := u.Apply(s, schemas.ExtractFacts("你进入黑暗森林。遇到了狼"))

	assert.Equal(t, "黑暗森林", s.Location)
	assert.True(t, res.LocationChanged)
	assert.Equal(t, []string{"找到长老"}, s.Quests, "location changes leave quests alone")

	res = u.Apply(s, model.Delta{Location: "黑暗森林"})
	assert.False(t, res.LocationChanged)
}

func TestStateUpdater_Apply_QuestDedup(t *testing.T) {
	u := service.NewStateUpdater(zap.NewNop())
	s := newTestState(t)

	first := u.Apply(s, schemas.ExtractFacts("村长请求帮助，你接受任务: 找到长老"))
	second := u.Apply(s, schemas.ExtractFacts("你再次接受任务: 找到长老"))

	assert.Equal(t, []string{"找到长老"}, s.Quests)
	assert.Equal(t, []string{"找到长老"}, first.QuestsAdded)
	assert.Empty(t, second.QuestsAdded)
}

func TestStateUpdater_Apply_IgnoresStatBoosts(t *testing.T) {
	u := service.NewStateUpdater(zap.NewNop())
	s := newTestState(t)
	before := s.Stats

	u.Apply(s, model.Delta{StatBoosts: model.StatTriple{Attack: 50}})

	assert.Equal(t, before, s.Stats)
}

func TestStateUpdater_QuestResolution(t *testing.T) {
	u := service.NewStateUpdater(zap.NewNop())

	t.Run("complete", func(t *testing.T) {
		s := newTestState(t)
		s.Quests = []string{"找到长老", "击败巨龙"}

		resolution, err := u.BeginQuest(s, 2)
		require.NoError(t, err)
		assert.Equal(t, "击败巨龙", resolution.Quest)
		assert.Equal(t, []string{"找到长老"}, s.Quests)

		delta := schemas.ExtractFacts("巨龙倒下了。获得经验 120 获得金币 300 获得物品 龙鳞 你来到 山顶。")
		res := u.CompleteQuest(s, resolution, delta)

		assert.Equal(t, []string{"击败巨龙"}, s.CompletedTasks)
		assert.NotContains(t, s.Quests, "击败巨龙")
		assert.Equal(t, 300, s.Gold)
		assert.Equal(t, []string{"龙鳞"}, s.Inventory)
		assert.Equal(t, 2, s.Level)
		assert.Equal(t, 20, s.Experience)
		assert.Equal(t, 1, res.LevelsGained)
		assert.Equal(t, model.StartingLocation, s.Location, "only rewards apply on quest completion")
	})

	t.Run("abort restores position", func(t *testing.T) {
		s := newTestState(t)
		s.Quests = []string{"甲", "乙", "丙"}

		resolution, err := u.BeginQuest(s, 2)
		require.NoError(t, err)
		u.AbortQuest(s, resolution)

		assert.Equal(t, []string{"甲", "乙", "丙"}, s.Quests)
		assert.Empty(t, s.CompletedTasks)
	})

	t.Run("out of range", func(t *testing.T) {
		s := newTestState(t)
		s.Quests = []string{"甲"}

		for _, idx := range []int{0, 2, -1} {
			_, err := u.BeginQuest(s, idx)
			assert.ErrorIs(t, err, model.ErrIndexOutOfRange)
		}
		assert.Equal(t, []string{"甲"}, s.Quests)
	})
}

func TestStateUpdater_ItemUse(t *testing.T) {
	u := service.NewStateUpdater(zap.NewNop())

	t.Run("consume and boost", func(t *testing.T) {
		s := newTestState(t)
		s.Inventory = []string{"面包", "力量药水"}

		item, err := u.ConsumeItem(s, 2)
		require.NoError(t, err)
		assert.Equal(t, "力量药水", item)
		assert.Equal(t, []string{"面包"}, s.Inventory)

		applied := u.ApplyItemEffect(s, schemas.ExtractFacts("你感到力量涌动，攻击提升 5 防御提升 2"))
		assert.Equal(t, model.StatTriple{Attack: 5, Defense: 2}, applied)
		assert.Equal(t, 15, s.Stats.Attack)
		assert.Equal(t, 10, s.Stats.Defense)
	})

	t.Run("boost clamps and is idempotent at max", func(t *testing.T) {
		s := newTestState(t)
		boost := model.Delta{StatBoosts: model.StatTriple{Attack: 500}}

		u.ApplyItemEffect(s, boost)
		assert.Equal(t, 100, s.Stats.Attack)

		applied := u.ApplyItemEffect(s, boost)
		assert.True(t, applied.IsZero())
		assert.Equal(t, 100, s.Stats.Attack)
	})

	t.Run("huge boost saturates at max", func(t *testing.T) {
		s := newTestState(t)
		before := s.Stats

		applied := u.ApplyItemEffect(s, model.Delta{StatBoosts: model.StatTriple{Attack: math.MaxInt, Magic: math.MaxInt}})
		assert.Equal(t, 100, s.Stats.Attack)
		assert.Equal(t, 100, s.Stats.Magic)
		assert.Equal(t, before.Defense, s.Stats.Defense)
		assert.Equal(t, model.StatTriple{Attack: 100 - before.Attack, Magic: 100 - before.Magic}, applied)
	})

	t.Run("rewards are not applied by item effect", func(t *testing.T) {
		s := newTestState(t)
		u.ApplyItemEffect(s, model.Delta{Gold: 100, Experience: 500})
		assert.Zero(t, s.Gold)
		assert.Equal(t, 1, s.Level)
	})

	t.Run("out of range", func(t *testing.T) {
		s := newTestState(t)
		_, err := u.ConsumeItem(s, 1)
		assert.ErrorIs(t, err, model.ErrIndexOutOfRange)
	})
}
