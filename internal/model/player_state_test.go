package model_test

import (
	"testing"

	"text-adventure/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlayerState(t *testing.T) {
	s, err := model.NewPlayerState(" 阿明 ", "战士", model.DefaultClassCatalog())
	require.NoError(t, err)

	assert.Equal(t, "阿明", s.PlayerName)
	assert.Equal(t, "战士", s.PlayerClass)
	assert.Equal(t, model.StartingLocation, s.Location)
	assert.Equal(t, 1, s.Level)
	assert.Zero(t, s.Experience)
	assert.Zero(t, s.Gold)
	assert.NotNil(t, s.Inventory)
	assert.NotNil(t, s.Quests)
	assert.NotNil(t, s.CompletedTasks)
	assert.Equal(t, model.StatTriple{Attack: 10, Defense: 8, Magic: 2}, s.Stats)
	assert.Equal(t, model.DefaultMaxStats(), s.MaxStats)
	assert.Equal(t, 3, s.ClassCatalog.Len())
	assert.NoError(t, s.Validate())
}

func TestNewPlayerState_InvalidInput(t *testing.T) {
	_, err := model.NewPlayerState("  ", "战士", model.DefaultClassCatalog())
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = model.NewPlayerState("阿明", "骑士", model.DefaultClassCatalog())
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestPlayerState_Validate(t *testing.T) {
	base := func() *model.PlayerState {
		s, err := model.NewPlayerState("阿明", "法师", model.DefaultClassCatalog())
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name    string
		mutate  func(s *model.PlayerState)
		wantErr bool
	}{
		{name: "valid", mutate: func(*model.PlayerState) {}},
		{name: "experience above threshold accepted", mutate: func(s *model.PlayerState) { s.Experience = 250 }},
		{name: "zero level", mutate: func(s *model.PlayerState) { s.Level = 0 }, wantErr: true},
		{name: "negative gold", mutate: func(s *model.PlayerState) { s.Gold = -1 }, wantErr: true},
		{name: "stat above max", mutate: func(s *model.PlayerState) { s.Stats.Magic = 101 }, wantErr: true},
		{name: "stat below one", mutate: func(s *model.PlayerState) { s.Stats.Attack = 0 }, wantErr: true},
		{name: "empty inventory entry", mutate: func(s *model.PlayerState) { s.Inventory = []string{"剑", ""} }, wantErr: true},
		{name: "empty name", mutate: func(s *model.PlayerState) { s.PlayerName = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPlayerState_Clone(t *testing.T) {
	s, err := model.NewPlayerState("阿明", "盗贼", model.DefaultClassCatalog())
	require.NoError(t, err)
	s.Inventory = append(s.Inventory, "匕首")

	c := s.Clone()
	c.Inventory[0] = "长剑"
	c.Quests = append(c.Quests, "找到长老")

	assert.Equal(t, []string{"匕首"}, s.Inventory)
	assert.Empty(t, s.Quests)
}

func TestPlayerState_Normalize(t *testing.T) {
	s := &model.PlayerState{PlayerName: "阿明", Level: 1}
	s.Normalize()

	assert.Equal(t, []string{}, s.Inventory)
	assert.Equal(t, []string{}, s.Quests)
	assert.Equal(t, []string{}, s.CompletedTasks)
	assert.NotNil(t, s.ClassCatalog.Classes)
}
