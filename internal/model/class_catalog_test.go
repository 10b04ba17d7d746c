package model_test

import (
	"encoding/json"
	"testing"

	"text-adventure/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultClassCatalog(t *testing.T) {
	c := model.DefaultClassCatalog()
	assert.Equal(t, []string{"战士", "法师", "盗贼"}, c.Names())

	stats, ok := c.Stats("法师")
	require.True(t, ok)
	assert.Equal(t, model.StatTriple{Attack: 3, Defense: 4, Magic: 12}, stats)

	_, ok = c.Stats("骑士")
	assert.False(t, ok)
}

func TestClassCatalog_Merge(t *testing.T) {
	c := model.DefaultClassCatalog()
	added := c.Merge([]model.GeneratedClass{
		{Name: " 圣骑士 ", Stats: model.StatTriple{Attack: 30, Defense: 0, Magic: 7}},
		{Name: "战士", Stats: model.StatTriple{Attack: 1, Defense: 1, Magic: 1}},
		{Name: "", Stats: model.StatTriple{Attack: 5, Defense: 5, Magic: 5}},
		{Name: "游侠", Stats: model.StatTriple{Attack: 8, Defense: 5, Magic: 4}},
		{Name: "游侠", Stats: model.StatTriple{Attack: 1, Defense: 1, Magic: 1}},
	})

	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"战士", "法师", "盗贼", "圣骑士", "游侠"}, c.Names())

	paladin, _ := c.Stats("圣骑士")
	assert.Equal(t, model.StatTriple{Attack: 15, Defense: 1, Magic: 7}, paladin)

	warrior, _ := c.Stats("战士")
	assert.Equal(t, model.StatTriple{Attack: 10, Defense: 8, Magic: 2}, warrior, "existing class must not be overwritten")
}

func TestClassCatalog_JSONKeepsOrder(t *testing.T) {
	c := model.DefaultClassCatalog()
	c.Merge([]model.GeneratedClass{{Name: "元素使", Stats: model.StatTriple{Attack: 2, Defense: 3, Magic: 15}}})

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"战士": {"攻击": 10, "防御": 8, "魔法": 2},
		"法师": {"攻击": 3, "防御": 4, "魔法": 12},
		"盗贼": {"攻击": 7, "防御": 5, "魔法": 3},
		"元素使": {"攻击": 2, "防御": 3, "魔法": 15}
	}`, string(data))

	var decoded model.ClassCatalog
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, c.Names(), decoded.Names())
	assert.Equal(t, c.Classes, decoded.Classes)
}

func TestClassCatalog_UnmarshalRejectsNonObject(t *testing.T) {
	var c model.ClassCatalog
	assert.Error(t, json.Unmarshal([]byte(`["战士"]`), &c))
	assert.Error(t, json.Unmarshal([]byte(`{"战士": "强"}`), &c))
}

func TestClassCatalog_CloneIsIndependent(t *testing.T) {
	c := model.DefaultClassCatalog()
	clone := c.Clone()
	clone.Merge([]model.GeneratedClass{{Name: "德鲁伊", Stats: model.StatTriple{Attack: 4, Defense: 4, Magic: 9}}})

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 4, clone.Len())
}
