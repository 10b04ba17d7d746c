package service

import (
	"fmt"

	"text-adventure/internal/model"
	"text-adventure/internal/schemas"
)

// narratorSystemPrompt asks the model to use the literal markers the fact extractor looks for.
var narratorSystemPrompt = fmt.Sprintf(`你是一款中文文字冒险游戏的叙述者。请用生动的中文描述场景和事件。
当玩家获得奖励或发生变化时，请严格使用以下格式（标记后空一格再写数值或名称）：
- %s 数值，例如：%s 30
- %s 数值，例如：%s 15
- %s 名称，例如：%s 治疗药水
- 新任务写在回复最后：%s: 任务描述
- 移动到新地点时写：你来到某地。
- 属性变化：%s 数值、%s 数值、%s 数值`,
	schemas.MarkerExperience, schemas.MarkerExperience,
	schemas.MarkerGold, schemas.MarkerGold,
	schemas.MarkerItem, schemas.MarkerItem,
	schemas.MarkerQuestAccepted,
	schemas.MarkerAttackBoost, schemas.MarkerDefenseBoost, schemas.MarkerMagicBoost,
)

// ItemEffectMinutes and ItemUses are part of the item prompt.
const (
	ItemEffectMinutes = 10
	ItemUses          = 1
)

func scenePrompt(s *model.PlayerState) string {
	return fmt.Sprintf("你是一名名为%s的%s，当前位于%s，等级为%d，属性为%s。请描述当前场景并给出一些可行的行动选项。",
		s.PlayerName, s.PlayerClass, s.Location, s.Level, s.Stats)
}

func actionPrompt(previousNarrative, action string) string {
	return fmt.Sprintf("%s\n玩家选择了: %s，请描述接下来的情况。", previousNarrative, action)
}

func questPrompt(s *model.PlayerState, quest string) string {
	return fmt.Sprintf("玩家要处理任务：%s，玩家属性为%s。请描述任务完成情况和奖励。", quest, s.Stats)
}

func itemPrompt(s *model.PlayerState, item string) string {
	return fmt.Sprintf("玩家使用了物品：%s，玩家属性为%s。请描述使用物品后的效果，效果持续时间为 %d 分钟，物品使用次数为 %d 次。",
		item, s.Stats, ItemEffectMinutes, ItemUses)
}

// classGenerationPrompt is answered with lines parsed by schemas.ParseClassList.
const classGenerationPrompt = "生成5个幻想职业，格式：名称|攻击|防御|魔法|描述（用中文竖线分隔），每行一个职业，属性为1到15之间的整数，不要输出其他内容。"
