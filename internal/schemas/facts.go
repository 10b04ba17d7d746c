package schemas

import (
	"math"
	"strconv"
	"strings"

	"text-adventure/internal/model"
)

// Narrative markers recognised by ExtractFacts.
const (
	MarkerExperience    = "获得经验"
	MarkerGold          = "获得金币"
	MarkerItem          = "获得物品"
	MarkerQuestAccepted = "接受任务"
	MarkerQuestFound    = "发现任务"
	MarkerAttackBoost   = "攻击提升"
	MarkerDefenseBoost  = "防御提升"
	MarkerMagicBoost    = "魔法提升"
)

// ArrivalVerbs are checked in this order; only the first verb present in the text is used.
var ArrivalVerbs = []string{"来到", "进入", "抵达", "到达", "移动至", "出现在"}

// Terminators that end a location phrase.
const (
	locationStopFullStop = "。"
	locationStopComma    = "，"
)

// Quest descriptions follow the last ASCII colon, or the last fullwidth one when there is none.
const (
	questDelimiter          = ":"
	questDelimiterFullwidth = "："
)

// Numbers above this are treated as malformed rather than as rewards.
const maxFactValue = math.MaxInt32

// factRule extracts one kind of fact and writes it into the delta.
// Returns false when the fact is absent or malformed.
type factRule struct {
	name  string
	apply func(text string, d *model.Delta) bool
}

var factRules = []factRule{
	{name: "experience", apply: intRule(MarkerExperience, func(d *model.Delta, v int) { d.Experience = v })},
	{name: "gold", apply: intRule(MarkerGold, func(d *model.Delta, v int) { d.Gold = v })},
	{name: "item", apply: extractItem},
	{name: "location", apply: extractLocation},
	{name: "quest", apply: extractQuest},
	{name: "attack_boost", apply: intRule(MarkerAttackBoost, func(d *model.Delta, v int) { d.StatBoosts.Attack = v })},
	{name: "defense_boost", apply: intRule(MarkerDefenseBoost, func(d *model.Delta, v int) { d.StatBoosts.Defense = v })},
	{name: "magic_boost", apply: intRule(MarkerMagicBoost, func(d *model.Delta, v int) { d.StatBoosts.Magic = v })},
}

// ExtractFacts scans narrative text for the known markers and returns the facts found.
// Malformed or missing facts are omitted; the function never fails.
func ExtractFacts(text string) model.Delta {
	d, _ := ExtractFactsWithNames(text)
	return d
}

// ExtractFactsWithNames is ExtractFacts that also reports which rules matched, in rule order.
func ExtractFactsWithNames(text string) (model.Delta, []string) {
	var d model.Delta
	var matched []string
	for _, rule := range factRules {
		if rule.apply(text, &d) {
			matched = append(matched, rule.name)
		}
	}
	return d, matched
}

// tokenAfter returns the first whitespace-delimited token after the first occurrence of marker.
func tokenAfter(text, marker string) (string, bool) {
	_, rest, found := strings.Cut(text, marker)
	if !found {
		return "", false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}

func intRule(marker string, set func(*model.Delta, int)) func(string, *model.Delta) bool {
	return func(text string, d *model.Delta) bool {
		tok, ok := tokenAfter(text, marker)
		if !ok {
			return false
		}
		v, err := strconv.Atoi(tok)
		if err != nil || v < 0 || v > maxFactValue {
			return false
		}
		set(d, v)
		return true
	}
}

func extractItem(text string, d *model.Delta) bool {
	item, ok := tokenAfter(text, MarkerItem)
	if !ok {
		return false
	}
	d.Items = append(d.Items, item)
	return true
}

func extractLocation(text string, d *model.Delta) bool {
	for _, verb := range ArrivalVerbs {
		_, rest, found := strings.Cut(text, verb)
		if !found {
			continue
		}
		rest, _, _ = strings.Cut(rest, locationStopFullStop)
		rest, _, _ = strings.Cut(rest, locationStopComma)
		loc := strings.TrimSpace(rest)
		if loc == "" {
			return false
		}
		d.Location = loc
		return true
	}
	return false
}

func extractQuest(text string, d *model.Delta) bool {
	if !strings.Contains(text, MarkerQuestAccepted) && !strings.Contains(text, MarkerQuestFound) {
		return false
	}
	cut, width := strings.LastIndex(text, questDelimiter), len(questDelimiter)
	if cut < 0 {
		cut, width = strings.LastIndex(text, questDelimiterFullwidth), len(questDelimiterFullwidth)
	}
	if cut < 0 {
		return false
	}
	quest := strings.TrimSpace(text[cut+width:])
	if quest == "" {
		return false
	}
	d.Quests = append(d.Quests, quest)
	return true
}
