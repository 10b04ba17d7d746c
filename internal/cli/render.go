package cli

import (
	"fmt"
	"strings"

	"text-adventure/internal/model"

	"golang.org/x/text/width"
)

const (
	panelWidth       = 44
	progressBarWidth = 20
	itemsPerRow      = 3
	maxTaskWidth     = 30
)

type segment struct {
	tone tone
	text string
}

type panel struct {
	c  *Console
	sb strings.Builder
}

func (p *panel) border(left, fill, right string) {
	p.sb.WriteString(p.c.paint(toneInfo, left+strings.Repeat(fill, panelWidth)+right))
	p.sb.WriteByte('\n')
}

// row writes one boxed line, padding by display width so wide characters line up.
func (p *panel) row(segs ...segment) {
	used := 1
	p.sb.WriteString(p.c.paint(toneInfo, "║"))
	p.sb.WriteByte(' ')
	for _, s := range segs {
		p.sb.WriteString(p.c.paint(s.tone, s.text))
		used += displayWidth(s.text)
	}
	if pad := panelWidth - used; pad > 0 {
		p.sb.WriteString(strings.Repeat(" ", pad))
	}
	p.sb.WriteString(p.c.paint(toneInfo, "║"))
	p.sb.WriteByte('\n')
}

func (p *panel) title(text string) {
	p.row(segment{toneNarrative, text})
}

func (p *panel) empty(text string) {
	p.row(segment{toneMuted, text})
}

// RenderPlayerInfo draws the character sheet.
func (c *Console) RenderPlayerInfo(state *model.PlayerState) {
	p := &panel{c: c}
	p.border("╔", "═", "╗")
	p.title("玩家角色信息")
	p.border("╠", "═", "╣")
	p.row(segment{toneNarrative, "姓名："}, segment{toneSuccess, state.PlayerName},
		segment{toneNarrative, "  等级："}, segment{toneSuccess, fmt.Sprint(state.Level)})
	p.row(segment{toneNarrative, "职业："}, segment{toneSuccess, state.PlayerClass},
		segment{toneNarrative, "  金币："}, segment{toneSuccess, fmt.Sprint(state.Gold)})
	p.row(segment{toneNarrative, "位置："}, segment{toneSuccess, state.Location})
	p.border("╠", "═", "╣")

	threshold := state.ExperienceToNextLevel()
	p.row(segment{toneNarrative, "经验值："}, segment{toneSuccess, progressBar(state.Experience, threshold)},
		segment{toneMuted, fmt.Sprintf(" %d/%d", state.Experience, threshold)})
	p.border("╠", "═", "╣")

	var stats []segment
	for i, name := range model.StatNames {
		if i > 0 {
			stats = append(stats, segment{toneNarrative, "  "})
		}
		stats = append(stats,
			segment{toneNarrative, string(name) + "："},
			segment{toneSuccess, fmt.Sprintf("%d/%d", state.Stats.Get(name), state.MaxStats.Get(name))})
	}
	p.row(stats...)
	p.border("╠", "═", "╣")

	p.title(fmt.Sprintf("物品栏（%d件）", len(state.Inventory)))
	if len(state.Inventory) == 0 {
		p.empty("暂无携带物品")
	}
	for start := 0; start < len(state.Inventory); start += itemsPerRow {
		end := min(start+itemsPerRow, len(state.Inventory))
		var cells []string
		for i := start; i < end; i++ {
			cells = append(cells, truncate(fmt.Sprintf("%d.%s", i+1, state.Inventory[i]), 11))
		}
		p.row(segment{toneSuccess, strings.Join(cells, " ")})
	}
	p.border("╠", "═", "╣")

	p.title(fmt.Sprintf("当前任务（%d项）", len(state.Quests)))
	if len(state.Quests) == 0 {
		p.empty("暂无进行中的任务")
	}
	for i, quest := range state.Quests {
		p.row(segment{toneSuccess, truncate(fmt.Sprintf("%2d.%s", i+1, quest), maxTaskWidth)})
	}
	p.border("╠", "═", "╣")

	p.title(fmt.Sprintf("已完成任务（%d项）", len(state.CompletedTasks)))
	if len(state.CompletedTasks) == 0 {
		p.empty("暂无完成任务")
	}
	for i, task := range state.CompletedTasks {
		p.row(segment{toneSuccess, truncate(fmt.Sprintf("%2d.%s", i+1, task), maxTaskWidth)})
	}
	p.border("╚", "═", "╝")

	fmt.Fprintln(c.out)
	fmt.Fprint(c.out, p.sb.String())
}

func progressBar(value, total int) string {
	filled := 0
	if total > 0 {
		filled = min(max(value*progressBarWidth/total, 0), progressBarWidth)
	}
	return strings.Repeat("▓", filled) + strings.Repeat("░", progressBarWidth-filled)
}

// displayWidth counts East Asian wide characters as two terminal cells.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if isWide(r) {
			w += 2
		} else {
			w++
		}
	}
	return w
}

func isWide(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	}
	return false
}

// truncate cuts s to at most limit display cells, marking the cut with "…".
func truncate(s string, limit int) string {
	if displayWidth(s) <= limit {
		return s
	}
	var sb strings.Builder
	used := 0
	for _, r := range s {
		w := 1
		if isWide(r) {
			w = 2
		}
		if used+w > limit-1 {
			break
		}
		sb.WriteRune(r)
		used += w
	}
	sb.WriteString("…")
	return sb.String()
}
