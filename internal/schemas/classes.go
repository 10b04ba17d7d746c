package schemas

import (
	"strconv"
	"strings"

	"text-adventure/internal/model"
)

// ParseClassList parses "名称|攻击|防御|魔法|描述" lines. Both the ASCII and the full-width bar
// are accepted as separators. Lines that do not carry a name and three integers are skipped.
// Stats are returned as written; clamping happens when the classes are merged into a catalog.
func ParseClassList(text string) []model.GeneratedClass {
	var out []model.GeneratedClass
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "｜", "|"))
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) < 4 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		if name == "" {
			continue
		}
		var stats [3]int
		valid := true
		for i := range stats {
			v, err := strconv.Atoi(strings.TrimSpace(parts[i+1]))
			if err != nil {
				valid = false
				break
			}
			stats[i] = v
		}
		if !valid {
			continue
		}
		class := model.GeneratedClass{
			Name:  name,
			Stats: model.StatTriple{Attack: stats[0], Defense: stats[1], Magic: stats[2]},
		}
		if len(parts) > 4 {
			class.Description = strings.TrimSpace(strings.Join(parts[4:], "|"))
		}
		out = append(out, class)
	}
	return out
}
