package model

import "slices"

// Delta is the patch produced by one extraction pass. The zero value changes nothing.
type Delta struct {
	Experience int
	Gold       int
	Items      []string
	Location   string
	Quests     []string
	StatBoosts StatTriple
}

// IsEmpty reports whether the delta carries no facts.
func (d Delta) IsEmpty() bool {
	return d.Experience == 0 && d.Gold == 0 && len(d.Items) == 0 &&
		d.Location == "" && len(d.Quests) == 0 && d.StatBoosts.IsZero()
}

// Rewards keeps only experience, gold and items.
func (d Delta) Rewards() Delta {
	return Delta{
		Experience: d.Experience,
		Gold:       d.Gold,
		Items:      slices.Clone(d.Items),
	}
}

// Boosts keeps only stat boosts.
func (d Delta) Boosts() Delta {
	return Delta{StatBoosts: d.StatBoosts}
}
