package model

import (
	"fmt"
	"math"
)

// StatName identifies one of the three core combat attributes.
type StatName string

const (
	StatAttack  StatName = "攻击"
	StatDefense StatName = "防御"
	StatMagic   StatName = "魔法"
)

// StatNames is the canonical stat order used for display and iteration.
var StatNames = []StatName{StatAttack, StatDefense, StatMagic}

// MinStat is the lower bound of every stat.
const MinStat = 1

// StatTriple holds attack, defense and magic. JSON keys are the persisted save-format names.
type StatTriple struct {
	Attack  int `json:"攻击"`
	Defense int `json:"防御"`
	Magic   int `json:"魔法"`
}

// Get returns the value of the named stat.
func (s StatTriple) Get(name StatName) int {
	switch name {
	case StatAttack:
		return s.Attack
	case StatDefense:
		return s.Defense
	case StatMagic:
		return s.Magic
	}
	return 0
}

// Set assigns the named stat. Unknown names are ignored.
func (s *StatTriple) Set(name StatName, value int) {
	switch name {
	case StatAttack:
		s.Attack = value
	case StatDefense:
		s.Defense = value
	case StatMagic:
		s.Magic = value
	}
}

// Add returns the element-wise sum, saturating at the int range.
func (s StatTriple) Add(o StatTriple) StatTriple {
	return StatTriple{
		Attack:  SaturatingAdd(s.Attack, o.Attack),
		Defense: SaturatingAdd(s.Defense, o.Defense),
		Magic:   SaturatingAdd(s.Magic, o.Magic),
	}
}

// Sub returns the element-wise difference.
func (s StatTriple) Sub(o StatTriple) StatTriple {
	return StatTriple{
		Attack:  s.Attack - o.Attack,
		Defense: s.Defense - o.Defense,
		Magic:   s.Magic - o.Magic,
	}
}

// Clamp bounds every value to [MinStat, limit]. A limit below MinStat is treated as MinStat.
func (s StatTriple) Clamp(limit StatTriple) StatTriple {
	var out StatTriple
	for _, name := range StatNames {
		out.Set(name, clamp(s.Get(name), MinStat, limit.Get(name)))
	}
	return out
}

// ClampRange bounds every value to [lo, hi].
func (s StatTriple) ClampRange(lo, hi int) StatTriple {
	return StatTriple{
		Attack:  clamp(s.Attack, lo, hi),
		Defense: clamp(s.Defense, lo, hi),
		Magic:   clamp(s.Magic, lo, hi),
	}
}

// IsZero reports whether all stats are zero.
func (s StatTriple) IsZero() bool {
	return s == StatTriple{}
}

// WithinBounds reports whether every value lies in [MinStat, limit].
func (s StatTriple) WithinBounds(limit StatTriple) bool {
	for _, name := range StatNames {
		v := s.Get(name)
		if v < MinStat || v > limit.Get(name) {
			return false
		}
	}
	return true
}

func (s StatTriple) String() string {
	return fmt.Sprintf("%s:%d %s:%d %s:%d",
		StatAttack, s.Attack, StatDefense, s.Defense, StatMagic, s.Magic)
}

// SaturatingAdd returns a+b, pinned to math.MaxInt or math.MinInt instead of wrapping.
func SaturatingAdd(a, b int) int {
	sum := a + b
	switch {
	case b > 0 && sum < a:
		return math.MaxInt
	case b < 0 && sum > a:
		return math.MinInt
	}
	return sum
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
