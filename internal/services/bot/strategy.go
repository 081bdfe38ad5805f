package bot

import (
	"github.com/mcoot/wordgame-go/internal/dependencies/random"
	"github.com/mcoot/wordgame-go/internal/model"
)

// Strategy picks one move from candidates ranked by score, best first
type Strategy interface {
	Choose(ranked []Candidate) (Candidate, bool)
}

// DefaultStrategies returns the strategy for every difficulty
func DefaultStrategies(rnd random.Random) map[model.Difficulty]Strategy {
	return map[model.Difficulty]Strategy{
		model.DifficultyEasy:   NewEasyStrategy(rnd),
		model.DifficultyMedium: NewMediumStrategy(rnd),
		model.DifficultyHard:   NewHardStrategy(),
	}
}

// HardStrategy always plays the top-scoring candidate
type HardStrategy struct{}

// NewHardStrategy creates a new HardStrategy
func NewHardStrategy() *HardStrategy {
	return &HardStrategy{}
}

// Choose returns the first candidate
func (s *HardStrategy) Choose(ranked []Candidate) (Candidate, bool) {
	if len(ranked) == 0 {
		return Candidate{}, false
	}
	return ranked[0], true
}

// MediumTopN is how many of the best candidates medium picks among
const MediumTopN = 3

// MediumStrategy picks uniformly among the top three
type MediumStrategy struct {
	random random.Random
}

// NewMediumStrategy creates a new MediumStrategy
func NewMediumStrategy(rnd random.Random) *MediumStrategy {
	return &MediumStrategy{random: rnd}
}

// Choose returns a random candidate from the top of the list
func (s *MediumStrategy) Choose(ranked []Candidate) (Candidate, bool) {
	if len(ranked) == 0 {
		return Candidate{}, false
	}
	return ranked[s.random.Intn(min(MediumTopN, len(ranked)))], true
}

// EasyWindow is how far past the midpoint easy may reach
const EasyWindow = 5

// EasyStrategy skips the stronger half of the list, then picks within a small window
type EasyStrategy struct {
	random random.Random
}

// NewEasyStrategy creates a new EasyStrategy
func NewEasyStrategy(rnd random.Random) *EasyStrategy {
	return &EasyStrategy{random: rnd}
}

// Choose returns a candidate from just below the midpoint
func (s *EasyStrategy) Choose(ranked []Candidate) (Candidate, bool) {
	if len(ranked) == 0 {
		return Candidate{}, false
	}
	start := len(ranked) / 2
	window := min(EasyWindow, len(ranked)-start)
	return ranked[start+s.random.Intn(window)], true
}
