package model

// Difficulty selects how the AI picks among its candidate moves
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DifficultyDisplayName returns a human-readable label for a difficulty
func DifficultyDisplayName(d Difficulty) string {
	switch d {
	case DifficultyEasy:
		return "Easy"
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	default:
		return string(d)
	}
}

// ValidDifficulties returns all valid difficulty names
func ValidDifficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// IsValid returns true if d is a known difficulty
func (d Difficulty) IsValid() bool {
	for _, v := range ValidDifficulties() {
		if v == d {
			return true
		}
	}
	return false
}
