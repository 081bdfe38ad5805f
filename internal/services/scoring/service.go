package scoring

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/mcoot/wordgame-go/internal/model"
	"github.com/mcoot/wordgame-go/internal/services/board"
)

// Lexicon answers word membership
type Lexicon interface {
	IsValidWord(word string) bool
}

// PlacementValidator checks placement geometry
type PlacementValidator interface {
	Validate(board *model.Board, placed []model.PlacedTile, isFirstMove bool) error
}

// Service validates formed words and scores moves
type Service struct {
	dictionary Lexicon
	validator  PlacementValidator
}

// New creates a new ScoringService
func New(dictionary Lexicon, validator PlacementValidator) *Service {
	return &Service{
		dictionary: dictionary,
		validator:  validator,
	}
}

// LetterCell is one letter of a formed word
type LetterCell struct {
	Position model.Position
	Tile     model.Tile
	IsNew    bool // placed in the move being scored
}

// FormedWord is a maximal run of tiles created or extended by a move
type FormedWord struct {
	Word       string
	Start      model.Position
	End        model.Position
	Horizontal bool
	Cells      []LetterCell
}

// MoveResult is an accepted, scored placement
type MoveResult struct {
	Placed []model.PlacedTile
	Words  []FormedWord
	Score  int
	Bingo  bool
}

// MainWord returns the first formed word, which runs along the placement axis when it exists
func (r *MoveResult) MainWord() string {
	if len(r.Words) == 0 {
		return ""
	}
	return r.Words[0].Word
}

// WordList returns the text of every formed word
func (r *MoveResult) WordList() []string {
	return lo.Map(r.Words, func(w FormedWord, _ int) string { return w.Word })
}

// Evaluate runs geometry checks, word formation, lexicon checks and scoring.
// Nothing is committed to the board.
func (s *Service) Evaluate(b *model.Board, placed []model.PlacedTile, isFirstMove bool) (*MoveResult, error) {
	if err := s.validator.Validate(b, placed, isFirstMove); err != nil {
		return nil, err
	}
	words := FormedWords(b, placed)
	if len(words) == 0 {
		return nil, model.ErrNoWordFormed
	}
	if err := s.ValidateWords(words); err != nil {
		return nil, err
	}
	return &MoveResult{
		Placed: placed,
		Words:  words,
		Score:  Score(words, len(placed)),
		Bingo:  len(placed) == model.RackSize,
	}, nil
}

// ValidateWords rejects the move on the first word missing from the lexicon
func (s *Service) ValidateWords(words []FormedWord) error {
	for _, w := range words {
		if !s.dictionary.IsValidWord(w.Word) {
			return fmt.Errorf("%w: %s", model.ErrInvalidWord, w.Word)
		}
	}
	return nil
}

// FormedWords returns the main word and every crossword a placement creates,
// each counted once by its start and end coordinates
func FormedWords(b *model.Board, placed []model.PlacedTile) []FormedWord {
	if len(placed) == 0 {
		return nil
	}
	scratch := b.Clone()
	scratch.Apply(placed)

	fresh := make(map[model.Position]struct{}, len(placed))
	for _, p := range placed {
		fresh[p.Position()] = struct{}{}
	}

	horizontal, _ := board.Orientation(placed)
	var words []FormedWord
	seen := make(map[[2]model.Position]struct{})
	add := func(w *FormedWord) {
		if w == nil {
			return
		}
		key := [2]model.Position{w.Start, w.End}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		words = append(words, *w)
	}

	add(wordThrough(scratch, fresh, placed[0].Position(), horizontal))
	for _, p := range placed {
		add(wordThrough(scratch, fresh, p.Position(), !horizontal))
	}
	return words
}

// wordThrough walks the maximal occupied run through pos, nil when shorter than 2
func wordThrough(b *model.Board, fresh map[model.Position]struct{}, pos model.Position, horizontal bool) *FormedWord {
	step := model.Position{Row: 1}
	if horizontal {
		step = model.Position{Col: 1}
	}
	start := pos
	for {
		prev := model.Position{Row: start.Row - step.Row, Col: start.Col - step.Col}
		if b.IsEmpty(prev) {
			break
		}
		start = prev
	}

	var cells []LetterCell
	var text strings.Builder
	for cur := start; !b.IsEmpty(cur); cur = (model.Position{Row: cur.Row + step.Row, Col: cur.Col + step.Col}) {
		t := b.Get(cur)
		_, isNew := fresh[cur]
		cells = append(cells, LetterCell{Position: cur, Tile: *t, IsNew: isNew})
		text.WriteString(strings.ToUpper(t.Letter))
	}
	if len(cells) < 2 {
		return nil
	}
	return &FormedWord{
		Word:       text.String(),
		Start:      cells[0].Position,
		End:        cells[len(cells)-1].Position,
		Horizontal: horizontal,
		Cells:      cells,
	}
}

// ScoreWord sums letter values with premiums applied only under new tiles
func ScoreWord(w FormedWord) int {
	sum, wordMultiplier := 0, 1
	for _, c := range w.Cells {
		value := c.Tile.Value
		if c.IsNew {
			premium := model.PremiumAt(c.Position)
			value *= premium.LetterMultiplier()
			wordMultiplier *= premium.WordMultiplier()
		}
		sum += value
	}
	return sum * wordMultiplier
}

// Score totals every formed word and adds the bingo bonus for a seven-tile move
func Score(words []FormedWord, placedCount int) int {
	total := lo.SumBy(words, ScoreWord)
	if placedCount == model.RackSize {
		total += model.BingoBonus
	}
	return total
}

// Interface for dependency injection
type ServiceInterface interface {
	Evaluate(b *model.Board, placed []model.PlacedTile, isFirstMove bool) (*MoveResult, error)
	ValidateWords(words []FormedWord) error
}

var _ ServiceInterface = (*Service)(nil)
