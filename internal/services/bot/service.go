package bot

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mcoot/wordgame-go/internal/model"
	"github.com/mcoot/wordgame-go/internal/services/scoring"
)

const (
	// DefaultMaxNewTiles bounds how many tiles a non-opening search places
	DefaultMaxNewTiles = 4
	// MinWordLength and MaxOpeningLength bound opening words
	MinWordLength    = 2
	MaxOpeningLength = model.RackSize
)

// Config tunes the search
type Config struct {
	MaxNewTiles int
}

// DefaultConfig returns the default search settings
func DefaultConfig() Config {
	return Config{MaxNewTiles: DefaultMaxNewTiles}
}

// Evaluator scores a candidate placement
type Evaluator interface {
	Evaluate(b *model.Board, placed []model.PlacedTile, isFirstMove bool) (*scoring.MoveResult, error)
}

// WordSource lists lexicon words by length
type WordSource interface {
	Words(minLen, maxLen int) []string
}

// Candidate is a legal, lexicon-valid placement the AI could play
type Candidate struct {
	Placed []model.PlacedTile
	Words  []string
	Score  int
	key    string
}

// MainWord returns the word along the placement axis
func (c Candidate) MainWord() string {
	if len(c.Words) == 0 {
		return ""
	}
	return c.Words[0]
}

// Service generates AI moves
type Service struct {
	evaluator  Evaluator
	words      WordSource
	strategies map[model.Difficulty]Strategy
	config     Config
	logger     *slog.Logger
}

// NewService creates a new bot Service
func NewService(
	evaluator Evaluator,
	words WordSource,
	strategies map[model.Difficulty]Strategy,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cfg.MaxNewTiles <= 0 {
		cfg.MaxNewTiles = DefaultMaxNewTiles
	}
	return &Service{
		evaluator:  evaluator,
		words:      words,
		strategies: strategies,
		config:     cfg,
		logger:     logger.With(slog.String("component", "bot-service")),
	}
}

// Generate searches for candidates and picks one for the difficulty.
// ok is false when no legal move exists and the caller should pass.
func (s *Service) Generate(b *model.Board, rack model.Rack, difficulty model.Difficulty, isFirstMove bool) (Candidate, bool) {
	strategy, found := s.strategies[difficulty]
	if !found {
		strategy = s.strategies[model.DifficultyMedium]
	}
	if strategy == nil {
		return Candidate{}, false
	}

	ranked := s.Candidates(b, rack, isFirstMove)
	choice, ok := strategy.Choose(ranked)
	s.logger.Debug("ai move generated",
		slog.String("difficulty", string(difficulty)),
		slog.Int("candidates", len(ranked)),
		slog.Bool("found", ok),
		slog.Int("score", choice.Score),
	)
	return choice, ok
}

// Candidates returns every candidate found, best score first
func (s *Service) Candidates(b *model.Board, rack model.Rack, isFirstMove bool) []Candidate {
	if len(rack) == 0 {
		return nil
	}
	var found map[string]Candidate
	if isFirstMove {
		found = s.openingCandidates(b, rack)
	} else {
		found = s.anchorCandidates(b, rack)
	}

	out := make([]Candidate, 0, len(found))
	for _, c := range found {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].key < out[j].key
	})
	return out
}

// openingCandidates lays each word that fits the rack horizontally across the center
func (s *Service) openingCandidates(b *model.Board, rack model.Rack) map[string]Candidate {
	found := make(map[string]Candidate)
	for _, word := range s.words.Words(MinWordLength, min(MaxOpeningLength, len(rack))) {
		letters := strings.Split(word, "")
		tiles, ok := assemble(letters, rack)
		if !ok {
			continue
		}
		startCol := model.Center.Col - (len(letters)-1)/2
		placed := make([]model.PlacedTile, len(tiles))
		for i, t := range tiles {
			placed[i] = model.PlacedTile{Tile: t, Row: model.Center.Row, Col: startCol + i}
		}
		s.consider(found, b, placed, true)
	}
	return found
}

// anchorCandidates fits lexicon words through each occupied cell in both
// directions, filling the empty cells of the word from the rack
func (s *Service) anchorCandidates(b *model.Board, rack model.Rack) map[string]Candidate {
	found := make(map[string]Candidate)
	maxNew := min(len(rack), s.config.MaxNewTiles)
	words := s.words.Words(MinWordLength, model.BoardSize)

	for _, anchor := range b.Occupied() {
		anchorLetter := strings.ToUpper(b.Get(anchor).Letter)
		for _, horizontal := range []bool{true, false} {
			for _, word := range words {
				for k := 0; k < len(word); k++ {
					if word[k:k+1] != anchorLetter {
						continue
					}
					cells, need, ok := fitThrough(b, anchor, horizontal, word, k, maxNew)
					if !ok {
						continue
					}
					tiles, ok := assemble(need, rack)
					if !ok {
						continue
					}
					placed := make([]model.PlacedTile, len(tiles))
					for i, t := range tiles {
						placed[i] = model.PlacedTile{Tile: t, Row: cells[i].Row, Col: cells[i].Col}
					}
					s.consider(found, b, placed, false)
				}
			}
		}
	}
	return found
}

// fitThrough lines word up so its k-th letter sits on anchor. It returns the
// empty cells to fill and their letters, or ok=false when the word clashes
// with the board, overruns it, or needs no or too many new tiles.
func fitThrough(b *model.Board, anchor model.Position, horizontal bool, word string, k, maxNew int) ([]model.Position, []string, bool) {
	at := func(i int) model.Position {
		if horizontal {
			return model.Position{Row: anchor.Row, Col: anchor.Col - k + i}
		}
		return model.Position{Row: anchor.Row - k + i, Col: anchor.Col}
	}
	if !b.IsValidPosition(at(0)) || !b.IsValidPosition(at(len(word)-1)) {
		return nil, nil, false
	}
	// the run must end where the word ends
	if !b.IsEmpty(at(-1)) || !b.IsEmpty(at(len(word))) {
		return nil, nil, false
	}

	var cells []model.Position
	var need []string
	for i := 0; i < len(word); i++ {
		pos := at(i)
		letter := word[i : i+1]
		if t := b.Get(pos); t != nil {
			if strings.ToUpper(t.Letter) != letter {
				return nil, nil, false
			}
			continue
		}
		cells = append(cells, pos)
		need = append(need, letter)
		if len(cells) > maxNew {
			return nil, nil, false
		}
	}
	if len(cells) == 0 {
		return nil, nil, false
	}
	return cells, need, true
}

// assemble picks rack tiles spelling letters, preferring real tiles and
// falling back to blanks as wildcards
func assemble(letters []string, rack model.Rack) ([]model.Tile, bool) {
	used := make([]bool, len(rack))
	out := make([]model.Tile, len(letters))
	missing := make([]int, 0)

	for i, letter := range letters {
		idx := -1
		for j, t := range rack {
			if !used[j] && !t.IsBlank && strings.EqualFold(t.Letter, letter) {
				idx = j
				break
			}
		}
		if idx < 0 {
			missing = append(missing, i)
			continue
		}
		used[idx] = true
		out[i] = rack[idx]
	}

	for _, i := range missing {
		idx := -1
		for j, t := range rack {
			if !used[j] && t.IsBlank {
				idx = j
				break
			}
		}
		if idx < 0 {
			return nil, false
		}
		used[idx] = true
		blank := rack[idx]
		blank.Letter = letters[i]
		out[i] = blank
	}
	return out, true
}

func (s *Service) consider(found map[string]Candidate, b *model.Board, placed []model.PlacedTile, isFirstMove bool) {
	key := placementKey(placed)
	if _, seen := found[key]; seen {
		return
	}
	result, err := s.evaluator.Evaluate(b, placed, isFirstMove)
	if err != nil {
		return
	}
	found[key] = Candidate{
		Placed: placed,
		Words:  result.WordList(),
		Score:  result.Score,
		key:    key,
	}
}

func placementKey(placed []model.PlacedTile) string {
	parts := make([]string, len(placed))
	for i, p := range placed {
		parts[i] = fmt.Sprintf("%02d%02d%s", p.Row, p.Col, p.Letter)
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}
