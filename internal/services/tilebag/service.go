package tilebag

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/mcoot/wordgame-go/internal/dependencies/random"
	"github.com/mcoot/wordgame-go/internal/model"
)

// MinExchangeBag is the smallest bag an exchange may draw from
const MinExchangeBag = 7

// Service builds and mutates tile bags
type Service struct {
	random random.Random
}

// New creates a new tile bag service
func New(rnd random.Random) *Service {
	return &Service{random: rnd}
}

// NewBag returns a freshly shuffled bag holding the full distribution
func (s *Service) NewBag() *model.Bag {
	tiles := make([]model.Tile, 0, model.TotalTiles)
	for _, spec := range model.TileDistribution {
		for i := 0; i < spec.Count; i++ {
			tiles = append(tiles, model.Tile{
				ID:      uuid.NewString(),
				Letter:  spec.Letter,
				Value:   spec.Value,
				IsBlank: spec.Letter == "",
			})
		}
	}
	bag := &model.Bag{Tiles: tiles}
	s.Shuffle(bag)
	return bag
}

// Shuffle reorders the bag uniformly
func (s *Service) Shuffle(bag *model.Bag) {
	s.random.Shuffle(len(bag.Tiles), func(i, j int) {
		bag.Tiles[i], bag.Tiles[j] = bag.Tiles[j], bag.Tiles[i]
	})
}

// Draw removes up to n tiles from the front of the bag
func Draw(bag *model.Bag, n int) []model.Tile {
	if n <= 0 {
		return nil
	}
	n = min(n, len(bag.Tiles))
	drawn := make([]model.Tile, n)
	copy(drawn, bag.Tiles[:n])
	bag.Tiles = bag.Tiles[n:]
	return drawn
}

// Refill tops the rack up to RackSize, or as far as the bag allows
func Refill(bag *model.Bag, rack model.Rack) model.Rack {
	need := model.RackSize - len(rack)
	if need <= 0 {
		return rack
	}
	return append(rack, Draw(bag, need)...)
}

// Exchange swaps the named rack tiles for fresh draws and reshuffles the bag,
// returning the new rack and how many tiles were swapped. Repeated ids count once.
// The replacements are drawn before the returned tiles go back in.
func (s *Service) Exchange(bag *model.Bag, rack model.Rack, tileIDs []string) (model.Rack, int, error) {
	ids := lo.Uniq(tileIDs)
	if len(ids) == 0 {
		return nil, 0, model.ErrNoTilesToExchange
	}
	if bag.Len() < MinExchangeBag {
		return nil, 0, model.ErrBagTooSmall
	}

	returned := make([]model.Tile, 0, len(ids))
	for _, id := range ids {
		idx := rack.Find(id)
		if idx < 0 {
			return nil, 0, fmt.Errorf("%w: %s", model.ErrTileNotInRack, id)
		}
		returned = append(returned, ResetBlank(rack[idx]))
	}

	kept := rack.Without(ids...)
	kept = append(kept, Draw(bag, len(ids))...)
	bag.Tiles = append(bag.Tiles, returned...)
	s.Shuffle(bag)
	return kept, len(ids), nil
}

// ResetBlank clears any letter assigned to a blank tile
func ResetBlank(t model.Tile) model.Tile {
	if t.IsBlank {
		t.Letter = ""
	}
	return t
}

// Resolve binds client-submitted placements to the authoritative rack tiles.
// Letters and values come from the rack; only a blank takes the submitted letter.
func Resolve(rack model.Rack, submitted []model.PlacedTile) ([]model.PlacedTile, error) {
	used := make(map[string]struct{}, len(submitted))
	out := make([]model.PlacedTile, 0, len(submitted))
	for _, sub := range submitted {
		idx := rack.Find(sub.ID)
		if _, dup := used[sub.ID]; dup || idx < 0 {
			return nil, fmt.Errorf("%w: %s", model.ErrTileNotInRack, sub.ID)
		}
		used[sub.ID] = struct{}{}

		t := rack[idx]
		if t.IsBlank {
			letter := strings.ToUpper(strings.TrimSpace(sub.Letter))
			if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
				return nil, model.ErrInvalidBlank
			}
			t.Letter = letter
		}
		out = append(out, model.PlacedTile{Tile: t, Row: sub.Row, Col: sub.Col})
	}
	return out, nil
}
