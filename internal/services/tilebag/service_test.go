package tilebag

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordgame-go/internal/dependencies/mocks"
	"github.com/mcoot/wordgame-go/internal/dependencies/random"
	"github.com/mcoot/wordgame-go/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	random  *mocks.MockRandom
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.service = New(s.random)
}

func distribution(tiles []model.Tile) map[string][2]int {
	out := make(map[string][2]int)
	for _, t := range tiles {
		entry := out[t.Letter]
		entry[0]++
		entry[1] = t.Value
		out[t.Letter] = entry
	}
	return out
}

func (s *ServiceSuite) TestNewBagMatchesDistribution() {
	expected := make(map[string][2]int)
	for _, spec := range model.TileDistribution {
		expected[spec.Letter] = [2]int{spec.Count, spec.Value}
	}

	// Any shuffle must preserve the multiset
	for _, svc := range []*Service{s.service, New(random.New()), New(random.New())} {
		bag := svc.NewBag()
		s.Require().Len(bag.Tiles, model.TotalTiles)
		s.Equal(expected, distribution(bag.Tiles))
	}
	s.Equal(1, s.random.ShuffleCalls)
}

func (s *ServiceSuite) TestNewBagAssignsUniqueIDs() {
	bag := s.service.NewBag()
	seen := make(map[string]struct{})
	for _, t := range bag.Tiles {
		s.NotEmpty(t.ID)
		seen[t.ID] = struct{}{}
	}
	s.Len(seen, model.TotalTiles)
}

func (s *ServiceSuite) TestBlanksHaveNoLetter() {
	bag := s.service.NewBag()
	blanks := 0
	for _, t := range bag.Tiles {
		if t.IsBlank {
			blanks++
			s.Empty(t.Letter)
			s.Zero(t.Value)
		}
	}
	s.Equal(2, blanks)
}

func (s *ServiceSuite) TestDrawReturnsFromFront() {
	bag := s.service.NewBag()
	first := bag.Tiles[0]

	drawn := Draw(bag, 7)
	s.Len(drawn, 7)
	s.Equal(first, drawn[0])
	s.Equal(model.TotalTiles-7, bag.Len())
}

func (s *ServiceSuite) TestDrawWithShortBag() {
	bag := &model.Bag{Tiles: []model.Tile{{ID: "a"}, {ID: "b"}}}

	drawn := Draw(bag, 7)
	s.Len(drawn, 2)
	s.Zero(bag.Len())
	s.Empty(Draw(bag, 3))
}

func (s *ServiceSuite) TestRefillTopsUpToRackSize() {
	bag := s.service.NewBag()
	rack := model.Rack{{ID: "x"}, {ID: "y"}}

	rack = Refill(bag, rack)
	s.Len(rack, model.RackSize)
	s.Equal(model.TotalTiles-5, bag.Len())

	rack = Refill(bag, rack)
	s.Len(rack, model.RackSize)
}

func (s *ServiceSuite) TestExchange() {
	bag := s.service.NewBag()
	rack := Refill(bag, nil)
	out := []string{rack[0].ID, rack[1].ID}

	newRack, swapped, err := s.service.Exchange(bag, rack, out)
	s.Require().NoError(err)
	s.Equal(2, swapped)
	s.Len(newRack, model.RackSize)
	s.Equal(model.TotalTiles-model.RackSize, bag.Len())
	s.Less(newRack.Find(out[0]), 0)
	s.Less(newRack.Find(out[1]), 0)
	s.Equal(2, s.random.ShuffleCalls)

	// exchanged tiles went back into the bag
	ids := make(map[string]bool)
	for _, t := range bag.Tiles {
		ids[t.ID] = true
	}
	s.True(ids[out[0]])
	s.True(ids[out[1]])
}

func (s *ServiceSuite) TestExchangeCountsRepeatedIDsOnce() {
	bag := s.service.NewBag()
	rack := Refill(bag, nil)
	id := rack[0].ID

	newRack, swapped, err := s.service.Exchange(bag, rack, []string{id, id, id})
	s.Require().NoError(err)
	s.Equal(1, swapped)
	s.Len(newRack, model.RackSize)
	s.Equal(model.TotalTiles-model.RackSize, bag.Len())
}

func (s *ServiceSuite) TestExchangeRequiresSevenInBag() {
	bag := &model.Bag{Tiles: make([]model.Tile, 6)}
	rack := model.Rack{{ID: "a"}}

	_, _, err := s.service.Exchange(bag, rack, []string{"a"})
	s.ErrorIs(err, model.ErrBagTooSmall)
	s.Equal(6, bag.Len())
}

func (s *ServiceSuite) TestExchangeUnknownTile() {
	bag := s.service.NewBag()
	rack := Refill(bag, nil)

	_, _, err := s.service.Exchange(bag, rack, []string{rack[0].ID, "missing"})
	s.ErrorIs(err, model.ErrTileNotInRack)
	s.Equal(model.TotalTiles-model.RackSize, bag.Len())
}

func (s *ServiceSuite) TestExchangeResetsBlankLetter() {
	bag := s.service.NewBag()
	rack := model.Rack{{ID: "blank", IsBlank: true, Letter: "Q"}}

	_, _, err := s.service.Exchange(bag, rack, []string{"blank"})
	s.Require().NoError(err)
	last := bag.Tiles[bag.Len()-1]
	s.Equal("blank", last.ID)
	s.Empty(last.Letter)
}

func (s *ServiceSuite) TestResolveUsesRackTiles() {
	rack := model.Rack{
		{ID: "e", Letter: "E", Value: 1},
		{ID: "b", IsBlank: true},
	}
	placed, err := Resolve(rack, []model.PlacedTile{
		{Tile: model.Tile{ID: "e", Letter: "Z", Value: 10}, Row: 7, Col: 7},
		{Tile: model.Tile{ID: "b", Letter: "q"}, Row: 7, Col: 8},
	})
	s.Require().NoError(err)
	s.Require().Len(placed, 2)
	s.Equal("E", placed[0].Letter)
	s.Equal(1, placed[0].Value)
	s.Equal("Q", placed[1].Letter)
	s.Zero(placed[1].Value)
	s.Equal(model.Position{Row: 7, Col: 8}, placed[1].Position())
}

func (s *ServiceSuite) TestResolveRejectsUnknownAndDuplicateTiles() {
	rack := model.Rack{{ID: "e", Letter: "E", Value: 1}}

	_, err := Resolve(rack, []model.PlacedTile{{Tile: model.Tile{ID: "x"}}})
	s.ErrorIs(err, model.ErrTileNotInRack)

	_, err = Resolve(rack, []model.PlacedTile{{Tile: model.Tile{ID: "e"}}, {Tile: model.Tile{ID: "e"}, Col: 1}})
	s.ErrorIs(err, model.ErrTileNotInRack)
}

func (s *ServiceSuite) TestResolveRequiresBlankLetter() {
	rack := model.Rack{{ID: "b", IsBlank: true}}

	for _, letter := range []string{"", "1", "AB"} {
		_, err := Resolve(rack, []model.PlacedTile{{Tile: model.Tile{ID: "b", Letter: letter}}})
		s.ErrorIs(err, model.ErrInvalidBlank, letter)
	}
}
