package bot_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordgame-go/internal/dependencies/mocks"
	"github.com/mcoot/wordgame-go/internal/model"
	"github.com/mcoot/wordgame-go/internal/services/board"
	"github.com/mcoot/wordgame-go/internal/services/bot"
	"github.com/mcoot/wordgame-go/internal/services/dictionary"
	"github.com/mcoot/wordgame-go/internal/services/scoring"
	"github.com/mcoot/wordgame-go/internal/storage/memory"
	"github.com/mcoot/wordgame-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	mockRandom *mocks.MockRandom
	dictionary *dictionary.Service
	scoring    *scoring.Service
	service    *bot.Service
	board      *model.Board
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.mockRandom = mocks.NewMockRandom()
	s.dictionary = dictionary.New(memory.New())
	s.Require().NoError(s.dictionary.LoadWords([]string{"at", "cat", "act", "cats", "scat", "scats", "to"}))
	s.scoring = scoring.New(s.dictionary, board.New())
	s.service = s.newService(bot.DefaultConfig())
	s.board = model.NewBoard()
}

func (s *ServiceSuite) newService(cfg bot.Config) *bot.Service {
	return bot.NewService(s.scoring, s.dictionary, bot.DefaultStrategies(s.mockRandom), cfg, testutil.NopLogger())
}

func rackOf(letters ...string) model.Rack {
	rack := make(model.Rack, 0, len(letters))
	for i, l := range letters {
		t := model.Tile{ID: string(rune('a' + i)), Letter: l, Value: model.LetterValue(l)}
		if l == "?" {
			t = model.Tile{ID: string(rune('a' + i)), IsBlank: true}
		}
		rack = append(rack, t)
	}
	return rack
}

func (s *ServiceSuite) seedCat() {
	s.board.Apply([]model.PlacedTile{
		{Tile: model.Tile{ID: "c", Letter: "C", Value: 3}, Row: 7, Col: 6},
		{Tile: model.Tile{ID: "a", Letter: "A", Value: 1}, Row: 7, Col: 7},
		{Tile: model.Tile{ID: "t", Letter: "T", Value: 1}, Row: 7, Col: 8},
	})
}

func (s *ServiceSuite) TestOpeningCandidatesRanked() {
	ranked := s.service.Candidates(s.board, rackOf("C", "A", "T", "S", "X", "Q", "Z"), true)

	words := make([]string, 0, len(ranked))
	for _, c := range ranked {
		words = append(words, c.MainWord())
		for _, p := range c.Placed {
			s.Equal(model.Center.Row, p.Row)
		}
	}
	s.Equal([]string{"CATS", "SCAT", "ACT", "CAT", "AT"}, words)
	s.Equal(12, ranked[0].Score)
	s.Equal(4, ranked[4].Score)
}

func (s *ServiceSuite) TestOpeningIsCentered() {
	ranked := s.service.Candidates(s.board, rackOf("A", "T"), true)
	s.Require().Len(ranked, 1)
	s.Equal(7, ranked[0].Placed[0].Col)
	s.Equal(8, ranked[0].Placed[1].Col)
}

func (s *ServiceSuite) TestOpeningUsesBlankAsWildcard() {
	ranked := s.service.Candidates(s.board, rackOf("A", "?"), true)
	s.Require().Len(ranked, 1)

	c := ranked[0]
	s.Equal("AT", c.MainWord())
	s.True(c.Placed[1].IsBlank)
	s.Equal("T", c.Placed[1].Letter)
	s.Equal(2, c.Score)
}

func (s *ServiceSuite) TestGenerateByDifficulty() {
	rack := rackOf("C", "A", "T", "S", "X", "Q", "Z")

	c, ok := s.service.Generate(s.board, rack, model.DifficultyHard, true)
	s.Require().True(ok)
	s.Equal("CATS", c.MainWord())

	s.mockRandom.QueueIntn(2)
	c, ok = s.service.Generate(s.board, rack, model.DifficultyMedium, true)
	s.Require().True(ok)
	s.Equal("ACT", c.MainWord())

	s.mockRandom.QueueIntn(1)
	c, ok = s.service.Generate(s.board, rack, model.DifficultyEasy, true)
	s.Require().True(ok)
	s.Equal("CAT", c.MainWord())
}

func (s *ServiceSuite) TestAnchorSearchExtendsBoard() {
	s.seedCat()

	ranked := s.service.Candidates(s.board, rackOf("S", "O"), false)

	byWord := make(map[string]bot.Candidate)
	for _, c := range ranked {
		byWord[c.MainWord()] = c
	}
	s.Contains(byWord, "CATS")
	s.Contains(byWord, "TO")
	s.Equal(6, byWord["CATS"].Score)

	// every candidate must survive full evaluation
	for _, c := range ranked {
		_, err := s.scoring.Evaluate(s.board, c.Placed, false)
		s.NoError(err, c.MainWord())
	}
}

func (s *ServiceSuite) TestMaxNewTilesLimitsSearch() {
	s.seedCat()
	rack := rackOf("S", "S")

	words := func(svc *bot.Service) []string {
		var out []string
		for _, c := range svc.Candidates(s.board, rack, false) {
			out = append(out, c.MainWord())
		}
		return out
	}

	s.Contains(words(s.service), "SCATS")
	limited := words(s.newService(bot.Config{MaxNewTiles: 1}))
	s.Contains(limited, "CATS")
	s.NotContains(limited, "SCATS")
}

func (s *ServiceSuite) TestNoCandidatePasses() {
	s.seedCat()
	_, ok := s.service.Generate(s.board, rackOf("Q", "Z"), model.DifficultyHard, false)
	s.False(ok)
}

func (s *ServiceSuite) TestEmptyRack() {
	_, ok := s.service.Generate(s.board, nil, model.DifficultyHard, true)
	s.False(ok)
}
