package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/wordgame-go/internal/dependencies/mocks"
	"github.com/mcoot/wordgame-go/internal/services/auth"
	"github.com/mcoot/wordgame-go/internal/services/bot"
	"github.com/mcoot/wordgame-go/internal/services/game"
	"github.com/mcoot/wordgame-go/internal/services/room"
	"github.com/mcoot/wordgame-go/internal/storage/memory"
	"github.com/mcoot/wordgame-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	MemoryStorage *memory.Storage
	MemoryArchive *memory.Archive

	// Mocks for test control
	MockClock     *mocks.MockClock
	MockRandom    *mocks.MockRandom
	MockScheduler *mocks.MockScheduler
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The mock random never shuffles, so bags deal in distribution order.
func NewTestApp() *TestApp {
	store := memory.New()
	archive := memory.NewArchive()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockScheduler := mocks.NewMockScheduler()

	app := newWithDependencies(dependencies{
		storage:       store,
		archive:       archive,
		clock:         mockClock,
		random:        mockRandom,
		scheduler:     mockScheduler,
		authConfig:    auth.Config{Secret: "test-secret", SessionDuration: auth.DefaultConfig().SessionDuration},
		gameConfig:    game.DefaultConfig(),
		roomConfig:    room.DefaultConfig(),
		botConfig:     bot.DefaultConfig(),
		seatTokenCost: bcrypt.MinCost,
		logger:        testutil.NopLogger(),
	})

	return &TestApp{
		App:           app,
		MemoryStorage: store,
		MemoryArchive: archive,
		MockClock:     mockClock,
		MockRandom:    mockRandom,
		MockScheduler: mockScheduler,
	}
}

// LoadTestDictionary loads a small dictionary for testing
func (t *TestApp) LoadTestDictionary() error {
	words := []string{
		// 2-letter words
		"aa", "ab", "ad", "ba", "at", "ta", "be", "do", "go", "in", "is", "it",
		// 3-letter words
		"aba", "baa", "cab", "cad", "cat", "act", "bat", "tab", "bad", "dab",
		"add", "dad", "ace", "bed", "bee", "dee",
		// 4-letter words
		"abed", "bead", "dace", "aced", "cade",
	}
	return t.DictionaryService.LoadWords(words)
}
