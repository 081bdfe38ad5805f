package dictionary

import (
	"bufio"
	"context"
	_ "embed"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/mcoot/wordgame-go/internal/model"
	"github.com/mcoot/wordgame-go/internal/storage"
)

// Small fixed lexicon used when no dictionary file is configured
//
//go:embed words.txt
var embeddedWords string

// Service provides dictionary/word validation functionality
type Service struct {
	storage storage.Storage

	mu     sync.RWMutex
	words  map[string]struct{}
	sorted []string // uppercase, sorted by length then alphabetically
	loaded bool
}

// New creates a new DictionaryService
func New(storage storage.Storage) *Service {
	return &Service{
		storage: storage,
		words:   make(map[string]struct{}),
	}
}

// LoadDefault loads the embedded word list
func (s *Service) LoadDefault() error {
	words, err := readWords(strings.NewReader(embeddedWords))
	if err != nil {
		return err
	}
	return s.loadWords(words)
}

// Load loads from path when set, then from storage, falling back to the embedded list
func (s *Service) Load(ctx context.Context, path string) error {
	if path != "" {
		return s.LoadFromFile(ctx, path)
	}
	words, err := s.storage.GetDictionaryWords(ctx)
	if err == nil && len(words) > 0 {
		return s.loadWords(words)
	}
	return s.LoadDefault()
}

// LoadFromStorage loads dictionary words from storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	words, err := s.storage.GetDictionaryWords(ctx)
	if err != nil {
		return err
	}
	return s.loadWords(words)
}

// LoadFromFile loads dictionary words from a file (one word per line)
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	words, err := readWords(file)
	if err != nil {
		return err
	}

	// Save to storage for future use
	if err := s.storage.SaveDictionaryWords(ctx, words); err != nil {
		return err
	}

	return s.loadWords(words)
}

// LoadWords directly loads a slice of words (useful for testing)
func (s *Service) LoadWords(words []string) error {
	return s.loadWords(words)
}

func readWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" && !strings.HasPrefix(word, "#") {
			words = append(words, word)
		}
	}
	return words, scanner.Err()
}

func (s *Service) loadWords(words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.words = make(map[string]struct{}, len(words))
	for _, word := range words {
		// Store lowercase for case-insensitive matching
		s.words[strings.ToLower(word)] = struct{}{}
	}
	s.sorted = make([]string, 0, len(s.words))
	for word := range s.words {
		s.sorted = append(s.sorted, strings.ToUpper(word))
	}
	sort.Slice(s.sorted, func(i, j int) bool {
		if len(s.sorted[i]) != len(s.sorted[j]) {
			return len(s.sorted[i]) < len(s.sorted[j])
		}
		return s.sorted[i] < s.sorted[j]
	})
	s.loaded = true
	return nil
}

// IsValidWord checks if a word exists in the dictionary
// Words must be at least 2 characters
func (s *Service) IsValidWord(word string) bool {
	if len(word) < 2 {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return false
	}

	_, ok := s.words[strings.ToLower(word)]
	return ok
}

// IsLoaded returns whether the dictionary has been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// WordCount returns the number of words in the dictionary
func (s *Service) WordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

// Words returns every word in uppercase with length in [minLen, maxLen]
func (s *Service) Words(minLen, maxLen int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for _, w := range s.sorted {
		if len(w) < minLen {
			continue
		}
		if len(w) > maxLen {
			break
		}
		out = append(out, w)
	}
	return out
}

// Interface check
type ServiceInterface interface {
	IsValidWord(word string) bool
	IsLoaded() bool
	WordCount() int
	Words(minLen, maxLen int) []string
	Load(ctx context.Context, path string) error
	LoadDefault() error
	LoadFromStorage(ctx context.Context) error
	LoadFromFile(ctx context.Context, path string) error
	LoadWords(words []string) error
}

var _ ServiceInterface = (*Service)(nil)

// ErrDictionaryNotLoaded is returned when operations are attempted before loading
var ErrDictionaryNotLoaded = model.ErrDictionaryNotLoaded
