package passage

import (
	"bufio"
	"context"
	"os"
	"strings"
	"sync"

	"github.com/okeefe/typeduel/internal/dependencies/random"
	"github.com/okeefe/typeduel/internal/storage"
)

// defaultPassages is the built-in pool used when no custom passages are
// loaded. Every player in a room types against the same passage.
var defaultPassages = []string{
	"The art of typing quickly and accurately takes time to master. Every keystroke you make improves your rhythm and focus, helping you build the precision and confidence needed to express thoughts smoothly through the keyboard.",

	"Programming is not just about writing lines of code; it's about solving problems creatively. The best developers write code that others can understand, reuse, and improve, making teamwork and collaboration an essential part of every project.",

	"Success in any skill requires consistent effort and patience. Even when progress feels slow, each small improvement adds up over time. The journey of learning becomes rewarding when you enjoy the process rather than rushing the results.",

	"Technology evolves faster than ever before, and those who keep learning always stay ahead. Continuous curiosity, exploration, and practice turn ordinary individuals into innovators who create tools and systems that change how the world works.",

	"Every typist develops their own rhythm, shaped by habit and experience. The sound of clicking keys becomes music to their ears, a pattern of focus and flow that turns words into meaning and speed into satisfaction.",
}

// Service selects race passages for new rooms
type Service struct {
	storage storage.Storage
	random  random.Random

	mu       sync.RWMutex
	passages []string
}

// New creates a new passage service with the built-in pool
func New(storage storage.Storage, random random.Random) *Service {
	return &Service{
		storage:  storage,
		random:   random,
		passages: defaultPassages,
	}
}

// LoadFromStorage loads the passage pool from storage, keeping the built-in
// pool if storage holds none
func (s *Service) LoadFromStorage(ctx context.Context) error {
	passages, err := s.storage.GetPassages(ctx)
	if err != nil {
		return err
	}
	if len(passages) == 0 {
		return nil
	}
	s.setPassages(passages)
	return nil
}

// LoadFromFile loads passages from a file (one passage per line) and saves
// them to storage for future use
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var passages []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			passages = append(passages, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if len(passages) == 0 {
		return nil
	}

	if err := s.storage.SavePassages(ctx, passages); err != nil {
		return err
	}

	s.setPassages(passages)
	return nil
}

// LoadPassages directly loads a slice of passages (useful for testing)
func (s *Service) LoadPassages(passages []string) {
	s.setPassages(passages)
}

func (s *Service) setPassages(passages []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passages = make([]string, len(passages))
	copy(s.passages, passages)
}

// Pick returns a random passage from the pool
func (s *Service) Pick() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.passages) == 0 {
		return ""
	}
	return s.passages[s.random.Intn(len(s.passages))]
}

// Count returns the size of the current pool
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.passages)
}
