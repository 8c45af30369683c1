package services

import (
	"sort"
	"strings"
	"sync"

	"arena-ledger/domain/interfaces"
)

// GameRegistry is the process-wide set of games that accept scores
type GameRegistry struct {
	games map[string]struct{}
	mu    sync.RWMutex
}

// NewGameRegistry creates a registry preloaded with games
func NewGameRegistry(games ...string) *GameRegistry {
	r := &GameRegistry{games: make(map[string]struct{})}
	for _, g := range games {
		r.Register(g)
	}
	return r
}

var _ interfaces.GameRegistry = (*GameRegistry)(nil)

// Register adds a game. Names are case-insensitive.
func (r *GameRegistry) Register(game string) {
	game = normalizeGame(game)
	if game == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[game] = struct{}{}
}

// IsSupported reports whether scores for game are accepted
func (r *GameRegistry) IsSupported(game string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.games[normalizeGame(game)]
	return ok
}

// Games returns the registered games in sorted order
func (r *GameRegistry) Games() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.games))
	for g := range r.games {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

func normalizeGame(game string) string {
	return strings.ToLower(strings.TrimSpace(game))
}
