package game

import (
	"sync"

	"github.com/google/uuid"
)

// Directory maps connected identities to player profiles. It lives for
// the process lifetime; entries are created on register and dropped on
// disconnect.
type Directory struct {
	mu      sync.RWMutex
	players map[uuid.UUID]*Player
}

// NewDirectory creates an empty connection directory.
func NewDirectory() *Directory {
	return &Directory{
		players: make(map[uuid.UUID]*Player),
	}
}

// Register creates or replaces the player record for an identity.
func (d *Directory) Register(id uuid.UUID, name string, rating int) *Player {
	d.mu.Lock()
	defer d.mu.Unlock()

	player := &Player{ID: id, Name: name, Rating: rating}
	d.players[id] = player

	return player
}

// Get returns the player for an identity.
func (d *Directory) Get(id uuid.UUID) (*Player, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	player, ok := d.players[id]
	return player, ok
}

// Remove drops the player record for an identity, if present.
func (d *Directory) Remove(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.players, id)
}

// Count returns the number of registered players.
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.players)
}
