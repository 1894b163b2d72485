package game

import (
	"github.com/google/uuid"

	"github.com/tecu23/match-server/pkg/messages"
)

// Player is a registered connection's public profile. The identity is
// the connection id assigned at upgrade time. Owned by the Directory;
// sessions hold references only.
type Player struct {
	ID     uuid.UUID
	Name   string
	Rating int
}

// Info returns the wire representation of the player.
func (p *Player) Info() messages.PlayerInfo {
	return messages.PlayerInfo{
		ID:     p.ID.String(),
		Name:   p.Name,
		Rating: p.Rating,
	}
}
