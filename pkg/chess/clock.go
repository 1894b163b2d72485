package chess

import (
	"sync"
	"time"
)

// TimeControl defines the initial time budgets for a game.
type TimeControl struct {
	WhiteTime int64 // Initial time in milliseconds
	BlackTime int64
}

// RemainingTime is a point-in-time reading of both budgets.
type RemainingTime struct {
	White int64
	Black int64
}

// Clock manages the countdown budgets for both players. Elapsed
// wall-clock time is attributed to the active side at each checkpoint;
// between checkpoints nothing moves, so the session decides exactly
// when time is charged and to whom.
type Clock struct {
	whiteTimeMs int64
	blackTimeMs int64

	activeColor    Color
	lastCheckpoint time.Time

	mutex sync.RWMutex
}

// NewClock creates a clock with the given time control. White is the
// active side and the first checkpoint interval starts at start.
func NewClock(tc TimeControl, start time.Time) *Clock {
	return &Clock{
		whiteTimeMs:    tc.WhiteTime,
		blackTimeMs:    tc.BlackTime,
		activeColor:    White,
		lastCheckpoint: start,
	}
}

// Checkpoint charges the wall-clock interval since the previous
// checkpoint to the active side, flooring the budget at zero, and
// starts a new interval at now. It returns the remaining times after
// the charge.
func (c *Clock) Checkpoint(now time.Time) RemainingTime {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	elapsed := now.Sub(c.lastCheckpoint).Milliseconds()
	if elapsed > 0 {
		if c.activeColor == White {
			c.whiteTimeMs -= elapsed
			if c.whiteTimeMs < 0 {
				c.whiteTimeMs = 0
			}
		} else {
			c.blackTimeMs -= elapsed
			if c.blackTimeMs < 0 {
				c.blackTimeMs = 0
			}
		}
	}
	c.lastCheckpoint = now

	return RemainingTime{White: c.whiteTimeMs, Black: c.blackTimeMs}
}

// Switch flips the active side. Callers checkpoint first so the
// interval spanning a move is charged to the mover.
func (c *Clock) Switch() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.activeColor = c.activeColor.Opp()
}

// GetRemainingTime returns the budgets as of the last checkpoint.
func (c *Clock) GetRemainingTime() RemainingTime {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return RemainingTime{White: c.whiteTimeMs, Black: c.blackTimeMs}
}

// Flagged returns the side whose budget is exhausted, if any.
func (c *Clock) Flagged() (Color, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.whiteTimeMs <= 0 {
		return White, true
	}
	if c.blackTimeMs <= 0 {
		return Black, true
	}

	return "", false
}
