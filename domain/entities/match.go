package entities

import "time"

// MaxPlayersPerMatch is the number of seats in a head-to-head match
const MaxPlayersPerMatch = 2

// MatchStatus is the lifecycle state of a match
type MatchStatus string

const (
	MatchStatusWaiting   MatchStatus = "waiting"
	MatchStatusActive    MatchStatus = "active"
	MatchStatusCompleted MatchStatus = "completed"
)

// MatchPlayer is one seat in a match
type MatchPlayer struct {
	MatchID    string    `db:"match_id" json:"-"`
	PlayerID   string    `db:"player_id" json:"playerId"`
	PlayerName string    `db:"player_name" json:"playerName"`
	Seat       int       `db:"seat" json:"seat"`
	Score      *int64    `db:"score" json:"score"`
	JoinedAt   time.Time `db:"joined_at" json:"joinedAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// HasScore returns true once the player has submitted a score
func (p *MatchPlayer) HasScore() bool {
	return p.Score != nil
}

// Match is a head-to-head game between two players with a shared pot
type Match struct {
	MatchID   string        `db:"match_id" json:"matchId"`
	Game      string        `db:"game" json:"game"`
	EntryFee  int64         `db:"entry_fee" json:"entryFee"`
	Currency  Currency      `db:"currency" json:"currency"`
	Status    MatchStatus   `db:"status" json:"status"`
	Winner    *string       `db:"winner" json:"winner"`
	IsDraw    bool          `db:"is_draw" json:"isDraw"`
	SettledAt *time.Time    `db:"settled_at" json:"settledAt,omitempty"`
	Players   []MatchPlayer `json:"players"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time     `db:"updated_at" json:"updatedAt"`
}

// IsCompleted returns true once the outcome is recorded
func (m *Match) IsCompleted() bool {
	return m.Status == MatchStatusCompleted
}

// Player returns the seat held by playerID, or nil
func (m *Match) Player(playerID string) *MatchPlayer {
	for i := range m.Players {
		if m.Players[i].PlayerID == playerID {
			return &m.Players[i]
		}
	}
	return nil
}

// IsFull returns true when no seat is left
func (m *Match) IsFull() bool {
	return len(m.Players) >= MaxPlayersPerMatch
}

// NextSeat returns the seat number a joining player would take
func (m *Match) NextSeat() int {
	return len(m.Players) + 1
}

// AllScored returns true when both seats are taken and both players have scores
func (m *Match) AllScored() bool {
	if len(m.Players) < MaxPlayersPerMatch {
		return false
	}
	for i := range m.Players {
		if !m.Players[i].HasScore() {
			return false
		}
	}
	return true
}

// DeriveStatus returns the status implied by the current seats and scores
func (m *Match) DeriveStatus() MatchStatus {
	switch {
	case m.AllScored():
		return MatchStatusCompleted
	case m.IsFull():
		return MatchStatusActive
	default:
		return MatchStatusWaiting
	}
}

// DecideOutcome compares the two scores. The higher score wins; equal scores are a draw.
// It returns ok=false while the match cannot be decided yet.
func (m *Match) DecideOutcome() (winner *string, draw bool, ok bool) {
	if !m.AllScored() {
		return nil, false, false
	}

	a, b := m.Players[0], m.Players[1]
	switch {
	case *a.Score > *b.Score:
		id := a.PlayerID
		return &id, false, true
	case *b.Score > *a.Score:
		id := b.PlayerID
		return &id, false, true
	default:
		return nil, true, true
	}
}

// Pot returns the amount paid to a decisive winner
func (m *Match) Pot() int64 {
	return MaxPlayersPerMatch * m.EntryFee
}
