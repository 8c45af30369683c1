package entities

import "time"

// TournamentStatus is the lifecycle state of a tournament
type TournamentStatus string

const (
	TournamentStatusUpcoming  TournamentStatus = "upcoming"
	TournamentStatusOngoing   TournamentStatus = "ongoing"
	TournamentStatusCompleted TournamentStatus = "completed"
)

// Tournament is a timed competition whose prize pool is split among the top scorers
type Tournament struct {
	ID               int64            `db:"id" json:"id"`
	Name             string           `db:"name" json:"name"`
	GameName         string           `db:"game_name" json:"gameName"`
	RoomID           string           `db:"room_id" json:"roomId"`
	TournamentType   Currency         `db:"tournament_type" json:"tournamentType"`
	PrizePool        int64            `db:"prize_pool" json:"prizePool"`
	Status           TournamentStatus `db:"status" json:"status"`
	PrizeDistributed bool             `db:"prize_distributed" json:"prizeDistributed"`
	StartsAt         time.Time        `db:"starts_at" json:"startsAt"`
	EndsAt           time.Time        `db:"ends_at" json:"endsAt"`
	CompletedAt      *time.Time       `db:"completed_at" json:"completedAt,omitempty"`
	DistributedAt    *time.Time       `db:"distributed_at" json:"distributedAt,omitempty"`
	CreatedAt        time.Time        `db:"created_at" json:"createdAt"`
}

// IsCompleted returns true once the tournament has been closed
func (t *Tournament) IsCompleted() bool {
	return t.Status == TournamentStatusCompleted
}

// ReadyForDistribution returns true if prizes are owed and not yet paid
func (t *Tournament) ReadyForDistribution() bool {
	return t.IsCompleted() && !t.PrizeDistributed
}

// AcceptsScores returns true while the tournament is running at the given time
func (t *Tournament) AcceptsScores(now time.Time) bool {
	return t.Status == TournamentStatusOngoing && now.Before(t.EndsAt)
}

// HasEnded returns true if the scheduled end time has passed
func (t *Tournament) HasEnded(now time.Time) bool {
	return !now.Before(t.EndsAt)
}

// Score is a user's best score in a room for a game
type Score struct {
	ID        int64     `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	RoomID    string    `db:"room_id" json:"roomId"`
	GameName  string    `db:"game_name" json:"gameName"`
	Score     int64     `db:"score" json:"score"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// LeaderboardEntry is one ranked participant
type LeaderboardEntry struct {
	Rank       int       `json:"rank"`
	UserID     string    `json:"userId"`
	Score      int64     `json:"score"`
	AchievedAt time.Time `json:"achievedAt"`
}

// PrizePayout is one credit made during prize distribution
type PrizePayout struct {
	Rank      int    `json:"rank"`
	UserID    string `json:"userId"`
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
}
