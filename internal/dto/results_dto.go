package dto

import "time"

// CandidateResult is one candidate's tally within a contest.
type CandidateResult struct {
	CandidateID uint    `json:"candidate_id"`
	Name        string  `json:"name"`
	Party       string  `json:"party,omitempty"`
	Votes       int64   `json:"votes"`
	Percentage  float64 `json:"percentage"`
	Winner      bool    `json:"winner"`
}

// ContestResult aggregates one contest's candidate tallies.
type ContestResult struct {
	ContestID  uint              `json:"contest_id"`
	Title      string            `json:"title"`
	Type       string            `json:"type"`
	TotalVotes int64             `json:"total_votes"`
	Candidates []CandidateResult `json:"candidates"`
}

// ElectionResults is the full tally for an election.
type ElectionResults struct {
	ElectionID   uint            `json:"election_id"`
	Title        string          `json:"title"`
	Status       string          `json:"status"`
	TotalBallots int64           `json:"total_ballots"`
	Contests     []ContestResult `json:"contests"`
	ComputedAt   time.Time       `json:"computed_at"`
	CacheHit     bool            `json:"-"`
}
