package dto

import "time"

// BallotSelection carries the candidate choices for one contest. An empty
// candidate list is an abstention for that contest.
type BallotSelection struct {
	ContestID    uint   `json:"contest_id" validate:"required,min=1"`
	CandidateIDs []uint `json:"candidate_ids" validate:"dive,min=1"`
}

// CastBallotRequest is the full selection set submitted exactly once.
type CastBallotRequest struct {
	Selections []BallotSelection `json:"selections" validate:"required,dive"`
}

// CastBallotResponse acknowledges an accepted ballot.
type CastBallotResponse struct {
	ReceiptID   string    `json:"receipt_id"`
	ElectionID  uint      `json:"election_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}
