package models

import "time"

// Eligibility statuses.
const (
	EligibilityStatusEligible = "eligible"
	EligibilityStatusVoted    = "voted"
	EligibilityStatusDisabled = "disabled"
)

// VoterEligibility is the per-election allow-list row. Its presence is the
// sole authorization gate for voting in that election.
type VoterEligibility struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ElectionID uint      `gorm:"index:idx_eligibility_election_user,unique;not null" json:"election_id"`
	UserID     uint      `gorm:"index:idx_eligibility_election_user,unique;not null" json:"user_id"`
	Status     string    `gorm:"size:32;not null;default:eligible" json:"status"`
	AddedAt    time.Time `gorm:"autoCreateTime" json:"added_at"`

	User User `json:"user"`
}

// Ballot records one completed submission per (voter, election). The
// composite unique index is the database-level double-vote guard.
type Ballot struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index:idx_ballots_user_election,unique;not null" json:"user_id"`
	ElectionID  uint      `gorm:"index:idx_ballots_user_election,unique;not null" json:"election_id"`
	ReceiptID   string    `gorm:"size:64;uniqueIndex;not null" json:"receipt_id"`
	SubmittedAt time.Time `gorm:"autoCreateTime" json:"submitted_at"`

	Votes []Vote `json:"votes"`
}

// Vote is one row per selected candidate. A contest with zero rows in a
// ballot is an abstention.
type Vote struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	BallotID    uint      `gorm:"index;not null" json:"ballot_id"`
	ElectionID  uint      `gorm:"index;not null" json:"election_id"`
	ContestID   uint      `gorm:"index;not null" json:"contest_id"`
	CandidateID uint      `gorm:"index;not null" json:"candidate_id"`
	CreatedAt   time.Time `json:"created_at"`
}
