package models

import "time"

// Election statuses.
const (
	ElectionStatusDraft     = "draft"
	ElectionStatusUpcoming  = "upcoming"
	ElectionStatusActive    = "active"
	ElectionStatusCompleted = "completed"
	ElectionStatusCancelled = "cancelled"
)

// Contest types.
const (
	ContestTypeChooseOne = "choose_one"
	ContestTypeYesNo     = "yes_no"
)

// Election is a time-boxed voting event containing one or more contests.
type Election struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Status      string    `gorm:"size:32;not null;default:draft;index" json:"status"`
	StartsAt    time.Time `gorm:"not null" json:"starts_at"`
	EndsAt      time.Time `gorm:"not null" json:"ends_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Contests []Contest `json:"contests"`
}

// Contest is a single decision within an election.
type Contest struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ElectionID    uint      `gorm:"index;not null" json:"election_id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Type          string    `gorm:"size:32;not null;default:choose_one" json:"type"`
	MaxSelections int       `gorm:"not null;default:1" json:"max_selections"`
	Position      int       `gorm:"not null;default:0" json:"position"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Candidates []Candidate `json:"candidates"`
}

// Candidate is a selectable option within a contest.
type Candidate struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ContestID   uint      `gorm:"index;not null" json:"contest_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Party       string    `gorm:"size:255" json:"party"`
	Description string    `gorm:"type:text" json:"description"`
	PhotoURL    string    `gorm:"size:512" json:"photo_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// VotingOpen reports whether ballots may be cast: the election must be
// active and now must fall inside its window.
func (e Election) VotingOpen(now time.Time) bool {
	if e.Status != ElectionStatusActive {
		return false
	}
	return !now.Before(e.StartsAt) && now.Before(e.EndsAt)
}
