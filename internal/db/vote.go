package db

import "time"

type Vote struct {
	ID           uint      `gorm:"primaryKey"`
	SubmissionID uint      `gorm:"index;not null;uniqueIndex:idx_votes_submission_voter"`
	VoterID      string    `gorm:"size:64;not null;uniqueIndex:idx_votes_submission_voter"`
	Stars        int       `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}
