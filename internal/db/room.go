package db

import "time"

type Room struct {
	ID          uint      `gorm:"primaryKey"`
	Code        string    `gorm:"size:8;index;not null"`
	Status      string    `gorm:"size:32;not null"`
	Rounds      int       `gorm:"not null;default:4"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	Players     []Player
	Submissions []Submission
	Events      []Event
}
