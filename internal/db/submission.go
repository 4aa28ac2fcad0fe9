package db

import "time"

type Submission struct {
	ID         uint      `gorm:"primaryKey"`
	RoomID     uint      `gorm:"index;not null;uniqueIndex:idx_submissions_room_round_creator"`
	Round      int       `gorm:"not null;uniqueIndex:idx_submissions_room_round_creator"`
	CreatorID  string    `gorm:"size:64;not null;uniqueIndex:idx_submissions_room_round_creator"`
	TargetID   string    `gorm:"size:64;not null"`
	TemplateID string    `gorm:"size:64;not null"`
	Caption    string    `gorm:"size:280;not null"`
	ImageURL   string    `gorm:"size:1024"`
	Failed     bool      `gorm:"not null;default:false"`
	Stars      int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
	Votes      []Vote
}
