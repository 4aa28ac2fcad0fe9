package db

import "time"

type Player struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    uint      `gorm:"index;not null;uniqueIndex:idx_players_room_nickname"`
	PlayerID  string    `gorm:"size:64;not null"`
	Nickname  string    `gorm:"size:64;not null;uniqueIndex:idx_players_room_nickname"`
	AvatarURL string    `gorm:"size:512"`
	IsHost    bool      `gorm:"not null;default:false"`
	Score     int       `gorm:"not null;default:0"`
	JoinedAt  time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
