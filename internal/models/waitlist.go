package models

import "time"

// WaitlistEntry is one signup. Email is stored normalized and is unique.
type WaitlistEntry struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"size:320;not null;uniqueIndex:idx_waitlist_email"`
	CreatedAt time.Time `gorm:"not null;index:idx_waitlist_created_at"`
}

func (WaitlistEntry) TableName() string {
	return "waitlist"
}
