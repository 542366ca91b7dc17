package models

import "time"

// Subscriber is a newsletter subscription keyed by email.
// Delivery of newsletters is owned by an external system; this table only
// records who is subscribed.
type Subscriber struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"unique;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
