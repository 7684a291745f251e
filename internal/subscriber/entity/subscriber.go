package entity

import "time"

// Subscriber is a push delivery target, addressed by a shoutrrr service URL.
type Subscriber struct {
	ID        string    `json:"id" db:"id"`
	URL       string    `json:"url" db:"url"`
	Label     string    `json:"label,omitempty" db:"label"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
