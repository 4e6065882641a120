package persistence

import "time"

// WatchedCRL is one entry on the serve-mode watch list. The last run's
// outcome is recorded on the row itself.
type WatchedCRL struct {
	Server      string `gorm:"primaryKey"`
	Path        string `gorm:"primaryKey"`
	Name        string `gorm:"primaryKey"`
	LastChecked time.Time
	Status      int
	Message     string
	ExpiresAt   time.Time
}
