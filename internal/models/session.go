package models

import "time"

// Session is a login session stored in PostgreSQL. The JWT handed to the
// client carries its ID, so revoking the row logs the client out.
type Session struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	UserID    string     `json:"user_id" gorm:"size:24;index"`
	UserAgent string     `json:"user_agent" gorm:"size:255"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"index"`
	RevokedAt *time.Time `json:"revoked_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// ActiveAt reports whether the session can still authenticate requests.
func (s *Session) ActiveAt(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
