package domain

import "time"

type User struct {
	Model
	Email            string `gorm:"not null;uniqueIndex"`
	PasswordHash     string
	FullName         string
	AvatarURL        string
	ProfileCompleted bool `gorm:"not null;default:false"`
}

// DisplayName falls back to the email when no name has been set.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

// Session is a signed-in device. The JWT handed to clients carries the
// session ID so sign-out can revoke it.
type Session struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	UserID    uint      `gorm:"not null;index"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`
	ExpiresAt time.Time `gorm:"not null"`
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Active reports whether the session can still authenticate requests.
func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// MagicLink is a single-use sign-in token. Only the SHA-256 of the token is stored.
type MagicLink struct {
	Model
	Email     string    `gorm:"not null;index"`
	TokenHash string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
	UsedAt    *time.Time
}
