package models

import "time"

// OTP channels.
const (
	OTPChannelEmail = "email"
	OTPChannelSMS   = "sms"
)

// OTPCode stores a hashed one-time code with its expiry. The plain code is
// only ever dispatched out-of-band, never persisted.
type OTPCode struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Channel     string     `gorm:"size:16;index:idx_otp_channel_destination;not null" json:"channel"`
	Destination string     `gorm:"size:255;index:idx_otp_channel_destination;not null" json:"destination"`
	CodeHash    string     `gorm:"size:128;not null" json:"-"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	Consumed    bool       `gorm:"not null;default:false" json:"consumed"`
	CreatedAt   time.Time  `json:"created_at"`
}
