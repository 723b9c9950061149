package audit

import (
	"time"

	"github.com/mehmetcc/ppdb/internal/httpx"
)

// LoginEvent is one successful login. It is history only; sessions are
// never looked up here, so deleting rows cannot end a session.
type LoginEvent struct {
	ID         string         `json:"id"`
	PersonID   int64          `json:"-"`
	Audience   string         `json:"audience"`
	DeviceID   string         `json:"device_id,omitempty"`
	DeviceName string         `json:"device_name,omitempty"`
	Platform   httpx.Platform `json:"platform,omitempty"`
	IP         string         `json:"ip,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func NewLoginEvent(personID int64, audience string, meta httpx.DeviceMeta) LoginEvent {
	return LoginEvent{
		PersonID:   personID,
		Audience:   audience,
		DeviceID:   meta.DeviceID,
		DeviceName: meta.DeviceName,
		Platform:   meta.Platform,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	}
}
