package audit

import (
	"testing"

	"github.com/mehmetcc/ppdb/internal/httpx"
	"github.com/stretchr/testify/assert"
)

func TestNewLoginEvent(t *testing.T) {
	ev := NewLoginEvent(42, "staff", httpx.DeviceMeta{
		DeviceID:  "device-123",
		Platform:  httpx.PlatformMac,
		IP:        "203.0.113.9",
		UserAgent: "Mozilla/5.0",
	})
	assert.Equal(t, int64(42), ev.PersonID)
	assert.Equal(t, "staff", ev.Audience)
	assert.Equal(t, "device-123", ev.DeviceID)
	assert.Equal(t, httpx.PlatformMac, ev.Platform)
	assert.Equal(t, "203.0.113.9", ev.IP)
	assert.Empty(t, ev.ID)
}
