package httpx

import (
	"net"
	"net/http"
	"strings"
)

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformMac     Platform = "mac"
	PlatformWindows Platform = "win"
	PlatformLinux   Platform = "linux"
	PlatformWeb     Platform = "web"
)

type DeviceMeta struct {
	DeviceID   string   `header:"X-Device-Id"      validate:"omitempty,min=8,max=128"` // allow UUID/ULID/custom
	DeviceName string   `header:"X-Device-Name"    validate:"omitempty,min=1,max=64"`  // human label
	Platform   Platform `header:"X-Client-Platform" validate:"omitempty,oneof=ios android mac win linux web"`
	AppVersion string   `header:"X-App-Version"    validate:"omitempty,min=1,max=32"` // optional semantic version
	UserAgent  string   `header:"-"                validate:"omitempty,max=256"`      // from r.UserAgent()
	IP         string   `header:"-"                validate:"omitempty,max=64"`       // derived from X-Forwarded-For/RemoteAddr
}

// DeviceMetaFromRequest reads the client headers. Oversized values are
// truncated rather than rejected; they only feed the login history.
func DeviceMetaFromRequest(r *http.Request) DeviceMeta {
	p := Platform(strings.ToLower(r.Header.Get("X-Client-Platform")))
	switch p {
	case PlatformIOS, PlatformAndroid, PlatformMac, PlatformWindows, PlatformLinux, PlatformWeb:
	default:
		p = PlatformWeb
	}
	return DeviceMeta{
		DeviceID:   truncate(r.Header.Get("X-Device-Id"), 128),
		DeviceName: truncate(r.Header.Get("X-Device-Name"), 64),
		Platform:   p,
		AppVersion: truncate(r.Header.Get("X-App-Version"), 32),
		UserAgent:  truncate(r.UserAgent(), 256),
		IP:         truncate(ClientIP(r), 64),
	}
}

// ClientIP prefers the first X-Forwarded-For hop, then RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
