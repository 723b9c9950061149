package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/mehmetcc/ppdb/internal/role"
)

// Claims is the payload of a session token. Display fields ride along for
// convenience only; nothing authorizes on them.
type Claims struct {
	Role   role.Role `json:"role"`
	Name   string    `json:"name,omitempty"`
	Gender string    `json:"gender,omitempty"`
	Email  string    `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// AudienceName returns the first audience entry, the only one we mint.
func (c *Claims) AudienceName() string {
	if len(c.RegisteredClaims.Audience) == 0 {
		return ""
	}
	return c.RegisteredClaims.Audience[0]
}
