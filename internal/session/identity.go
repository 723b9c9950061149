package session

import (
	"context"
	"time"

	"github.com/mehmetcc/ppdb/internal/role"
)

// Identity is who a verified request belongs to.
type Identity struct {
	ID        string    `json:"id"`
	Role      role.Role `json:"role"`
	Name      string    `json:"name,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	Email     string    `json:"email,omitempty"`
	Audience  string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	return id, ok && id != nil
}
