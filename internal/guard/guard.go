package guard

import (
	"context"
	"errors"
	"sync"

	"github.com/mehmetcc/ppdb/internal/role"
	"go.uber.org/zap"
)

type State int

const (
	Checking State = iota
	Authorized
	Unauthorized
)

func (s State) String() string {
	switch s {
	case Checking:
		return "checking"
	case Authorized:
		return "authorized"
	case Unauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// ErrUnauthenticated is returned by a Checker when the server does not
// recognise the session. Any other error is treated the same way.
var ErrUnauthenticated = errors.New("not authenticated")

// User is what the verify endpoint tells us about the session.
type User struct {
	ID    string    `json:"id"`
	Email string    `json:"email"`
	Role  role.Role `json:"role"`
}

type Checker interface {
	Check(ctx context.Context) (*User, error)
}

type Navigator interface {
	Redirect(path string)
}

type Paths struct {
	Login        string
	Unauthorized string
}

// Guard decides once whether protected content may be shown. It starts in
// Checking, makes one verification call, and settles in Authorized or
// Unauthorized for good. A failed check is never retried.
type Guard struct {
	checker   Checker
	navigator Navigator
	allowed   role.Set
	paths     Paths
	logger    *zap.Logger

	mu    sync.Mutex
	state State
	user  *User
	ran   bool
}

func New(checker Checker, navigator Navigator, allowed role.Set, paths Paths, logger *zap.Logger) *Guard {
	return &Guard{
		checker:   checker,
		navigator: navigator,
		allowed:   allowed,
		paths:     paths,
		logger:    logger,
		state:     Checking,
	}
}

func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// User is set once the guard is Authorized.
func (g *Guard) User() *User {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.user
}

// Run performs the check. Cancelling ctx while the check is in flight
// abandons it: the guard stays Checking and nothing is redirected. Calls
// after the first are no-ops that report the settled state.
func (g *Guard) Run(ctx context.Context) (State, error) {
	g.mu.Lock()
	if g.ran {
		st := g.state
		g.mu.Unlock()
		return st, nil
	}
	g.ran = true
	g.mu.Unlock()

	u, err := g.checker.Check(ctx)
	if ctx.Err() != nil {
		g.logger.Debug("guard check abandoned", zap.Error(ctx.Err()))
		return Checking, ctx.Err()
	}

	g.mu.Lock()
	var target string
	switch {
	case err != nil || u == nil:
		g.state = Unauthorized
		target = g.paths.Login
	case !g.allowed.Has(u.Role):
		g.state = Unauthorized
		target = g.paths.Unauthorized
	default:
		g.state = Authorized
		g.user = u
	}
	st := g.state
	g.mu.Unlock()

	if target != "" {
		g.logger.Info("guard redirecting", zap.String("to", target), zap.Error(err))
		g.navigator.Redirect(target)
	}
	return st, nil
}
