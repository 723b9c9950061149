package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mehmetcc/ppdb/internal/audit"
	"github.com/mehmetcc/ppdb/internal/person"
	"github.com/mehmetcc/ppdb/internal/role"
	"github.com/mehmetcc/ppdb/pkg/id"
)

type fakePersonRepo struct {
	mu      sync.Mutex
	byEmail map[string]*person.Person
	nextID  int64
	// getErr, when set, is returned by GetByPublicID
	getErr error
}

func newFakePersonRepo() *fakePersonRepo {
	return &fakePersonRepo{byEmail: map[string]*person.Person{}}
}

func (f *fakePersonRepo) Create(_ context.Context, dto *person.PersonDTO) (id.PublicID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(dto.Email))
	if _, ok := f.byEmail[email]; ok {
		return "", person.ErrDuplicateEmail
	}
	if dto.NISN != "" {
		for _, p := range f.byEmail {
			if p.NISN == dto.NISN {
				return "", person.ErrDuplicateNISN
			}
		}
	}
	f.nextID++
	p := &person.Person{
		ID:        f.nextID,
		PublicID:  id.NewPublicID(),
		Email:     email,
		Name:      dto.Name,
		Gender:    dto.Gender,
		NISN:      dto.NISN,
		Password:  dto.Password,
		Role:      dto.Role,
		IsActive:  dto.IsActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.byEmail[email] = p
	return p.PublicID, nil
}

func (f *fakePersonRepo) GetByEmail(_ context.Context, email string) (*person.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok || p.IsDeleted {
		return nil, person.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePersonRepo) GetByPublicID(_ context.Context, publicID id.PublicID) (*person.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, p := range f.byEmail {
		if p.PublicID == publicID && !p.IsDeleted {
			cp := *p
			return &cp, nil
		}
	}
	return nil, person.ErrNotFound
}

func (f *fakePersonRepo) ListByRole(_ context.Context, r role.Role, limit, offset int) ([]person.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []person.Person
	for _, p := range f.byEmail {
		if p.Role == r && !p.IsDeleted {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePersonRepo) SoftDelete(_ context.Context, publicID id.PublicID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byEmail {
		if p.PublicID == publicID && !p.IsDeleted {
			p.IsDeleted = true
			return nil
		}
	}
	return person.ErrNotFound
}

func (f *fakePersonRepo) setActive(email string, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byEmail[email].IsActive = active
}

type fakeLoginRepo struct {
	mu     sync.Mutex
	events []audit.LoginEvent
	err    error
}

func (f *fakeLoginRepo) Record(_ context.Context, ev audit.LoginEvent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	ev.ID = id.NewPublicID().String()
	ev.CreatedAt = time.Now()
	f.events = append(f.events, ev)
	return ev.ID, nil
}

func (f *fakeLoginRepo) ListByPerson(_ context.Context, personID int64, limit int) ([]audit.LoginEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []audit.LoginEvent
	for i := len(f.events) - 1; i >= 0 && len(out) < limit; i-- {
		if f.events[i].PersonID == personID {
			out = append(out, f.events[i])
		}
	}
	return out, nil
}

var errUpstream = errors.New("upstream unavailable")
