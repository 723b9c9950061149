package person

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mehmetcc/ppdb/internal/role"
	"github.com/mehmetcc/ppdb/pkg/id"
	"go.uber.org/zap"
)

type PersonDTO struct {
	Email    string
	Name     string
	Gender   Gender
	NISN     string
	Password string
	Role     role.Role
	IsActive bool
}

type PersonRepo interface {
	Create(ctx context.Context, dto *PersonDTO) (id.PublicID, error)
	GetByEmail(ctx context.Context, email string) (*Person, error)
	GetByPublicID(ctx context.Context, publicID id.PublicID) (*Person, error)
	ListByRole(ctx context.Context, r role.Role, limit, offset int) ([]Person, error)
	SoftDelete(ctx context.Context, publicID id.PublicID) error
}

type personRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPersonRepo(db *sql.DB, logger *zap.Logger) PersonRepo {
	return &personRepo{
		db:     db,
		logger: logger,
	}
}

const (
	insertPersonQuery = `
						INSERT INTO persons (email, name, gender, nisn, password, role, is_active, is_deleted)
						VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, false)
						RETURNING id, public_id, created_at, updated_at
						`
	selectPersonColumns = `
						SELECT id, public_id, email, name, COALESCE(gender, ''), COALESCE(nisn, ''),
						       password, role, is_active, is_deleted, created_at, updated_at
						FROM persons
						`
	getByEmailQuery    = selectPersonColumns + `WHERE lower(email) = lower($1) AND is_deleted = false`
	getByPublicIDQuery = selectPersonColumns + `WHERE public_id = $1 AND is_deleted = false`
	listByRoleQuery    = selectPersonColumns + `
						WHERE role = $1 AND is_deleted = false
						ORDER BY created_at DESC
						LIMIT $2 OFFSET $3
						`
	softDeleteQuery = `
						UPDATE persons
						SET is_deleted = true, updated_at = now()
						WHERE public_id = $1 AND is_deleted = false
						`
)

func (p *personRepo) Create(ctx context.Context, dto *PersonDTO) (id.PublicID, error) {
	row := p.db.QueryRowContext(ctx,
		insertPersonQuery,
		strings.ToLower(strings.TrimSpace(dto.Email)),
		strings.TrimSpace(dto.Name),
		string(dto.Gender),
		strings.TrimSpace(dto.NISN),
		dto.Password,
		dto.Role,
		dto.IsActive,
	)

	var publicID id.PublicID
	var pk int64
	var createdAt, updatedAt time.Time

	if err := row.Scan(&pk, &publicID, &createdAt, &updatedAt); err != nil {
		// context canceled/deadline
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			p.logger.Warn("create person canceled/timed out", zap.Error(err))
			return "", err
		}

		if dup := duplicateError(err); dup != nil {
			p.logger.Debug("duplicate person", zap.String("email", dto.Email), zap.Error(dup))
			return "", dup
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			p.logger.Error("postgres error",
				zap.String("code", pgErr.Code),
				zap.String("msg", pgErr.Message),
				zap.String("detail", pgErr.Detail),
			)
			return "", err
		}

		p.logger.Error("driver/scan error", zap.Error(err))
		return "", err
	}

	p.logger.Debug("person created",
		zap.Int64("id", pk),
		zap.String("public_id", string(publicID)),
		zap.String("role", string(dto.Role)),
	)

	return publicID, nil
}

// duplicateError maps a unique violation onto ErrDuplicateEmail or
// ErrDuplicateNISN, or returns nil.
func duplicateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgerrcode.UniqueViolation {
			return nil
		}
		switch pgErr.ConstraintName {
		case "persons_email_key", "persons_lower_email_idx":
			return ErrDuplicateEmail
		case "persons_nisn_key":
			return ErrDuplicateNISN
		}
		// unique index on an expression: fall back to the detail text
		det := strings.ToLower(pgErr.Detail)
		if strings.Contains(det, "(email)") || strings.Contains(det, "lower(email)") {
			return ErrDuplicateEmail
		}
		if strings.Contains(det, "(nisn)") {
			return ErrDuplicateNISN
		}
		return nil
	}

	// the driver sometimes hands back a wrapped string only
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "persons_email_key"), strings.Contains(msg, "persons_lower_email_idx"):
		return ErrDuplicateEmail
	case strings.Contains(msg, "persons_nisn_key"):
		return ErrDuplicateNISN
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*Person, error) {
	var out Person
	var r string
	if err := row.Scan(
		&out.ID, &out.PublicID, &out.Email, &out.Name, &out.Gender, &out.NISN,
		&out.Password, &r, &out.IsActive, &out.IsDeleted, &out.CreatedAt, &out.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := role.Parse(r)
	if err != nil {
		return nil, err
	}
	out.Role = parsed
	return &out, nil
}

func (p *personRepo) GetByEmail(ctx context.Context, email string) (*Person, error) {
	out, err := scanPerson(p.db.QueryRowContext(ctx, getByEmailQuery, strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		p.logger.Error("failed to get person by email", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (p *personRepo) GetByPublicID(ctx context.Context, publicID id.PublicID) (*Person, error) {
	out, err := scanPerson(p.db.QueryRowContext(ctx, getByPublicIDQuery, string(publicID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		p.logger.Error("failed to get person by public id", zap.String("public_id", string(publicID)), zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (p *personRepo) ListByRole(ctx context.Context, r role.Role, limit, offset int) ([]Person, error) {
	rows, err := p.db.QueryContext(ctx, listByRoleQuery, string(r), limit, offset)
	if err != nil {
		p.logger.Error("failed to list persons", zap.String("role", string(r)), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make([]Person, 0, limit)
	for rows.Next() {
		pp, err := scanPerson(rows)
		if err != nil {
			p.logger.Error("failed to scan person", zap.Error(err))
			return nil, err
		}
		out = append(out, *pp)
	}
	return out, rows.Err()
}

func (p *personRepo) SoftDelete(ctx context.Context, publicID id.PublicID) error {
	res, err := p.db.ExecContext(ctx, softDeleteQuery, string(publicID))
	if err != nil {
		p.logger.Error("failed to delete person", zap.String("public_id", string(publicID)), zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
