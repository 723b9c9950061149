package audit

import (
	"context"
	"database/sql"

	"github.com/mehmetcc/ppdb/internal/httpx"
	"go.uber.org/zap"
)

type LoginRepo interface {
	Record(ctx context.Context, ev LoginEvent) (string, error)
	ListByPerson(ctx context.Context, personID int64, limit int) ([]LoginEvent, error)
}

const (
	insertLoginEventQuery = `
						INSERT INTO login_events (
						person_id, audience, device_id, device_name, platform, ip, user_agent
						) VALUES ($1, $2, $3, $4, $5, $6, $7)
						RETURNING id
						`
	listLoginEventsQuery = `
						SELECT id, person_id, audience, device_id, device_name, platform, ip, user_agent, created_at
						FROM login_events
						WHERE person_id = $1
						ORDER BY created_at DESC
						LIMIT $2
						`
)

type loginRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewLoginRepo(db *sql.DB, logger *zap.Logger) LoginRepo {
	return &loginRepo{db: db, logger: logger}
}

func (l *loginRepo) Record(ctx context.Context, ev LoginEvent) (string, error) {
	var eid string
	err := l.db.QueryRowContext(ctx, insertLoginEventQuery,
		ev.PersonID,
		ev.Audience,
		ev.DeviceID,
		ev.DeviceName,
		string(ev.Platform),
		ev.IP,
		ev.UserAgent,
	).Scan(&eid)
	if err != nil {
		l.logger.Error("failed to record login event", zap.Error(err))
		return "", err
	}
	return eid, nil
}

func (l *loginRepo) ListByPerson(ctx context.Context, personID int64, limit int) ([]LoginEvent, error) {
	rows, err := l.db.QueryContext(ctx, listLoginEventsQuery, personID, limit)
	if err != nil {
		l.logger.Error("failed to list login events", zap.Int64("person_id", personID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []LoginEvent
	for rows.Next() {
		var ev LoginEvent
		var platform string
		if err := rows.Scan(&ev.ID, &ev.PersonID, &ev.Audience, &ev.DeviceID, &ev.DeviceName,
			&platform, &ev.IP, &ev.UserAgent, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.Platform = httpx.Platform(platform)
		out = append(out, ev)
	}
	return out, rows.Err()
}
