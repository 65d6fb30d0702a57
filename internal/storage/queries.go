package storage

import (
	"context"
	"database/sql"
)

const subscriptionColumns = `id, name, price, period, url, icon, start_date, description, status, category, pause_at_renewal, created_at, pause_scheduled_at`

func scanSubscription(row interface{ Scan(...interface{}) error }) (Subscription, error) {
	var i Subscription
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Price,
		&i.Period,
		&i.Url,
		&i.Icon,
		&i.StartDate,
		&i.Description,
		&i.Status,
		&i.Category,
		&i.PauseAtRenewal,
		&i.CreatedAt,
		&i.PauseScheduledAt,
	)
	return i, err
}

const listSubscriptions = `-- name: ListSubscriptions :many
SELECT ` + subscriptionColumns + `
FROM subscriptions
ORDER BY created_at ASC, rowid ASC
`

func (q *Queries) ListSubscriptions(ctx context.Context) ([]Subscription, error) {
	rows, err := q.db.QueryContext(ctx, listSubscriptions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Subscription
	for rows.Next() {
		i, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getSubscription = `-- name: GetSubscription :one
SELECT ` + subscriptionColumns + `
FROM subscriptions
WHERE id = ?
`

func (q *Queries) GetSubscription(ctx context.Context, id string) (Subscription, error) {
	row := q.db.QueryRowContext(ctx, getSubscription, id)
	return scanSubscription(row)
}

const createSubscription = `-- name: CreateSubscription :one
INSERT INTO subscriptions (
    id, name, price, period, url, icon, start_date, description, status, category, pause_at_renewal, created_at, pause_scheduled_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + subscriptionColumns

type CreateSubscriptionParams struct {
	ID               string
	Name             string
	Price            float64
	Period           string
	Url              string
	Icon             string
	StartDate        string
	Description      string
	Status           string
	Category         string
	PauseAtRenewal   int64
	CreatedAt        string
	PauseScheduledAt sql.NullString
}

func (q *Queries) CreateSubscription(ctx context.Context, arg CreateSubscriptionParams) (Subscription, error) {
	row := q.db.QueryRowContext(ctx, createSubscription,
		arg.ID,
		arg.Name,
		arg.Price,
		arg.Period,
		arg.Url,
		arg.Icon,
		arg.StartDate,
		arg.Description,
		arg.Status,
		arg.Category,
		arg.PauseAtRenewal,
		arg.CreatedAt,
		arg.PauseScheduledAt,
	)
	return scanSubscription(row)
}

const updateSubscription = `-- name: UpdateSubscription :one
UPDATE subscriptions
SET name = ?, price = ?, period = ?, url = ?, icon = ?, start_date = ?, description = ?,
    status = ?, category = ?, pause_at_renewal = ?, pause_scheduled_at = ?
WHERE id = ?
RETURNING ` + subscriptionColumns

type UpdateSubscriptionParams struct {
	Name             string
	Price            float64
	Period           string
	Url              string
	Icon             string
	StartDate        string
	Description      string
	Status           string
	Category         string
	PauseAtRenewal   int64
	PauseScheduledAt sql.NullString
	ID               string
}

func (q *Queries) UpdateSubscription(ctx context.Context, arg UpdateSubscriptionParams) (Subscription, error) {
	row := q.db.QueryRowContext(ctx, updateSubscription,
		arg.Name,
		arg.Price,
		arg.Period,
		arg.Url,
		arg.Icon,
		arg.StartDate,
		arg.Description,
		arg.Status,
		arg.Category,
		arg.PauseAtRenewal,
		arg.PauseScheduledAt,
		arg.ID,
	)
	return scanSubscription(row)
}

const deleteSubscription = `-- name: DeleteSubscription :execrows
DELETE FROM subscriptions WHERE id = ?
`

func (q *Queries) DeleteSubscription(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteSubscription, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const applyScheduledPause = `-- name: ApplyScheduledPause :execrows
UPDATE subscriptions
SET status = 'paused', pause_at_renewal = 0, pause_scheduled_at = NULL
WHERE id = ? AND status = 'active' AND pause_at_renewal = 1 AND pause_scheduled_at IS ?
`

type ApplyScheduledPauseParams struct {
	ID               string
	PauseScheduledAt sql.NullString
}

func (q *Queries) ApplyScheduledPause(ctx context.Context, arg ApplyScheduledPauseParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, applyScheduledPause, arg.ID, arg.PauseScheduledAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listSettings = `-- name: ListSettings :many
SELECT key, value FROM settings ORDER BY key
`

func (q *Queries) ListSettings(ctx context.Context) ([]Setting, error) {
	rows, err := q.db.QueryContext(ctx, listSettings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Setting
	for rows.Next() {
		var i Setting
		if err := rows.Scan(&i.Key, &i.Value); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertSetting = `-- name: UpsertSetting :exec
INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value
`

type UpsertSettingParams struct {
	Key   string
	Value string
}

func (q *Queries) UpsertSetting(ctx context.Context, arg UpsertSettingParams) error {
	_, err := q.db.ExecContext(ctx, upsertSetting, arg.Key, arg.Value)
	return err
}
