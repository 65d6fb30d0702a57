package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"subtrack/internal/core"
	"subtrack/internal/ports"

	_ "modernc.org/sqlite"
)

const (
	settingBudget   = "budget"
	settingCurrency = "currency"

	// Fixed-width so that created_at sorts chronologically as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

var _ ports.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; serializing here avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListSubscriptions returns every subscription in creation order.
func (r *SQLiteRepository) ListSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	rows, err := r.queries.ListSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	subs := make([]core.Subscription, len(rows))
	for i, row := range rows {
		subs[i] = toCore(row)
	}
	return subs, nil
}

func (r *SQLiteRepository) GetSubscription(ctx context.Context, id string) (core.Subscription, error) {
	row, err := r.queries.GetSubscription(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Subscription{}, fmt.Errorf("get subscription %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return core.Subscription{}, fmt.Errorf("get subscription %s: %w", id, err)
	}
	return toCore(row), nil
}

// CreateSubscription stores a new subscription. A missing id gets a UUID,
// a blank category becomes "Other" and a missing status becomes active.
func (r *SQLiteRepository) CreateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error) {
	if strings.TrimSpace(s.ID) == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.now()
	}

	row, err := r.queries.CreateSubscription(ctx, CreateSubscriptionParams{
		ID:               s.ID,
		Name:             s.Name,
		Price:            s.Price,
		Period:           string(s.Period.OrMonthly()),
		Url:              s.URL,
		Icon:             s.Icon,
		StartDate:        s.StartDate.String(),
		Description:      s.Description,
		Status:           string(statusOrActive(s.Status)),
		Category:         s.CategoryOrDefault(),
		PauseAtRenewal:   boolToInt(s.PauseAtRenewal),
		CreatedAt:        formatTime(s.CreatedAt),
		PauseScheduledAt: nullTime(s.PauseScheduledAt),
	})
	if err != nil {
		return core.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}

	slog.InfoContext(ctx, "Subscription saved to SQLite",
		"id", row.ID,
		"name", row.Name,
		"price", row.Price,
		"period", row.Period)

	return toCore(row), nil
}

// UpdateSubscription replaces every mutable field of an existing record.
func (r *SQLiteRepository) UpdateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error) {
	row, err := r.queries.UpdateSubscription(ctx, UpdateSubscriptionParams{
		Name:             s.Name,
		Price:            s.Price,
		Period:           string(s.Period.OrMonthly()),
		Url:              s.URL,
		Icon:             s.Icon,
		StartDate:        s.StartDate.String(),
		Description:      s.Description,
		Status:           string(statusOrActive(s.Status)),
		Category:         s.CategoryOrDefault(),
		PauseAtRenewal:   boolToInt(s.PauseAtRenewal),
		PauseScheduledAt: nullTime(s.PauseScheduledAt),
		ID:               s.ID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Subscription{}, fmt.Errorf("update subscription %s: %w", s.ID, ports.ErrNotFound)
	}
	if err != nil {
		return core.Subscription{}, fmt.Errorf("update subscription %s: %w", s.ID, err)
	}
	return toCore(row), nil
}

func (r *SQLiteRepository) DeleteSubscription(ctx context.Context, id string) error {
	n, err := r.queries.DeleteSubscription(ctx, id)
	if err != nil {
		return fmt.Errorf("delete subscription %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete subscription %s: %w", id, ports.ErrNotFound)
	}

	slog.InfoContext(ctx, "Subscription deleted from SQLite", "id", id)
	return nil
}

// ApplyScheduledPause pauses the subscription only if it is still active
// with the same pending pause request, so concurrent triggers apply it at
// most once and a request raised again after listing is left alone.
func (r *SQLiteRepository) ApplyScheduledPause(ctx context.Context, id string, scheduledAt time.Time) (bool, error) {
	n, err := r.queries.ApplyScheduledPause(ctx, ApplyScheduledPauseParams{
		ID:               id,
		PauseScheduledAt: nullTime(scheduledAt),
	})
	if err != nil {
		return false, fmt.Errorf("apply scheduled pause %s: %w", id, err)
	}
	return n > 0, nil
}

// GetSettings returns the stored settings over the defaults. An unparseable
// budget reads as 0 (no budget).
func (r *SQLiteRepository) GetSettings(ctx context.Context) (core.Settings, error) {
	rows, err := r.queries.ListSettings(ctx)
	if err != nil {
		return core.Settings{}, fmt.Errorf("list settings: %w", err)
	}

	settings := core.DefaultSettings()
	for _, row := range rows {
		switch row.Key {
		case settingBudget:
			if v, err := strconv.ParseFloat(strings.TrimSpace(row.Value), 64); err == nil && v >= 0 {
				settings.Budget = v
			}
		case settingCurrency:
			if c := strings.TrimSpace(row.Value); c != "" {
				settings.Currency = c
			}
		}
	}
	return settings, nil
}

// SaveSettings upserts every setting in one transaction.
func (r *SQLiteRepository) SaveSettings(ctx context.Context, s core.Settings) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	params := []UpsertSettingParams{
		{Key: settingBudget, Value: strconv.FormatFloat(s.Budget, 'f', -1, 64)},
		{Key: settingCurrency, Value: s.CurrencyOrDefault()},
	}
	for _, p := range params {
		if err := q.UpsertSetting(ctx, p); err != nil {
			return fmt.Errorf("save setting %s: %w", p.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settings: %w", err)
	}
	return nil
}

func toCore(row Subscription) core.Subscription {
	// Unparseable dates load as zero; the engine treats them as today.
	start, _ := core.ParseDate(row.StartDate)

	sub := core.Subscription{
		ID:             row.ID,
		Name:           row.Name,
		Price:          row.Price,
		Period:         core.ParsePeriod(row.Period),
		StartDate:      start,
		Status:         core.ParseStatus(row.Status),
		PauseAtRenewal: row.PauseAtRenewal != 0,
		Category:       row.Category,
		Description:    row.Description,
		URL:            row.Url,
		Icon:           row.Icon,
		CreatedAt:      parseTime(row.CreatedAt),
	}
	if row.PauseScheduledAt.Valid {
		sub.PauseScheduledAt = parseTime(row.PauseScheduledAt.String)
	}
	return sub
}

func statusOrActive(s core.Status) core.Status {
	if s.Valid() {
		return s
	}
	return core.Active
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}
