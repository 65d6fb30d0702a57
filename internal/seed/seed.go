// Package seed reads and writes subscription snapshots as YAML. The memory
// backend loads its initial data from a seed file and the CLI uses the same
// format for import and export.
package seed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"subtrack/internal/core"
)

type (
	Document struct {
		Settings      *Settings      `yaml:"settings,omitempty"`
		Subscriptions []Subscription `yaml:"subscriptions"`
	}

	Settings struct {
		Budget   float64 `yaml:"budget"`
		Currency string  `yaml:"currency,omitempty"`
	}

	Subscription struct {
		ID             string  `yaml:"id,omitempty"`
		Name           string  `yaml:"name"`
		Price          float64 `yaml:"price"`
		Period         string  `yaml:"period"`
		StartDate      string  `yaml:"start_date,omitempty"`
		Status         string  `yaml:"status,omitempty"`
		PauseAtRenewal bool    `yaml:"pause_at_renewal,omitempty"`
		// PauseScheduledAt records when the pause was requested (RFC 3339).
		PauseScheduledAt time.Time `yaml:"pause_scheduled_at,omitempty"`
		Category         string    `yaml:"category,omitempty"`
		Description      string    `yaml:"description,omitempty"`
		URL              string    `yaml:"url,omitempty"`
		Icon             string    `yaml:"icon,omitempty"`
	}
)

// Load reads a seed document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a seed document and validates every subscription in it.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	for i, s := range doc.Subscriptions {
		if err := s.ToCore().Validate(); err != nil {
			return nil, fmt.Errorf("subscription %d (%q): %w", i, s.Name, err)
		}
		if s.StartDate != "" {
			if _, err := core.ParseDate(s.StartDate); err != nil {
				return nil, fmt.Errorf("subscription %d (%q): start_date %q: %w", i, s.Name, s.StartDate, err)
			}
		}
	}
	if doc.Settings != nil {
		if err := doc.Settings.ToCore().Validate(); err != nil {
			return nil, fmt.Errorf("settings: %w", err)
		}
	}
	return &doc, nil
}

// Save writes doc to path, creating parent directories.
func Save(path string, doc *Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling seed: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing seed file: %w", err)
	}
	return nil
}

// FromCore builds a document from a snapshot and its settings.
func FromCore(subs []core.Subscription, settings core.Settings) *Document {
	doc := &Document{
		Settings:      &Settings{Budget: settings.Budget, Currency: settings.CurrencyOrDefault()},
		Subscriptions: make([]Subscription, len(subs)),
	}
	for i, s := range subs {
		doc.Subscriptions[i] = Subscription{
			ID:             s.ID,
			Name:           s.Name,
			Price:          s.Price,
			Period:         string(s.Period.OrMonthly()),
			StartDate:      s.StartDate.String(),
			Status:         string(s.Status),
			PauseAtRenewal: s.PauseAtRenewal,
			Category:       s.Category,
			Description:    s.Description,
			URL:            s.URL,
			Icon:           s.Icon,
		}
		if s.PauseAtRenewal {
			doc.Subscriptions[i].PauseScheduledAt = s.PauseScheduledAt.UTC()
		}
	}
	return doc
}

func (s Subscription) ToCore() core.Subscription {
	start, _ := core.ParseDate(s.StartDate)
	sub := core.Subscription{
		ID:             strings.TrimSpace(s.ID),
		Name:           strings.TrimSpace(s.Name),
		Price:          s.Price,
		Period:         core.ParsePeriod(s.Period),
		StartDate:      start,
		Status:         core.ParseStatus(s.Status),
		PauseAtRenewal: s.PauseAtRenewal,
		Category:       s.Category,
		Description:    s.Description,
		URL:            s.URL,
		Icon:           s.Icon,
	}
	if sub.PauseAtRenewal {
		sub.PauseScheduledAt = s.PauseScheduledAt
	}
	return sub
}

func (s Settings) ToCore() core.Settings {
	return core.Settings{Budget: s.Budget, Currency: s.Currency}
}

// Snapshot returns the subscriptions of doc as core records. Records that
// carry the pause flag without a request time get now.
func (d *Document) Snapshot(now time.Time) []core.Subscription {
	subs := make([]core.Subscription, len(d.Subscriptions))
	for i, s := range d.Subscriptions {
		subs[i] = s.ToCore()
		if subs[i].PauseAtRenewal && subs[i].Status == core.Active && subs[i].PauseScheduledAt.IsZero() {
			subs[i].PauseScheduledAt = now
		}
	}
	return subs
}
