package http

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"subtrack/internal/core"
)

// subscriptionDTO is the wire shape of a subscription. Field names follow
// the camelCase API the web client already speaks.
type subscriptionDTO struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	Period           string  `json:"period"`
	URL              string  `json:"url,omitempty"`
	Icon             string  `json:"icon,omitempty"`
	StartDate        string  `json:"startDate"`
	Description      string  `json:"description"`
	Status           string  `json:"status"`
	Category         string  `json:"category"`
	PauseAtRenewal   bool    `json:"pauseAtRenewal"`
	PauseScheduledAt string  `json:"pauseScheduledAt,omitempty"`
	CreatedAt        string  `json:"createdAt,omitempty"`
}

func toSubscriptionDTO(s core.Subscription) subscriptionDTO {
	return subscriptionDTO{
		ID:               s.ID,
		Name:             s.Name,
		Price:            s.Price,
		Period:           string(s.Period),
		URL:              s.URL,
		Icon:             s.Icon,
		StartDate:        s.StartDate.String(),
		Description:      s.Description,
		Status:           string(s.Status),
		Category:         s.CategoryOrDefault(),
		PauseAtRenewal:   s.PauseAtRenewal,
		PauseScheduledAt: formatTime(s.PauseScheduledAt),
		CreatedAt:        formatTime(s.CreatedAt),
	}
}

func toSubscriptionDTOs(subs []core.Subscription) []subscriptionDTO {
	out := make([]subscriptionDTO, len(subs))
	for i, s := range subs {
		out[i] = toSubscriptionDTO(s)
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// priceValue accepts a JSON number or a decimal string such as "12,34".
type priceValue float64

func (p *priceValue) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = 0
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*p = priceValue(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return core.ErrInvalidPrice
	}
	v, err := core.ParsePrice(s)
	if err != nil {
		return err
	}
	*p = priceValue(v)
	return nil
}

// subscriptionInput is the body of create and update requests.
type subscriptionInput struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Price          priceValue `json:"price"`
	Period         string     `json:"period"`
	URL            string     `json:"url"`
	Icon           string     `json:"icon"`
	StartDate      string     `json:"startDate"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Category       string     `json:"category"`
	PauseAtRenewal bool       `json:"pauseAtRenewal"`
}

// toCore maps the input to a subscription. A missing start date stays empty;
// a malformed one is rejected.
func (in subscriptionInput) toCore() (core.Subscription, error) {
	sub := core.Subscription{
		ID:             sanitizeInput(in.ID),
		Name:           sanitizeInput(in.Name),
		Price:          float64(in.Price),
		Period:         core.ParsePeriod(in.Period),
		URL:            sanitizeInput(in.URL),
		Icon:           sanitizeInput(in.Icon),
		Description:    sanitizeInput(in.Description),
		Category:       sanitizeInput(in.Category),
		PauseAtRenewal: in.PauseAtRenewal,
		Status:         core.Active,
	}
	if st := strings.ToLower(strings.TrimSpace(in.Status)); st != "" {
		sub.Status = core.Status(st)
	}
	if ds := strings.TrimSpace(in.StartDate); ds != "" {
		d, err := core.ParseDate(ds)
		if err != nil {
			return core.Subscription{}, fmt.Errorf("startDate %q: %w", ds, err)
		}
		sub.StartDate = d
	}
	return sub, nil
}

type settingsDTO struct {
	Budget   float64 `json:"budget"`
	Currency string  `json:"currency"`
}

func toSettingsDTO(s core.Settings) settingsDTO {
	return settingsDTO{Budget: s.Budget, Currency: s.CurrencyOrDefault()}
}

type settingsInput struct {
	Budget   *priceValue `json:"budget"`
	Currency *string     `json:"currency"`
}

type categoryDTO struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type totalsDTO struct {
	Weekly         float64       `json:"weekly"`
	Monthly        float64       `json:"monthly"`
	Yearly         float64       `json:"yearly"`
	YearlyPerMonth float64       `json:"yearlyPerMonth"`
	ByCategory     []categoryDTO `json:"byCategory"`
	Currency       string        `json:"currency"`
}

func toTotalsDTO(t core.Totals, categories []core.CategoryAmount, settings core.Settings) totalsDTO {
	out := totalsDTO{
		Weekly:         t.Weekly,
		Monthly:        t.Monthly,
		Yearly:         t.Yearly,
		YearlyPerMonth: t.YearlyPerMonth(),
		ByCategory:     make([]categoryDTO, len(categories)),
		Currency:       settings.CurrencyOrDefault(),
	}
	for i, c := range categories {
		out.ByCategory[i] = categoryDTO{Name: c.Name, Amount: c.Amount}
	}
	return out
}

type budgetDTO struct {
	Budget       float64 `json:"budget"`
	Spent        float64 `json:"spent"`
	Remaining    float64 `json:"remaining"`
	UsagePercent float64 `json:"usagePercent"`
	HasBudget    bool    `json:"hasBudget"`
	OverBudget   bool    `json:"overBudget"`
}

func toBudgetDTO(b core.BudgetStatus) budgetDTO {
	return budgetDTO(b)
}

type upcomingDTO struct {
	Subscription subscriptionDTO `json:"subscription"`
	NextPayment  string          `json:"nextPayment"`
	DaysUntil    int             `json:"daysUntil"`
}

func toUpcomingDTOs(items []core.Upcoming, now time.Time) []upcomingDTO {
	today := core.DateOf(now)
	out := make([]upcomingDTO, len(items))
	for i, u := range items {
		out[i] = upcomingDTO{
			Subscription: toSubscriptionDTO(u.Subscription),
			NextPayment:  u.NextPayment.String(),
			DaysUntil:    int(u.NextPayment.Sub(today.Time).Hours() / 24),
		}
	}
	return out
}

type calendarDayDTO struct {
	Date          string            `json:"date"`
	Total         float64           `json:"total"`
	Subscriptions []subscriptionDTO `json:"subscriptions"`
}

type calendarDTO struct {
	Year  int              `json:"year"`
	Month int              `json:"month"`
	Days  []calendarDayDTO `json:"days"`
}

func toCalendarDTO(c core.MonthCalendar) calendarDTO {
	out := calendarDTO{Year: c.Year, Month: int(c.Month), Days: []calendarDayDTO{}}
	for _, d := range c.Days() {
		subs := c.On(d)
		total := 0.0
		for _, s := range subs {
			total += s.Price
		}
		out.Days = append(out.Days, calendarDayDTO{
			Date:          d.String(),
			Total:         core.Round2(total),
			Subscriptions: toSubscriptionDTOs(subs),
		})
	}
	return out
}

type overviewDTO struct {
	Now      string        `json:"now"`
	Totals   totalsDTO     `json:"totals"`
	Budget   budgetDTO     `json:"budget"`
	Upcoming []upcomingDTO `json:"upcoming"`
	Settings settingsDTO   `json:"settings"`
}

func toOverviewDTO(ov core.Overview) overviewDTO {
	return overviewDTO{
		Now:      ov.Now.String(),
		Totals:   toTotalsDTO(ov.Totals, ov.Categories, ov.Settings),
		Budget:   toBudgetDTO(ov.Budget),
		Upcoming: toUpcomingDTOs(ov.Upcoming, ov.Now.Time),
		Settings: toSettingsDTO(ov.Settings),
	}
}
