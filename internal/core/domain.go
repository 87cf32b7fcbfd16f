package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	RUB Currency = "RUB"
	USD Currency = "USD"
	EUR Currency = "EUR"
)

const (
	Monthly Cycle = "monthly"
	Yearly  Cycle = "yearly"
)

const (
	Entertainment Category = "entertainment"
	Work          Category = "work"
	Utilities     Category = "utilities"
	Other         Category = "other"
)

const (
	ViewMonthly ViewMode = "monthly"
	ViewYearly  ViewMode = "yearly"
)

type (
	Currency string
	Cycle    string
	Category string
	ViewMode string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Subscription is one recurring charge as the user declared it.
	// Price is denominated in Currency and covers one Cycle period.
	Subscription struct {
		ID              string
		Name            string
		Price           Money
		Currency        Currency
		Cycle           Cycle
		Category        Category
		NextPaymentDate Date
		IsActive        bool
	}

	// RateTable maps a lower-cased currency code to its multiplier
	// relative to the USD pivot. A missing code means multiplier 1.
	RateTable map[string]float64

	Preferences struct {
		BaseCurrency Currency
		ViewMode     ViewMode
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNameTooShort    = errors.New("name too short")
	ErrInvalidCurrency = errors.New("invalid currency")
	ErrInvalidCycle    = errors.New("invalid cycle")
	ErrInvalidCategory = errors.New("invalid category")
)

func (c Currency) Valid() bool {
	switch c {
	case RUB, USD, EUR:
		return true
	}
	return false
}

// Symbol returns the display symbol for the currency, falling back
// to the code itself for anything unknown.
func (c Currency) Symbol() string {
	switch c {
	case RUB:
		return "₽"
	case USD:
		return "$"
	case EUR:
		return "€"
	}
	return string(c)
}

func (c Cycle) Valid() bool {
	return c == Monthly || c == Yearly
}

func (c Category) Valid() bool {
	switch c {
	case Entertainment, Work, Utilities, Other:
		return true
	}
	return false
}

func (v ViewMode) Valid() bool {
	return v == ViewMonthly || v == ViewYearly
}

// Toggle flips between the monthly and yearly view.
func (v ViewMode) Toggle() ViewMode {
	if v == ViewMonthly {
		return ViewYearly
	}
	return ViewMonthly
}

// Rate looks up the multiplier for a currency code. Lookup is always
// lower-cased: the table's keying convention is lower-case codes, and a
// missing entry degrades to identity rather than failing.
func (r RateTable) Rate(c Currency) float64 {
	if v, ok := r[strings.ToLower(string(c))]; ok {
		return v
	}
	return 1
}

// Clone returns an independent copy so a wholesale table replacement
// never hands callers a map that is still being written.
func (r RateTable) Clone() RateTable {
	out := make(RateTable, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (s Subscription) Validate() error {
	if len(strings.TrimSpace(s.Name)) < 2 {
		return ErrNameTooShort
	}
	if err := s.Price.Validate(); err != nil {
		return err
	}
	if !s.Currency.Valid() {
		return ErrInvalidCurrency
	}
	if !s.Cycle.Valid() {
		return ErrInvalidCycle
	}
	if !s.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

func (p Preferences) Validate() error {
	if !p.BaseCurrency.Valid() {
		return ErrInvalidCurrency
	}
	if !p.ViewMode.Valid() {
		return errors.New("invalid view mode")
	}
	return nil
}

// NewDate creates a Date at day granularity (UTC midnight).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
