package club

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrEmptyAmount is returned by Amount.Decimal when no amount was supplied.
var ErrEmptyAmount = errors.New("amount is empty")

var nullJSON = []byte("null")

// Amount is a currency value as the backend sends it: a JSON string such as
// "200.50", a bare JSON number, or null. The raw text is kept so that a
// malformed amount can still be echoed back to the caller.
type Amount struct {
	raw string
}

// NewAmount wraps a textual amount.
func NewAmount(s string) Amount {
	return Amount{raw: strings.TrimSpace(s)}
}

// AmountFromDecimal wraps a decimal value.
func AmountFromDecimal(d decimal.Decimal) Amount {
	return Amount{raw: d.String()}
}

// String returns the amount as received.
func (a Amount) String() string { return a.raw }

// IsZero reports whether no amount was supplied.
func (a Amount) IsZero() bool { return a.raw == "" }

// Decimal parses the amount.
func (a Amount) Decimal() (decimal.Decimal, error) {
	if a.raw == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	return decimal.NewFromString(a.raw)
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, nullJSON) {
		a.raw = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		a.raw = strings.TrimSpace(s)
		return nil
	}
	// Numbers (and anything else) are kept verbatim; parsing happens on use.
	a.raw = string(b)
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if a.raw == "" {
		return nullJSON, nil
	}
	return json.Marshal(a.raw)
}

const dateLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	dateLayout,
}

func parseLayouts(s string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date is a nullable calendar date ("2006-01-02"). Full timestamps are
// accepted and truncated to their date. Unparseable input is kept as text and
// reported as absent by Time.
type Date struct {
	t     time.Time
	valid bool
	raw   string
}

// NewDate returns a valid Date.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), valid: true}
}

// ParseDate parses s leniently; see Date.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	t, ok := parseLayouts(s, timestampLayouts)
	if !ok {
		return Date{raw: s}
	}
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), valid: true}
}

// Time returns the date at midnight UTC and whether it is present.
func (d Date) Time() (time.Time, bool) { return d.t, d.valid }

// Valid reports whether the date is present and parseable.
func (d Date) Valid() bool { return d.valid }

func (d Date) String() string {
	if d.valid {
		return d.t.Format(dateLayout)
	}
	return d.raw
}

func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, nullJSON):
		*d = Date{}
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = ParseDate(s)
	default:
		// Epoch numbers and other non-strings are kept but never parsed.
		*d = Date{raw: string(b)}
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.valid && d.raw == "" {
		return nullJSON, nil
	}
	return json.Marshal(d.String())
}

// Timestamp is a nullable instant, lenient in the same way as Date.
type Timestamp struct {
	t     time.Time
	valid bool
	raw   string
}

// NewTimestamp returns a valid Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t: t, valid: true}
}

// ParseTimestamp parses s leniently.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	t, ok := parseLayouts(s, timestampLayouts)
	if !ok {
		return Timestamp{raw: s}
	}
	return Timestamp{t: t, valid: true}
}

// Time returns the instant and whether it is present.
func (ts Timestamp) Time() (time.Time, bool) { return ts.t, ts.valid }

// Valid reports whether the timestamp is present and parseable.
func (ts Timestamp) Valid() bool { return ts.valid }

func (ts Timestamp) String() string {
	if ts.valid {
		return ts.t.Format(time.RFC3339)
	}
	return ts.raw
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, nullJSON):
		*ts = Timestamp{}
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*ts = ParseTimestamp(s)
	default:
		// Epoch numbers and other non-strings are kept but never parsed.
		*ts = Timestamp{raw: string(b)}
	}
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.valid && ts.raw == "" {
		return nullJSON, nil
	}
	return json.Marshal(ts.String())
}
