package dataset

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const dateLayout = "2006-01-02"

// Interval is a reign from the reference list.
type Interval struct {
	ID   string    `json:"id"`
	Name string    `json:"name,omitempty"`
	From time.Time `json:"reignFrom"`
	To   time.Time `json:"reignTo"`
}

// FromYear returns the year the reign began.
func (i Interval) FromYear() int {
	return i.From.Year()
}

// ToYear returns the year the reign ended. A reign without an end date is
// treated as ongoing.
func (i Interval) ToYear() int {
	if i.To.IsZero() {
		return SentinelYear
	}
	return i.To.Year()
}

// NewInterval builds an interval from ISO dates ("1523-06-06").
func NewInterval(id, name, from, to string) (Interval, error) {
	f, err := parseDate(from)
	if err != nil {
		return Interval{}, fmt.Errorf("interval %s: reign start: %w", id, err)
	}
	t, err := parseDate(to)
	if err != nil {
		return Interval{}, fmt.Errorf("interval %s: reign end: %w", id, err)
	}
	return Interval{ID: id, Name: name, From: f, To: t}, nil
}

// MarshalJSON writes reign dates as ISO dates.
func (i Interval) MarshalJSON() ([]byte, error) {
	out := struct {
		ID   string `json:"id"`
		Name string `json:"name,omitempty"`
		From string `json:"reignFrom"`
		To   string `json:"reignTo,omitempty"`
	}{ID: i.ID, Name: i.Name, From: i.From.Format(dateLayout)}
	if !i.To.IsZero() {
		out.To = i.To.Format(dateLayout)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads ISO dates or full RFC 3339 timestamps.
func (i *Interval) UnmarshalJSON(data []byte) error {
	var in struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		From string `json:"reignFrom"`
		To   string `json:"reignTo"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	parsed, err := NewInterval(in.ID, in.Name, in.From, in.To)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
