package dataset

import (
	"fmt"
	"sort"

	"heritage/core/utils"

	"github.com/goccy/go-json"
)

// SentinelYear marks an open-ended lifetime ("still living" or unknown
// end) in the stored data.
const SentinelYear = 9999

// Record is a single family member.
type Record struct {
	// ExternalID is the stable hierarchical identifier, e.g. "1.2.3".
	ExternalID string `json:"externalId"`
	// Name is the display name used in commit messages and reports.
	Name string `json:"name,omitempty"`
	// Born is the birth year, nil when unknown.
	Born *int `json:"born"`
	// Died is the death year, nil when living or unknown.
	Died *int `json:"died"`
	// Monarchs holds the ids of the reigns overlapping the lifetime.
	Monarchs []string `json:"monarchs"`
	// Payload carries content fields this engine does not interpret.
	Payload map[string]any `json:"payload,omitempty"`
}

// Year returns a pointer to y, for building records in code.
func Year(y int) *int {
	return &y
}

// UnmarshalJSON accepts numeric, string, and date forms for born/died.
func (r *Record) UnmarshalJSON(data []byte) error {
	var aux struct {
		ExternalID string         `json:"externalId"`
		Name       string         `json:"name"`
		Born       any            `json:"born"`
		Died       any            `json:"died"`
		Monarchs   []string       `json:"monarchs"`
		Payload    map[string]any `json:"payload"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*r = Record{
		ExternalID: aux.ExternalID,
		Name:       aux.Name,
		Monarchs:   aux.Monarchs,
		Payload:    aux.Payload,
	}
	if y, ok := utils.ParseYear(aux.Born); ok {
		r.Born = &y
	}
	if y, ok := utils.ParseYear(aux.Died); ok {
		r.Died = &y
	}
	return nil
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	if r.Born != nil {
		out.Born = Year(*r.Born)
	}
	if r.Died != nil {
		out.Died = Year(*r.Died)
	}
	if r.Monarchs != nil {
		out.Monarchs = append([]string(nil), r.Monarchs...)
	}
	if r.Payload != nil {
		out.Payload = make(map[string]any, len(r.Payload))
		for k, v := range r.Payload {
			out.Payload[k] = v
		}
	}
	return out
}

// Label returns the name, falling back to the external id.
func (r Record) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ExternalID
}

// CloneAll deep-copies a dataset so a snapshot cannot be mutated later.
func CloneAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// Encode serializes a dataset snapshot as an indented JSON array.
func Encode(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode dataset: %w", err)
	}
	return data, nil
}

// Decode parses a dataset snapshot produced by Encode.
func Decode(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	return records, nil
}

// SortedIDs returns a sorted copy of ids.
func SortedIDs(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

// SameIDs reports whether a and b hold the same ids, ignoring order.
func SameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := SortedIDs(a), SortedIDs(b)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}
