package domain

import (
	"fmt"
	"math"
	"time"
)

// EPS is the tolerance below which two numeric values are considered unchanged.
const EPS = 1e-6

// NearlyEqual reports whether two values are within EPS of each other.
func NearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= EPS
}

// MasterDocument is the immutable per-cycle snapshot for one group.
// Checksum covers the canonical (sorted-key) JSON of Records only.
type MasterDocument struct {
	GroupKey     string            `json:"group_key"`
	SnapshotID   string            `json:"snapshot_id"`
	GeneratedAt  time.Time         `json:"generated_at"`
	TotalRecords int               `json:"total_records"`
	Checksum     string            `json:"checksum"`
	Records      map[string]Record `json:"records"`
}

// Record is one scored entity within a snapshot. The map key in
// MasterDocument.Records is the stable RecordKey (slug or normalized title).
type Record struct {
	Title          string   `json:"title"`
	FrontendID     string   `json:"frontend_id,omitempty"`
	URL            string   `json:"url,omitempty"`
	Difficulty     string   `json:"difficulty,omitempty"`
	AcceptanceRate *float64 `json:"acceptance_rate,omitempty"`
	Tags           []string `json:"topic_tags,omitempty"`
	Freq30         float64  `json:"freq_30d"`
	Freq90         float64  `json:"freq_90d"`
	Freq180        float64  `json:"freq_180d"`
}

// TitleKey builds the display string used as the join key against the remote
// store: "<frontend_id>. <title>" when a frontend id is present, else the
// bare title.
func (r Record) TitleKey() string {
	if r.FrontendID != "" {
		return fmt.Sprintf("%s. %s", r.FrontendID, r.Title)
	}
	return r.Title
}

// RemoteRecord is the remote store's current view of one row, keyed by its
// title text. Nil numerics mean the field is unset on the remote side.
type RemoteRecord struct {
	RemoteID       string
	TitleKey       string
	Freq30         *float64
	Freq90         *float64
	Freq180        *float64
	AcceptanceRate *float64
}

// TrackedZero reports whether all tracked frequency fields are already ≈0
// (unset counts as zero). Such rows need no zeroing write.
func (r RemoteRecord) TrackedZero() bool {
	for _, v := range []*float64{r.Freq30, r.Freq90, r.Freq180} {
		if v != nil && !NearlyEqual(*v, 0) {
			return false
		}
	}
	return true
}

// Action identifies what an Operation does against the remote target.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionZero   Action = "zero"
)

// Operation is one pending remote write produced by the delta engine.
// RemoteID is empty for creates. Zero operations reset the tracked numeric
// fields of a row that fell out of the current snapshot.
type Operation struct {
	Action     Action
	RemoteID   string
	RecordKey  string
	Properties PropertySet
}

// IsZero reports whether the operation is a zeroing write.
func (o Operation) IsZero() bool {
	return o.Action == ActionZero
}

// Stats holds the per-run outcome counters.
type Stats struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Zeroed  int `json:"zeroed"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// TotalOperations returns the number of writes that were executed.
func (s Stats) TotalOperations() int {
	return s.Created + s.Updated + s.Zeroed
}

// Add accumulates another Stats into this one.
func (s *Stats) Add(other Stats) {
	s.Created += other.Created
	s.Updated += other.Updated
	s.Zeroed += other.Zeroed
	s.Skipped += other.Skipped
	s.Errors += other.Errors
}

func (s Stats) String() string {
	return fmt.Sprintf("created=%d, updated=%d, zeroed=%d, skipped=%d, errors=%d",
		s.Created, s.Updated, s.Zeroed, s.Skipped, s.Errors)
}
