package state

import (
	"time"

	"github.com/freqsync/freqsync/internal/domain"
)

// StateVersion is the schema version for state file migration
const StateVersion = 1

// UploadState records the last successful sync for one group snapshot: the
// master checksum it covered and the numeric values as written to the target.
type UploadState struct {
	Version         int                       `json:"version"`
	LastUploadedAt  time.Time                 `json:"last_uploaded_at"`
	TargetKind      string                    `json:"target_kind"`
	TargetID        string                    `json:"target_id"`
	MasterChecksum  string                    `json:"master_checksum"`
	Stats           domain.Stats              `json:"stats"`
	UploadedRecords map[string]UploadedRecord `json:"uploaded_records"`
}

// UploadedRecord holds the tracked numeric fields as last written.
type UploadedRecord struct {
	Freq30         float64  `json:"freq_30d"`
	Freq90         float64  `json:"freq_90d"`
	Freq180        float64  `json:"freq_180d"`
	AcceptanceRate *float64 `json:"acceptance_rate,omitempty"`
}

// Build assembles the state to persist after a successful sync of doc.
func Build(doc *domain.MasterDocument, stats domain.Stats, targetKind, targetID string) *UploadState {
	uploaded := make(map[string]UploadedRecord, len(doc.Records))
	for key, rec := range doc.Records {
		uploaded[key] = UploadedRecord{
			Freq30:         rec.Freq30,
			Freq90:         rec.Freq90,
			Freq180:        rec.Freq180,
			AcceptanceRate: rec.AcceptanceRate,
		}
	}

	return &UploadState{
		Version:         StateVersion,
		LastUploadedAt:  time.Now().UTC(),
		TargetKind:      targetKind,
		TargetID:        targetID,
		MasterChecksum:  doc.Checksum,
		Stats:           stats,
		UploadedRecords: uploaded,
	}
}

// Record returns the uploaded values for a record key.
func (s *UploadState) Record(key string) (UploadedRecord, bool) {
	rec, ok := s.UploadedRecords[key]
	return rec, ok
}
