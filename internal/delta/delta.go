// Package delta computes the minimal operation set needed to bring a remote
// database in line with the current master document.
package delta

import (
	"sort"

	"github.com/freqsync/freqsync/internal/domain"
	"github.com/freqsync/freqsync/internal/state"
)

// Compute returns the operations needed to reconcile the remote rows with the
// current snapshot, given the values last written (previous may be nil).
//
// Fast path: when the previous upload covered the same master checksum the
// snapshot is unchanged since the last successful sync and no operations are
// produced, independent of remote state.
//
// Re-running Compute against the state produced by executing its own output,
// with an unchanged remote, yields no operations.
func Compute(current *domain.MasterDocument, previous *state.UploadState, remote map[string]domain.RemoteRecord) []domain.Operation {
	if previous != nil && previous.MasterChecksum == current.Checksum {
		return nil
	}

	var operations []domain.Operation

	keys := make([]string, 0, len(current.Records))
	for key := range current.Records {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	currentTitles := make(map[string]bool, len(current.Records))

	for _, key := range keys {
		record := current.Records[key]
		currentTitles[record.TitleKey()] = true

		if !needsUpdate(record, previous, key) {
			continue
		}

		op := domain.Operation{
			Action:     domain.ActionCreate,
			RecordKey:  key,
			Properties: domain.BuildRecordProperties(record, current.GroupKey),
		}
		if existing, ok := remote[record.TitleKey()]; ok {
			op.Action = domain.ActionUpdate
			op.RemoteID = existing.RemoteID
		}
		operations = append(operations, op)
	}

	// Zero pass: rows present remotely but absent from the snapshot get their
	// tracked numerics reset, unless they are already all ≈0.
	remoteTitles := make([]string, 0, len(remote))
	for title := range remote {
		remoteTitles = append(remoteTitles, title)
	}
	sort.Strings(remoteTitles)

	for _, title := range remoteTitles {
		record := remote[title]
		if currentTitles[title] || record.TrackedZero() {
			continue
		}
		operations = append(operations, domain.Operation{
			Action:     domain.ActionZero,
			RemoteID:   record.RemoteID,
			RecordKey:  title,
			Properties: domain.BuildZeroProperties(),
		})
	}

	return operations
}

// needsUpdate reports whether a record's tracked numerics changed beyond EPS
// since the last successful upload (a record never uploaded always does).
func needsUpdate(record domain.Record, previous *state.UploadState, key string) bool {
	if previous == nil {
		return true
	}
	prior, ok := previous.Record(key)
	if !ok {
		return true
	}

	if !domain.NearlyEqual(prior.Freq30, record.Freq30) ||
		!domain.NearlyEqual(prior.Freq90, record.Freq90) ||
		!domain.NearlyEqual(prior.Freq180, record.Freq180) {
		return true
	}

	if record.AcceptanceRate != nil {
		priorRate := 0.0
		if prior.AcceptanceRate != nil {
			priorRate = *prior.AcceptanceRate
		}
		if !domain.NearlyEqual(priorRate, *record.AcceptanceRate) {
			return true
		}
	}

	return false
}
