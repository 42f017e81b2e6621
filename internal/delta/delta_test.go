package delta_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freqsync/freqsync/internal/delta"
	"github.com/freqsync/freqsync/internal/domain"
	"github.com/freqsync/freqsync/internal/snapshot"
	"github.com/freqsync/freqsync/internal/state"
)

func fp(v float64) *float64 {
	return &v
}

func makeDoc(records map[string]domain.Record) *domain.MasterDocument {
	return &domain.MasterDocument{
		GroupKey:     "Meta",
		SnapshotID:   "2026-08-30",
		TotalRecords: len(records),
		Checksum:     snapshot.ComputeChecksum(records),
		Records:      records,
	}
}

func threeRecords() map[string]domain.Record {
	return map[string]domain.Record{
		"two-sum": {
			Title:      "Two Sum",
			FrontendID: "1",
			URL:        "https://example.com/problems/two-sum/",
			Difficulty: "Easy",
			Tags:       []string{"Array", "Hash Table"},
			Freq30:     12.5,
			Freq90:     30.1,
			Freq180:    55.0,
		},
		"lru-cache": {
			Title:          "LRU Cache",
			FrontendID:     "146",
			Difficulty:     "Medium",
			AcceptanceRate: fp(43.2),
			Freq30:         8.0,
			Freq90:         20.0,
			Freq180:        41.5,
		},
		"word-ladder": {
			Title:      "Word Ladder",
			FrontendID: "127",
			Difficulty: "Hard",
			Freq30:     2.0,
			Freq90:     6.5,
			Freq180:    10.0,
		},
	}
}

// remoteFor builds the remote index that executing ops against an empty
// database would produce.
func remoteFor(doc *domain.MasterDocument) map[string]domain.RemoteRecord {
	remote := make(map[string]domain.RemoteRecord)
	for _, rec := range doc.Records {
		remote[rec.TitleKey()] = domain.RemoteRecord{
			RemoteID:       rec.TitleKey(),
			TitleKey:       rec.TitleKey(),
			Freq30:         fp(rec.Freq30),
			Freq90:         fp(rec.Freq90),
			Freq180:        fp(rec.Freq180),
			AcceptanceRate: rec.AcceptanceRate,
		}
	}
	return remote
}

func TestCompute_NewRecordsAgainstEmptyRemote(t *testing.T) {
	doc := makeDoc(threeRecords())

	ops := delta.Compute(doc, nil, map[string]domain.RemoteRecord{})

	require.Len(t, ops, 3)
	for _, op := range ops {
		assert.Equal(t, domain.ActionCreate, op.Action)
		assert.Empty(t, op.RemoteID)
		assert.False(t, op.IsZero())
	}

	st := state.Build(doc, domain.Stats{Created: 3}, "notion", "db-1")
	assert.Equal(t, doc.Checksum, st.MasterChecksum)
	assert.Len(t, st.UploadedRecords, 3)
}

func TestCompute_ChecksumShortCircuit(t *testing.T) {
	doc := makeDoc(threeRecords())
	st := state.Build(doc, domain.Stats{Created: 3}, "notion", "db-1")

	// Fast path holds for any remote state, even an arbitrary non-empty one.
	remote := map[string]domain.RemoteRecord{
		"999. Unrelated": {RemoteID: "p-999", TitleKey: "999. Unrelated", Freq30: fp(7)},
	}

	ops := delta.Compute(doc, st, remote)
	assert.Empty(t, ops)
}

func TestCompute_IdempotentAfterExecution(t *testing.T) {
	doc := makeDoc(threeRecords())
	st := state.Build(doc, domain.Stats{Created: 3}, "notion", "db-1")
	remote := remoteFor(doc)

	// Bypass the checksum fast path to exercise the per-record comparison.
	st.MasterChecksum = "sha256:different"

	ops := delta.Compute(doc, st, remote)
	assert.Empty(t, ops)
}

func TestCompute_SingleNumericChange(t *testing.T) {
	doc := makeDoc(threeRecords())
	st := state.Build(doc, domain.Stats{Created: 3}, "notion", "db-1")
	remote := remoteFor(doc)

	records := threeRecords()
	changed := records["two-sum"]
	changed.Freq30 += 5.0
	records["two-sum"] = changed
	next := makeDoc(records)
	require.NotEqual(t, doc.Checksum, next.Checksum)

	ops := delta.Compute(next, st, remote)

	require.Len(t, ops, 1)
	assert.Equal(t, domain.ActionUpdate, ops[0].Action)
	assert.Equal(t, "two-sum", ops[0].RecordKey)
	assert.Equal(t, changed.TitleKey(), ops[0].RemoteID)
}

func TestCompute_RemovedRecordIsZeroed(t *testing.T) {
	doc := makeDoc(threeRecords())
	st := state.Build(doc, domain.Stats{Created: 3}, "notion", "db-1")
	remote := remoteFor(doc)

	records := threeRecords()
	removed := records["word-ladder"]
	delete(records, "word-ladder")
	next := makeDoc(records)

	ops := delta.Compute(next, st, remote)

	require.Len(t, ops, 1)
	assert.Equal(t, domain.ActionZero, ops[0].Action)
	assert.True(t, ops[0].IsZero())
	assert.Equal(t, removed.TitleKey(), ops[0].RemoteID)

	freq30, ok := ops[0].Properties.Get(domain.PropFreq30)
	require.True(t, ok)
	assert.Equal(t, domain.NumberValue{Value: 0}, freq30)
	_, hasTitle := ops[0].Properties.Get(domain.PropTitle)
	assert.False(t, hasTitle, "zero ops must not touch the title")
}

func TestCompute_AlreadyZeroRemoteNotZeroedAgain(t *testing.T) {
	doc := makeDoc(threeRecords())

	remote := map[string]domain.RemoteRecord{
		"500. Gone": {
			RemoteID: "p-500",
			TitleKey: "500. Gone",
			Freq30:   fp(0),
			Freq90:   fp(domain.EPS / 2),
			Freq180:  nil, // unset counts as zero
		},
	}

	ops := delta.Compute(doc, nil, remote)

	for _, op := range ops {
		assert.NotEqual(t, domain.ActionZero, op.Action)
	}
	require.Len(t, ops, 3)
}

func TestCompute_ChangeWithinEpsilonIgnored(t *testing.T) {
	doc := makeDoc(threeRecords())
	st := state.Build(doc, domain.Stats{Created: 3}, "notion", "db-1")
	st.MasterChecksum = "sha256:different"

	records := threeRecords()
	nudged := records["lru-cache"]
	nudged.Freq90 += domain.EPS / 10
	records["lru-cache"] = nudged
	next := makeDoc(records)

	ops := delta.Compute(next, st, remoteFor(doc))
	assert.Empty(t, ops)
}

func TestCompute_AcceptanceRateChange(t *testing.T) {
	doc := makeDoc(threeRecords())
	st := state.Build(doc, domain.Stats{Created: 3}, "notion", "db-1")

	records := threeRecords()
	changed := records["lru-cache"]
	changed.AcceptanceRate = fp(44.0)
	records["lru-cache"] = changed
	next := makeDoc(records)

	ops := delta.Compute(next, st, remoteFor(doc))

	require.Len(t, ops, 1)
	assert.Equal(t, "lru-cache", ops[0].RecordKey)
	assert.Equal(t, domain.ActionUpdate, ops[0].Action)
}

func TestCompute_AcceptanceRateAppears(t *testing.T) {
	doc := makeDoc(threeRecords())
	st := state.Build(doc, domain.Stats{Created: 3}, "notion", "db-1")

	// word-ladder had no acceptance rate uploaded; a rate showing up counts
	// as a change against the implicit zero.
	records := threeRecords()
	changed := records["word-ladder"]
	changed.AcceptanceRate = fp(31.7)
	records["word-ladder"] = changed
	next := makeDoc(records)

	ops := delta.Compute(next, st, remoteFor(doc))

	require.Len(t, ops, 1)
	assert.Equal(t, "word-ladder", ops[0].RecordKey)
}

func TestCompute_NoPriorStateCreatesOrUpdatesByRemotePresence(t *testing.T) {
	doc := makeDoc(threeRecords())
	remote := remoteFor(doc)
	// Drop one from the remote index so it must be created.
	var missingTitle string
	for title := range remote {
		missingTitle = title
		break
	}
	delete(remote, missingTitle)

	ops := delta.Compute(doc, nil, remote)

	require.Len(t, ops, 3)
	creates, updates := 0, 0
	for _, op := range ops {
		switch op.Action {
		case domain.ActionCreate:
			creates++
		case domain.ActionUpdate:
			updates++
			assert.NotEmpty(t, op.RemoteID)
		}
	}
	assert.Equal(t, 1, creates)
	assert.Equal(t, 2, updates)
}

func TestCompute_OperationsCarryGroupLabel(t *testing.T) {
	doc := makeDoc(threeRecords())

	ops := delta.Compute(doc, nil, map[string]domain.RemoteRecord{})

	require.NotEmpty(t, ops)
	group, ok := ops[0].Properties.Get(domain.PropGroup)
	require.True(t, ok)
	assert.Equal(t, domain.SelectValue{Option: "Meta"}, group)
}

func TestCompute_DeterministicOrder(t *testing.T) {
	doc := makeDoc(threeRecords())

	first := delta.Compute(doc, nil, map[string]domain.RemoteRecord{})
	second := delta.Compute(doc, nil, map[string]domain.RemoteRecord{})

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].RecordKey, second[i].RecordKey)
	}
}
