package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fp(v float64) *float64 { return &v }

func TestNearlyEqual(t *testing.T) {
	assert.True(t, NearlyEqual(1.0, 1.0))
	assert.True(t, NearlyEqual(1.0, 1.0+EPS/2))
	assert.True(t, NearlyEqual(1.0+EPS/2, 1.0))
	assert.False(t, NearlyEqual(1.0, 1.0+EPS*2))
	assert.True(t, NearlyEqual(0, 0))
}

func TestRecordTitleKey(t *testing.T) {
	r := Record{Title: "Two Sum", FrontendID: "1"}
	assert.Equal(t, "1. Two Sum", r.TitleKey())

	r = Record{Title: "Untracked Problem"}
	assert.Equal(t, "Untracked Problem", r.TitleKey())
}

func TestRemoteRecordTrackedZero(t *testing.T) {
	tests := []struct {
		name   string
		record RemoteRecord
		want   bool
	}{
		{"all nil", RemoteRecord{}, true},
		{"explicit zeros", RemoteRecord{Freq30: fp(0), Freq90: fp(0), Freq180: fp(0)}, true},
		{"within epsilon", RemoteRecord{Freq30: fp(EPS / 2)}, true},
		{"mixed nil and zero", RemoteRecord{Freq90: fp(0)}, true},
		{"one nonzero", RemoteRecord{Freq30: fp(0), Freq180: fp(3)}, false},
		{"acceptance rate is not tracked", RemoteRecord{AcceptanceRate: fp(50)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.TrackedZero())
		})
	}
}

func TestOperationIsZero(t *testing.T) {
	assert.True(t, Operation{Action: ActionZero}.IsZero())
	assert.False(t, Operation{Action: ActionCreate}.IsZero())
	assert.False(t, Operation{Action: ActionUpdate}.IsZero())
}

func TestStats(t *testing.T) {
	s := Stats{Created: 2, Updated: 3, Zeroed: 1, Skipped: 4, Errors: 1}
	assert.Equal(t, 6, s.TotalOperations())

	s.Add(Stats{Created: 1, Errors: 2})
	assert.Equal(t, 3, s.Created)
	assert.Equal(t, 3, s.Errors)
	assert.Equal(t, "created=3, updated=3, zeroed=1, skipped=4, errors=3", s.String())
}
