package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/freqsync/freqsync/internal/utils"
)

// StateFileName is the per-snapshot state file inside a date directory
const StateFileName = ".upload_state.json"

// Store persists UploadState files next to the snapshot they describe.
type Store struct {
	mu     sync.Mutex
	logger *utils.Logger
}

// NewStore creates a new state store
func NewStore(logger *utils.Logger) *Store {
	return &Store{logger: logger}
}

// Load reads the upload state from a date directory. A missing file returns
// ErrStateNotFound; callers treat that as "never uploaded".
func (s *Store) Load(dateDir string) (*UploadState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(dateDir, StateFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}

	var st UploadState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, ErrStateCorrupted
	}

	if st.Version != StateVersion {
		if s.logger != nil {
			s.logger.Warn().
				Int("file_version", st.Version).
				Int("expected_version", StateVersion).
				Msg("Upload state version mismatch, ignoring previous state")
		}
		return nil, ErrVersionMismatch
	}

	return &st, nil
}

// Save writes the upload state atomically into a date directory.
func (s *Store) Save(dateDir string, st *UploadState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(dateDir, StateFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}

	if s.logger != nil {
		s.logger.Debug().
			Int("records", len(st.UploadedRecords)).
			Str("path", path).
			Msg("Upload state saved")
	}
	return nil
}
