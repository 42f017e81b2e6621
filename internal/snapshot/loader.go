package snapshot

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/freqsync/freqsync/internal/domain"
)

// MasterFileName is the snapshot document file inside a date directory
const MasterFileName = "master.json"

const dateLayout = "2006-01-02"

// ComputeChecksum digests the canonical JSON of the records map. Map keys are
// serialized in sorted order, so any content change to any record changes the
// result. Format: "sha256:<16 hex chars>".
func ComputeChecksum(records map[string]domain.Record) string {
	canonical, err := json.Marshal(records)
	if err != nil {
		// A records map is always marshalable; keep the signature simple.
		return "sha256:0000000000000000"
	}
	sum := sha256.Sum256(canonical)
	return fmt.Sprintf("sha256:%x", sum[:8])
}

// Load reads and validates a master document from a date directory.
// The declared checksum, when present, must match the records content;
// a document without one gets its checksum computed on load.
func Load(dateDir string) (*domain.MasterDocument, error) {
	path := filepath.Join(dateDir, MasterFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSnapshotNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read master document: %w", err)
	}

	var doc domain.MasterDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid master document %s: %w", path, err)
	}

	if doc.Checksum == "" {
		doc.Checksum = ComputeChecksum(doc.Records)
	} else if doc.Checksum != ComputeChecksum(doc.Records) {
		return nil, fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, path)
	}

	return &doc, nil
}

// ResolveDir locates the snapshot date directory for a group. With an
// explicit date the directory must exist. Otherwise today's directory is
// preferred, falling back to the latest YYYY-MM-DD directory.
func ResolveDir(root, group, date string) (string, error) {
	groupDir := filepath.Join(root, group)

	if date != "" {
		dir := filepath.Join(groupDir, date)
		if _, err := os.Stat(dir); err != nil {
			return "", fmt.Errorf("%w: date directory %s", domain.ErrSnapshotNotFound, dir)
		}
		return dir, nil
	}

	today := time.Now().Format(dateLayout)
	todayDir := filepath.Join(groupDir, today)
	if _, err := os.Stat(todayDir); err == nil {
		return todayDir, nil
	}

	entries, err := os.ReadDir(groupDir)
	if err != nil {
		return "", fmt.Errorf("%w: no snapshots under %s", domain.ErrSnapshotNotFound, groupDir)
	}

	latest := ""
	for _, entry := range entries {
		if !entry.IsDir() || !isDateFolder(entry.Name()) {
			continue
		}
		if entry.Name() > latest {
			latest = entry.Name()
		}
	}
	if latest == "" {
		return "", fmt.Errorf("%w: no date directories under %s", domain.ErrSnapshotNotFound, groupDir)
	}

	return filepath.Join(groupDir, latest), nil
}

// isDateFolder checks if a name is YYYY-MM-DD
func isDateFolder(name string) bool {
	_, err := time.Parse(dateLayout, name)
	return err == nil
}
