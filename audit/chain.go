package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// chainFilePattern names chain records by 1-based sequence number.
const chainFilePattern = "report-%06d.json"

// ChainStore is the append-only report chain. Every append links the
// new report to the content hash of the current tip. The store is a
// single-writer resource: appends serialize through a mutex, and no
// method ever rewrites or deletes a prior entry.
type ChainStore struct {
	dir string
	mu  sync.Mutex
}

// NewChainStore opens (creating if needed) a chain directory.
func NewChainStore(dir string) (*ChainStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create chain directory: %w", err)
	}
	return &ChainStore{dir: dir}, nil
}

// Append links the report to the chain tip and persists it as the new
// tip. The report's PreviousHash is overwritten with the tip's content
// hash (empty for the first entry).
func (s *ChainStore) Append(report *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.listEntries()
	if err != nil {
		return err
	}

	report.PreviousHash = ""
	if len(entries) > 0 {
		tip, err := s.readEntry(entries[len(entries)-1])
		if err != nil {
			return err
		}
		report.PreviousHash = tip.ContentHash
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(s.dir, fmt.Sprintf(chainFilePattern, len(entries)+1))
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("chain entry already exists: %s", path)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write chain entry: %w", err)
	}
	return nil
}

// Verify recomputes every link. For each adjacent pair (A, B) it
// checks that B.previous_hash equals the recomputed hash of A's
// canonical body, and that each stored content_hash matches its own
// body. Returns the number of intact entries and the first integrity
// error found, if any.
func (s *ChainStore) Verify() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.listEntries()
	if err != nil {
		return 0, err
	}

	previous := ""
	for i, name := range entries {
		report, err := s.readEntry(name)
		if err != nil {
			return i, &IntegrityError{Seq: i + 1, Path: name,
				Reason: fmt.Sprintf("unreadable entry: %v", err)}
		}

		recomputed := report.ComputeHash()
		if report.ContentHash != recomputed {
			return i, &IntegrityError{Seq: i + 1, Path: name,
				Reason: fmt.Sprintf("content_hash %s does not match recomputed %s",
					report.ContentHash, recomputed)}
		}
		if report.PreviousHash != previous {
			return i, &IntegrityError{Seq: i + 1, Path: name,
				Reason: fmt.Sprintf("previous_hash %s does not match prior content_hash %s",
					report.PreviousHash, previous)}
		}
		previous = report.ContentHash
	}

	return len(entries), nil
}

// Tip returns the most recent report, or nil for an empty chain.
func (s *ChainStore) Tip() (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.listEntries()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return s.readEntry(entries[len(entries)-1])
}

// Len returns the number of chain entries.
func (s *ChainStore) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.listEntries()
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// listEntries returns chain record file names in sequence order.
func (s *ChainStore) listEntries() ([]string, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read chain directory: %w", err)
	}

	var names []string
	for _, e := range dirEntries {
		if e.IsDir() {
			continue
		}
		var seq int
		if _, err := fmt.Sscanf(e.Name(), chainFilePattern, &seq); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *ChainStore) readEntry(name string) (*Report, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("read chain entry %s: %w", name, err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse chain entry %s: %w", name, err)
	}
	return &report, nil
}

// SaveReport writes a standalone copy of the report outside the chain.
func SaveReport(report *Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
