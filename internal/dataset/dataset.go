// Package dataset holds the in-memory concatenation of normalized message
// files with calendar fields derived at load time.
package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/senzi/weibochat-insight/internal/ingest"
)

// ErrNoData means the selection resolved to zero usable records.
var ErrNoData = errors.New("no records in selection")

// All derived calendar fields use the chat's local timezone.
var Location = time.FixedZone("UTC+8", 8*60*60)

// Record is a normalized message plus derived calendar fields. The derived
// fields are pure functions of Time and are recomputed at every load.
type Record struct {
	ingest.Record

	Date    string // "2006-01-02" in Location
	Hour    int    // 0-23
	Weekday int    // 0=Monday .. 6=Sunday
}

// Dataset is the loaded record set for one selection. Replaced wholesale on
// every selection change, never updated in place.
type Dataset struct {
	Records []Record
	Files   []string
}

// Store reads normalized ndjson files from a single directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the processed-files directory.
func (s *Store) Dir() string {
	return s.dir
}

// AvailableFiles lists the normalized file names on disk, sorted.
func (s *Store) AvailableFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".ndjson") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Load reads every named file, concatenates the records, and computes derived
// time fields. Names that do not exist on disk are skipped; validating them is
// the caller's job. Returns ErrNoData when nothing usable was read.
func (s *Store) Load(names []string) (*Dataset, error) {
	ds := &Dataset{
		Records: make([]Record, 0),
		Files:   append([]string(nil), names...),
	}

	for _, name := range names {
		path := filepath.Join(s.dir, filepath.Base(name))
		if err := s.loadFile(path, ds); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
	}

	if len(ds.Records) == 0 {
		return nil, ErrNoData
	}
	return ds, nil
}

func (s *Store) loadFile(path string, ds *Dataset) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec ingest.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		ds.Records = append(ds.Records, derive(rec))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

func derive(rec ingest.Record) Record {
	t := time.Unix(rec.Time, 0).In(Location)
	return Record{
		Record:  rec,
		Date:    t.Format("2006-01-02"),
		Hour:    t.Hour(),
		Weekday: (int(t.Weekday()) + 6) % 7,
	}
}
