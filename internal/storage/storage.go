package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/ai-events/internal/event"
	"github.com/pfrederiksen/ai-events/internal/pipeline"
)

const (
	MidwayFile   = "midway.json"
	MarkdownFile = "events.md"
	DoneFile     = "done"
	CalendarFile = "events.ics"
)

// Storage handles persistence of pipeline artifacts
type Storage struct {
	dataDir     string
	reportPath  string
	resultsPath string
}

// New creates a new Storage instance rooted at dataDir. reportFile and resultsFile
// are used as given (relative to the working directory when not absolute).
func New(dataDir, reportFile, resultsFile string) (*Storage, error) {
	dataDir, err := expandHome(dataDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir:     dataDir,
		reportPath:  reportFile,
		resultsPath: resultsFile,
	}, nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// DataDir returns the resolved data directory.
func (s *Storage) DataDir() string {
	return s.dataDir
}

// Path returns the path of an artifact inside the data directory.
func (s *Storage) Path(name string) string {
	return filepath.Join(s.dataDir, name)
}

// SaveCandidates writes the intermediate snapshot of classified candidates.
func (s *Storage) SaveCandidates(records []event.ClassifiedRecord) error {
	if records == nil {
		records = []event.ClassifiedRecord{}
	}
	return writeJSON(s.Path(MidwayFile), records)
}

// LoadCandidates reads a candidate snapshot. An empty path reads midway.json.
func (s *Storage) LoadCandidates(path string) ([]event.ClassifiedRecord, error) {
	if path == "" {
		path = s.Path(MidwayFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading candidates: %w", err)
	}

	var records []event.ClassifiedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing candidates: %w", err)
	}
	return records, nil
}

// SaveReport writes the report file, events.md and the done marker.
func (s *Storage) SaveReport(report string) error {
	if s.reportPath != "" {
		if err := writeFile(s.reportPath, []byte(report)); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}
	if err := writeFile(s.Path(MarkdownFile), []byte(report)); err != nil {
		return fmt.Errorf("writing %s: %w", MarkdownFile, err)
	}
	if err := writeFile(s.Path(DoneFile), nil); err != nil {
		return fmt.Errorf("writing %s: %w", DoneFile, err)
	}
	return nil
}

// SaveCalendar writes the iCalendar export.
func (s *Storage) SaveCalendar(ics string) error {
	if err := writeFile(s.Path(CalendarFile), []byte(ics)); err != nil {
		return fmt.Errorf("writing %s: %w", CalendarFile, err)
	}
	return nil
}

// SaveRunState writes the final run snapshot.
func (s *Storage) SaveRunState(state *pipeline.RunState) error {
	if s.resultsPath == "" {
		return nil
	}
	return writeJSON(s.resultsPath, state)
}

// LoadRunState reads a final run snapshot. An empty path reads the results file.
func (s *Storage) LoadRunState(path string) (*pipeline.RunState, error) {
	if path == "" {
		path = s.resultsPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run state: %w", err)
	}

	var state pipeline.RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing run state: %w", err)
	}
	return &state, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := writeFile(path, data); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeFile writes atomically via a temp file in the same directory and a rename.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".ai-events-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
