package collect

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/policycheck/internal/harness"
)

// Transcript is the audit record of one collection run.
type Transcript struct {
	RunID      string            `yaml:"run_id"`
	Suite      string            `yaml:"suite"`
	Version    string            `yaml:"version"`
	StartedAt  time.Time         `yaml:"started_at"`
	FinishedAt time.Time         `yaml:"finished_at"`
	Entries    []TranscriptEntry `yaml:"entries"`
}

// TranscriptEntry is one recorded prompt and response.
type TranscriptEntry struct {
	PhaseID    string    `yaml:"phase"`
	CaseID     string    `yaml:"case"`
	Prompt     string    `yaml:"prompt"`
	Response   string    `yaml:"response"`
	RecordedAt time.Time `yaml:"recorded_at"`
}

// Recorder accumulates entries and writes them as a YAML transcript.
type Recorder struct {
	dir    string
	clock  Clock
	logger *slog.Logger
	t      Transcript
}

// NewRecorder starts a transcript for the given suite. The run id is minted
// immediately so it can be shown before collection begins.
func NewRecorder(dir, suite, version string, clock Clock, ids IDGenerator, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		dir:    dir,
		clock:  clock,
		logger: logger,
		t: Transcript{
			RunID:     ids.Generate(),
			Suite:     suite,
			Version:   version,
			StartedAt: clock.Now(),
			Entries:   []TranscriptEntry{},
		},
	}
}

// RunID returns the id the transcript is filed under.
func (r *Recorder) RunID() string {
	return r.t.RunID
}

// Add records one entry.
func (r *Recorder) Add(e Entry) {
	r.t.Entries = append(r.t.Entries, TranscriptEntry{
		PhaseID:    e.PhaseID,
		CaseID:     e.CaseID,
		Prompt:     e.Prompt,
		Response:   e.Response,
		RecordedAt: r.clock.Now(),
	})
	r.logger.Debug("recorded response", "phase", e.PhaseID, "case", e.CaseID, "bytes", len(e.Response))
}

// Transcript returns a copy of what has been recorded so far.
func (r *Recorder) Transcript() Transcript {
	t := r.t
	t.Entries = append([]TranscriptEntry(nil), r.t.Entries...)
	return t
}

// Save writes the transcript to dir as transcript-<timestamp>-<run id>.yaml
// and returns the path.
func (r *Recorder) Save() (string, error) {
	r.t.FinishedAt = r.clock.Now()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create transcript dir: %w", err)
	}
	data, err := yaml.Marshal(&r.t)
	if err != nil {
		return "", fmt.Errorf("encode transcript: %w", err)
	}

	name := fmt.Sprintf("transcript-%s-%s.yaml", r.t.StartedAt.UTC().Format("20060102T150405Z"), r.t.RunID)
	path := filepath.Join(r.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	r.logger.Info("transcript saved", "path", path, "entries", len(r.t.Entries))
	return path, nil
}

// LoadTranscript reads a transcript written by Save.
func LoadTranscript(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript %s: %w", path, err)
	}
	var t Transcript
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse transcript %s: %w", path, err)
	}
	return &t, nil
}

// Responses rebuilds the responses a transcript recorded.
func (t *Transcript) Responses() harness.Responses {
	responses := harness.Responses{}
	for _, e := range t.Entries {
		responses.Set(e.PhaseID, e.CaseID, e.Response)
	}
	return responses
}

// Record wraps src so every entry it yields is added to rec.
func Record(src Source, rec *Recorder) Source {
	return &recordingSource{src: src, rec: rec}
}

type recordingSource struct {
	src Source
	rec *Recorder
}

func (s *recordingSource) Next() (Entry, error) {
	e, err := s.src.Next()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.rec.logger.Warn("collection stopped", "error", err)
		}
		return e, err
	}
	s.rec.Add(e)
	return e, nil
}
