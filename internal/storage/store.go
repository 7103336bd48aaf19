package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/heft/internal/config"
	"github.com/san-kum/heft/internal/sim"
	"github.com/zeebo/xxh3"
	"gopkg.in/yaml.v3"
)

var ErrNoRows = errors.New("storage: run has no rows")

const (
	metadataFile = "metadata.json"
	logFile      = "log.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string    `json:"id"`
	Experiment string    `json:"experiment"`
	Condition  string    `json:"condition"`
	Preset     string    `json:"preset,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Seed       int64     `json:"seed"`
	// ConfigHash fingerprints the full configuration so repeated runs of
	// the same setup can be grouped.
	ConfigHash  string             `json:"config_hash"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	LogInterval float64            `json:"log_interval"`
	Elapsed     float64            `json:"elapsed"`
	Steps       int                `json:"steps"`
	Complete    bool               `json:"complete"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding metadata.json and log.csv and returns
// the run ID.
func (s *Store) Save(cfg *config.Config, preset string, result *sim.Result) (string, error) {
	hash, err := ConfigHash(cfg)
	if err != nil {
		return "", err
	}
	now := time.Now()
	runID, runDir, err := s.newRunDir(fmt.Sprintf("%s_%s_%d", cfg.Experiment, cfg.Condition, now.Unix()))
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Experiment:  cfg.Experiment,
		Condition:   cfg.Condition,
		Preset:      preset,
		Timestamp:   now,
		Seed:        cfg.Seed,
		ConfigHash:  hash,
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		LogInterval: cfg.LogInterval,
		Elapsed:     result.Elapsed,
		Steps:       result.StepsTaken,
		Complete:    result.Complete,
		Metrics:     result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, logFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, result.Rows); err != nil {
		return "", err
	}
	return runID, nil
}

// ConfigHash is the xxh3 hash of cfg's YAML form, ignoring the seed.
func ConfigHash(cfg *config.Config) (string, error) {
	c := *cfg
	c.Seed = 0
	data, err := yaml.Marshal(&c)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", xxh3.Hash(data)), nil
}

// newRunDir creates a fresh directory, suffixing the ID when runs land in
// the same second.
func (s *Store) newRunDir(base string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	id := base
	for i := 1; ; i++ {
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		id = fmt.Sprintf("%s_%d", base, i)
	}
}

// WriteCSV writes rows in the log.csv layout.
func WriteCSV(w io.Writer, rows []sim.LogEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sim.Header()); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses rows written by WriteCSV.
func ReadCSV(r io.Reader) ([]sim.LogEntry, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.LogEntry{}, nil
	}
	rows := make([]sim.LogEntry, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := sim.ParseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rows = append(rows, e)
	}
	return rows, nil
}

// List returns stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadRows(runID string) ([]sim.LogEntry, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, logFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadCSV(file)
}

// Latest returns the ID of the newest run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", os.ErrNotExist
	}
	return runs[0].ID, nil
}
