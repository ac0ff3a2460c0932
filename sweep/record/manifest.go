package record

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ManifestVersion is written into every manifest header.
const ManifestVersion = 1

// ManifestHeader captures sweep-level metadata.
type ManifestHeader struct {
	Version        int      `yaml:"manifest_version"`
	SweepID        string   `yaml:"sweep_id"`
	CreatedAt      string   `yaml:"created_at,omitempty"`
	Root           string   `yaml:"ns3_root"`
	Executable     string   `yaml:"executable"`
	LibraryPath    string   `yaml:"library_path,omitempty"`
	WorkDir        string   `yaml:"work_dir,omitempty"`
	Campaigns      []string `yaml:"campaigns"`
	ExistingPolicy string   `yaml:"existing_policy"`
	Runs           int      `yaml:"runs"`
	Failed         int      `yaml:"failed"`
	Skipped        int      `yaml:"skipped"`
}

// Manifest combines header and records for a complete sweep.
type Manifest struct {
	Header  ManifestHeader
	Records []RunRecord
}

// CSV column headers for the manifest data file.
var manifestColumns = []string{
	"sweep_id", "campaign", "index", "instance", "cc1", "cc2", "loss_rate",
	"folder", "status", "exit_code", "started_at", "duration_ms", "error",
}

// ManifestPaths returns the header and data paths for a sweep in dir.
func ManifestPaths(dir, sweepID string) (headerPath, dataPath string) {
	base := filepath.Join(dir, "sweep-"+sweepID)
	return base + ".yaml", base + ".csv"
}

// ExportManifest writes the header (YAML) and records (CSV) to separate files.
// Start times use RFC 3339 with nanoseconds.
func ExportManifest(header *ManifestHeader, records []RunRecord, headerPath, dataPath string) error {
	headerData, err := yaml.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshaling manifest header: %w", err)
	}
	if err := os.WriteFile(headerPath, headerData, 0644); err != nil {
		return fmt.Errorf("writing manifest header: %w", err)
	}

	file, err := os.Create(dataPath)
	if err != nil {
		return fmt.Errorf("creating manifest data file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write(manifestColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.SweepID,
			r.Campaign,
			strconv.Itoa(r.Index),
			r.Instance,
			r.CC1,
			r.CC2,
			strconv.Itoa(r.LossRate),
			r.Folder,
			r.Status,
			strconv.Itoa(r.ExitCode),
			r.StartedAt.Format(time.RFC3339Nano),
			strconv.FormatInt(r.DurationMs, 10),
			r.Error,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %s/%d: %w", r.Campaign, r.Index, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing manifest data: %w", err)
	}
	return nil
}

// LoadManifest reads a manifest header (YAML) and data (CSV).
func LoadManifest(headerPath, dataPath string) (*Manifest, error) {
	headerData, err := os.ReadFile(headerPath)
	if err != nil {
		return nil, fmt.Errorf("reading manifest header: %w", err)
	}
	var header ManifestHeader
	if err := yaml.Unmarshal(headerData, &header); err != nil {
		return nil, fmt.Errorf("parsing manifest header: %w", err)
	}

	file, err := os.Open(dataPath)
	if err != nil {
		return nil, fmt.Errorf("opening manifest data: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	var records []RunRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		r, err := parseRunRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return &Manifest{Header: header, Records: records}, nil
}

func parseRunRecord(row []string) (RunRecord, error) {
	if len(row) != len(manifestColumns) {
		return RunRecord{}, fmt.Errorf("CSV row has %d columns, expected %d", len(row), len(manifestColumns))
	}
	index, err := strconv.Atoi(row[2])
	if err != nil {
		return RunRecord{}, fmt.Errorf("parsing index %q: %w", row[2], err)
	}
	loss, err := strconv.Atoi(row[6])
	if err != nil {
		return RunRecord{}, fmt.Errorf("parsing loss_rate %q: %w", row[6], err)
	}
	exitCode, err := strconv.Atoi(row[9])
	if err != nil {
		return RunRecord{}, fmt.Errorf("parsing exit_code %q: %w", row[9], err)
	}
	started, err := time.Parse(time.RFC3339Nano, row[10])
	if err != nil {
		return RunRecord{}, fmt.Errorf("parsing started_at %q: %w", row[10], err)
	}
	durationMs, err := strconv.ParseInt(row[11], 10, 64)
	if err != nil {
		return RunRecord{}, fmt.Errorf("parsing duration_ms %q: %w", row[11], err)
	}
	return RunRecord{
		SweepID:    row[0],
		Campaign:   row[1],
		Index:      index,
		Instance:   row[3],
		CC1:        row[4],
		CC2:        row[5],
		LossRate:   loss,
		Folder:     row[7],
		Status:     row[8],
		ExitCode:   exitCode,
		StartedAt:  started,
		DurationMs: durationMs,
		Error:      row[12],
	}, nil
}
