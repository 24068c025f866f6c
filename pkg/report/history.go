package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"digital.vasic.contracts/pkg/scenario"
)

// HistoricalEntry is one scenario run in the history log.
type HistoricalEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	Files      int       `json:"files"`
	Total      int       `json:"total"`
	Passed     int       `json:"passed"`
	Failed     int       `json:"failed"`
	Misses     int       `json:"misses"`
	TimedOut   bool      `json:"timed_out,omitempty"`
	Duration   string    `json:"duration"`
	ReportPath string    `json:"report_path,omitempty"`
}

// AppendToHistory adds rep to the history log at historyPath.
// Each entry is a single JSON line.
func AppendToHistory(
	historyPath string,
	rep *scenario.Report,
	reportPath string,
) error {
	entry := HistoricalEntry{
		Timestamp:  rep.StartedAt.Add(rep.Duration),
		Files:      rep.Files,
		Total:      rep.Total,
		Passed:     rep.Passed,
		Failed:     rep.Failed,
		Misses:     rep.Misses,
		TimedOut:   rep.TimedOut,
		Duration:   rep.Duration.String(),
		ReportPath: reportPath,
	}

	data, err := jsonMarshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	file, err := os.OpenFile(
		historyPath,
		os.O_CREATE|os.O_APPEND|os.O_WRONLY,
		0644,
	)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer func() { _ = file.Close() }()

	_, err = fmt.Fprintln(file, string(data))
	return err
}

// ReadHistory returns the entries of the history log in the
// order they were appended. A missing file has no entries.
func ReadHistory(historyPath string) ([]HistoricalEntry, error) {
	file, err := os.Open(historyPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var entries []HistoricalEntry
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e HistoricalEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("history line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	return entries, nil
}
