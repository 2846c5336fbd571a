package game

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
)

// runLogRelPath is the run log location relative to the XDG data directory.
const runLogRelPath = "tetrawell/runs.jsonl"

// RunLog records one finished game.
type RunLog struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Player    string    `json:"player,omitempty"`
	Score     int       `json:"score"`
	Rows      int       `json:"rows"`
	Level     int       `json:"level"`
	Pieces    int       `json:"pieces"`
	Seconds   float64   `json:"seconds"`
}

// runLogMu serializes appends from concurrent SSH sessions.
var runLogMu sync.Mutex

// saveRunLog appends the finished game as a single JSON line to runs.jsonl.
// Errors are logged but never interrupt the game.
func saveRunLog(rl RunLog, logger *slog.Logger) {
	if rl.ID == "" {
		rl.ID = uuid.NewString()
	}
	path, err := xdg.DataFile(runLogRelPath)
	if err != nil {
		logger.Warn("run log: cannot determine data file", "error", err)
		return
	}
	data, err := json.Marshal(rl)
	if err != nil {
		logger.Warn("run log: cannot marshal JSON", "error", err)
		return
	}
	data = append(data, '\n')

	runLogMu.Lock()
	defer runLogMu.Unlock()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Warn("run log: cannot open file", "path", path, "error", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		logger.Warn("run log: write failed", "path", path, "error", err)
	}
}

// LoadRuns reads every run recorded in the XDG data directories. A missing
// log is not an error. Lines that fail to parse are skipped.
func LoadRuns() ([]RunLog, error) {
	path, err := xdg.SearchDataFile(runLogRelPath)
	if err != nil {
		return nil, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	defer f.Close()

	var runs []RunLog
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rl RunLog
		if err := json.Unmarshal(sc.Bytes(), &rl); err != nil {
			continue
		}
		runs = append(runs, rl)
	}
	if err := sc.Err(); err != nil {
		return runs, fmt.Errorf("read run log: %w", err)
	}
	return runs, nil
}

// TopScores returns at most n runs ordered by descending score. Ties keep
// the older run first.
func TopScores(runs []RunLog, n int) []RunLog {
	out := append([]RunLog(nil), runs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
