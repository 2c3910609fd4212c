package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"

	"goldrush.ai/internal/sim/dig"
)

// DigLogger writes one JSONL entry per dig (compressed). It satisfies
// dig.Sink.
type DigLogger struct{ w *JSONLZstdWriter }

func NewDigLogger(runDir string) *DigLogger {
	return &DigLogger{w: NewJSONLZstdWriter(filepath.Join(runDir, "digs"), "digs")}
}

func (l *DigLogger) WriteDig(e dig.LogEntry) error { return l.w.Write(e) }
func (l *DigLogger) Close() error                  { return l.w.Close() }

// OnSegmentClosed forwards finished digs-*.jsonl.zst paths to fn.
func (l *DigLogger) OnSegmentClosed(fn func(path string)) { l.w.OnSegmentClosed(fn) }

// ReadDigs decodes every entry of one digs-*.jsonl.zst file.
func ReadDigs(path string) ([]dig.LogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []dig.LogEntry
	jd := json.NewDecoder(bufio.NewReader(dec))
	for jd.More() {
		var e dig.LogEntry
		if err := jd.Decode(&e); err != nil {
			return out, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		out = append(out, e)
	}
	return out, nil
}

// DigFiles lists the dig log files under dir in chronological order.
func DigFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "digs-*.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
