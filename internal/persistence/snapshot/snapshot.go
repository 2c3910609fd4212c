package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"goldrush.ai/internal/sim/model"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	Tick    uint64 `json:"tick"`
}

// DumpV1 is a point-in-time copy of every table in a world store. Dumps are
// for offline inspection only; nothing loads them back into a store.
type DumpV1 struct {
	Header Header `json:"header"`

	CatalogDigest string `json:"catalog_digest,omitempty"`

	Resources   []model.Resource   `json:"resources"`
	Workers     []model.Worker     `json:"workers"`
	Tools       []model.Tool       `json:"tools"`
	ToolMasters []model.ToolMaster `json:"tool_masters"`
}

// Path returns the conventional dump file location for tick under dir.
func Path(dir string, tick uint64) string {
	return filepath.Join(dir, fmt.Sprintf("%d.dump.zst", tick))
}

// WriteDump writes a JSON header line followed by the gob-encoded dump, all
// zstd-compressed.
func WriteDump(path string, d DumpV1) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(d.Header)
	if _, err := bw.Write(hb); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		_ = enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&d); err != nil {
		_ = enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func ReadDump(path string) (DumpV1, error) {
	var d DumpV1
	f, err := os.Open(path)
	if err != nil {
		return d, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return d, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// The header line is for humans and tools like zstdcat; gob carries it too.
	if _, err := br.ReadBytes('\n'); err != nil {
		return d, fmt.Errorf("read header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&d); err != nil {
		return d, fmt.Errorf("gob decode: %w", err)
	}
	if d.Header.Version != Version {
		return d, fmt.Errorf("unsupported dump version %d", d.Header.Version)
	}
	return d, nil
}
