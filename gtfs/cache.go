package gtfs

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// EncodeIndex writes a gob encoding of index to w. Pair it with DecodeIndex
// to skip re-parsing stop_times.txt on restart:
//
//	if index, err := gtfs.LoadIndexCache("/cache/gtfs.gob"); err == nil {
//	    return index
//	}
//	index, _ := gtfs.NewIndexFromFile("MBTA_GTFS.zip")
//	_ = gtfs.SaveIndexCache(index, "/cache/gtfs.gob")
func EncodeIndex(index *Index, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(index); err != nil {
		return fmt.Errorf("failed to encode GTFS index: %w", err)
	}
	return nil
}

// DecodeIndex reads an index written by EncodeIndex.
func DecodeIndex(r io.Reader) (*Index, error) {
	var index Index
	if err := gob.NewDecoder(r).Decode(&index); err != nil {
		return nil, fmt.Errorf("failed to decode GTFS index: %w", err)
	}
	return &index, nil
}

// SaveIndexCache writes index to path.
func SaveIndexCache(index *Index, path string) error {
	var buf bytes.Buffer
	if err := EncodeIndex(index, &buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// LoadIndexCache reads an index from path. A missing or corrupt file is an
// error; callers fall back to parsing the zip.
func LoadIndexCache(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	defer f.Close()
	return DecodeIndex(f)
}
