package catalog

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matst80/slask-facets/pkg/common/jsoncompat"
	"github.com/matst80/slask-facets/pkg/types"
)

// LoadFile reads a gzipped stream of json products into the store. A missing
// file is not an error, the catalog just starts empty.
func (s *MemoryStore) LoadFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("No catalog file at %s, starting empty", filename)
			return nil
		}
		return err
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(filename, ".gz") || strings.HasSuffix(filename, ".jz") {
		zipReader, err := gzip.NewReader(file)
		if err != nil {
			return err
		}
		defer zipReader.Close()
		reader = zipReader
	}

	items, err := DecodeProducts(reader)
	if err != nil {
		return fmt.Errorf("load catalog %s: %w", filename, err)
	}

	s.Upsert(items...)
	s.mu.RLock()
	version := s.version
	s.mu.RUnlock()
	// the loaded snapshot is already on disk
	s.markClean(version)
	log.Printf("Loaded %d products from %s", len(items), filename)
	return nil
}

// DecodeProducts reads consecutive json products until EOF. Products without
// an id are returned as is, the store skips them on upsert.
func DecodeProducts(r io.Reader) ([]types.Product, error) {
	dec := jsoncompat.NewDecoder(r)
	items := make([]types.Product, 0)
	for {
		tmp := types.Product{}
		err := dec.Decode(&tmp)
		if errors.Is(err, io.EOF) {
			return items, nil
		}
		if err != nil {
			return items, err
		}
		items = append(items, tmp)
	}
}

// SaveFile writes the snapshot to a temp file and renames it into place.
func (s *MemoryStore) SaveFile(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}
	tmpFileName := filename + ".tmp"
	file, err := os.Create(tmpFileName)
	if err != nil {
		return err
	}

	s.mu.RLock()
	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	items := make([]types.Product, len(ids))
	for i, id := range ids {
		items[i] = *s.items[id]
	}
	version := s.version
	s.mu.RUnlock()

	err = writeProducts(file, items, strings.HasSuffix(filename, ".gz") || strings.HasSuffix(filename, ".jz"))
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpFileName)
		return err
	}
	if err = os.Rename(tmpFileName, filename); err != nil {
		return err
	}
	s.markClean(version)
	log.Printf("Saved %d products to %s", len(items), filename)
	return nil
}

func writeProducts(w io.Writer, items []types.Product, zip bool) error {
	if zip {
		zipWriter := gzip.NewWriter(w)
		if err := encodeProducts(zipWriter, items); err != nil {
			zipWriter.Close()
			return err
		}
		return zipWriter.Close()
	}
	return encodeProducts(w, items)
}

func encodeProducts(w io.Writer, items []types.Product) error {
	enc := jsoncompat.NewEncoder(w)
	for i := range items {
		if err := enc.Encode(&items[i]); err != nil {
			return err
		}
	}
	return nil
}
