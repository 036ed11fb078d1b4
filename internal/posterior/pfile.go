// internal/posterior/pfile.go
package posterior

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"predsim/internal/simerr"
)

// Sample is one row of a MrBayes parameter file: column name -> raw cell text.
type Sample map[string]string

// Lookup returns the trimmed value for key and whether it is present and non-empty.
func (s Sample) Lookup(key string) (string, bool) {
	v, ok := s[key]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// ReadFile reads a MrBayes .p file. See Read.
func ReadFile(path string, skip, limit int) ([]Sample, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	out, err := Read(fh, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// Read parses a MrBayes parameter table. The first line is the "[ID: ...]" banner
// and is discarded; the second is the tab-separated header. The first skip rows are
// dropped and at most limit rows are kept (limit <= 0 keeps the rest).
func Read(r io.Reader, skip, limit int) ([]Sample, error) {
	if skip < 0 {
		return nil, fmt.Errorf("negative skip %d", skip)
	}
	br := bufio.NewReader(r)
	if _, err := br.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	} else if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("no records to process in parameter file: %w", simerr.ErrMissingData)
	}

	cr := csv.NewReader(br)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("no header in parameter file: %w", simerr.ErrMissingData)
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var out []Sample
	row := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row++
		if row <= skip {
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		s := make(Sample, len(header))
		for i, col := range header {
			if i < len(rec) {
				s[col] = rec[i]
			}
		}
		out = append(out, s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no records to process in parameter file: %w", simerr.ErrMissingData)
	}
	return out, nil
}
