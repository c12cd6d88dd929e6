package repository

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"stocktagger/internal/domain"
	"stocktagger/internal/util"
)

// readInput loads a whole stage input, mapping a missing file to
// MissingInputFileError
func readInput(path, hint string) ([]byte, error) {
	f, err := util.OpenInput(path, hint)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return bytes.TrimPrefix(b, []byte("\ufeff")), nil
}

// requireHeader checks the header row before handing the bytes to gocsv,
// which otherwise leaves unmatched fields zeroed
func requireHeader(table string, b []byte, columns ...string) error {
	header, err := csv.NewReader(bytes.NewReader(b)).Read()
	if err == io.EOF {
		header = []string{}
	} else if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", table, err)
	}

	found := map[string]struct{}{}
	for _, h := range header {
		found[strings.TrimSpace(h)] = struct{}{}
	}
	missing := []string{}
	for _, c := range columns {
		if _, ok := found[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return domain.MissingColumnError{
			Table:    table,
			Expected: missing,
			Found:    header,
		}
	}
	return nil
}
