package table

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteTSV writes f as tab-separated text with a header row. Nulls are
// empty fields; sets and lists are rendered as JSON arrays.
func WriteTSV(w io.Writer, f *Frame) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(f.Names(), "\t") + "\n"); err != nil {
		return fmt.Errorf("table: write tsv: %w", err)
	}
	fields := make([]string, f.Width())
	for r := 0; r < f.Len(); r++ {
		for i, c := range f.cols {
			s, err := formatCell(c, r)
			if err != nil {
				return fmt.Errorf("table: write tsv: %w", err)
			}
			fields[i] = s
		}
		if _, err := bw.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
			return fmt.Errorf("table: write tsv: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("table: write tsv: %w", err)
	}
	return nil
}

func formatCell(c Series, r int) (string, error) {
	switch t := c.(type) {
	case *Int64Series:
		return strconv.FormatInt(t.Values[r], 10), nil
	case *Float64Series:
		if t.IsNull(r) {
			return "", nil
		}
		return strconv.FormatFloat(t.Values[r], 'g', -1, 64), nil
	case *StringSeries:
		return t.Values[r], nil
	}
	v := c.Value(r)
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteNDJSON writes one JSON object per row, keys in column order. Nulls
// are encoded as null and sets as arrays of raw member indices.
func WriteNDJSON(w io.Writer, f *Frame) error {
	bw := bufio.NewWriter(w)
	keys := make([][]byte, f.Width())
	for i, name := range f.Names() {
		k, err := json.Marshal(name)
		if err != nil {
			return fmt.Errorf("table: write ndjson: %w", err)
		}
		keys[i] = k
	}

	for r := 0; r < f.Len(); r++ {
		bw.WriteByte('{')
		for i, c := range f.cols {
			if i > 0 {
				bw.WriteByte(',')
			}
			v, err := json.Marshal(c.Value(r))
			if err != nil {
				return fmt.Errorf("table: write ndjson: row %d column %q: %w", r, c.Name(), err)
			}
			bw.Write(keys[i])
			bw.WriteByte(':')
			bw.Write(v)
		}
		if _, err := bw.WriteString("}\n"); err != nil {
			return fmt.Errorf("table: write ndjson: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("table: write ndjson: %w", err)
	}
	return nil
}
