package repository

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"mercator-hq/paramengine/pkg/model"
)

// DefaultCSVComma separates CSV fields. It differs from the default array
// separator so array values need no quoting.
const DefaultCSVComma = ';'

// csvMetadata is serialized as JSON on the first line, after csvMetaPrefix.
type csvMetadata struct {
	Name           string        `json:"name"`
	Levels         []model.Level `json:"levels"`
	InputLevels    int           `json:"inputLevels"`
	Nullable       bool          `json:"nullable,omitempty"`
	Cacheable      bool          `json:"cacheable"`
	ArraySeparator string        `json:"arraySeparator,omitempty"`
}

const csvMetaPrefix = "#"

// WriteCSV serializes a parameter: a metadata line, a header row of level
// names and one row per entry. Entries are drained from the batch loader
// DefaultBatchSize at a time and the loader is closed.
func WriteCSV(ctx context.Context, w io.Writer, batch *model.ParameterBatch, comma rune) (int, error) {
	defer batch.Loader.Close()

	if comma == 0 {
		comma = DefaultCSVComma
	}
	p := batch.Parameter

	meta, err := json.Marshal(csvMetadata{
		Name:           p.Name,
		Levels:         p.Levels,
		InputLevels:    p.InputLevels,
		Nullable:       p.Nullable,
		Cacheable:      p.Cacheable,
		ArraySeparator: p.ArraySeparator,
	})
	if err != nil {
		return 0, err
	}
	if _, err := fmt.Fprintf(w, "%s%s\n", csvMetaPrefix, meta); err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(p.LevelNames()); err != nil {
		return 0, err
	}

	written := 0
	err = model.Drain(ctx, batch.Loader, model.DefaultBatchSize, func(entries []model.Entry) error {
		for _, e := range entries {
			if err := cw.Write(e.Levels); err != nil {
				return err
			}
		}
		written += len(entries)
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return written, err
	}

	cw.Flush()
	return written, cw.Error()
}

// ReadCSV parses the metadata and header written by WriteCSV and returns a
// batch whose loader reads entry rows lazily from r. If r is an io.Closer the
// loader closes it.
func ReadCSV(r io.Reader, comma rune) (*model.ParameterBatch, error) {
	if comma == 0 {
		comma = DefaultCSVComma
	}

	br := bufio.NewReader(r)
	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, csvMetaPrefix) {
		return nil, fmt.Errorf("csv: missing metadata line")
	}

	var meta csvMetadata
	if err := json.Unmarshal([]byte(strings.TrimPrefix(line, csvMetaPrefix)), &meta); err != nil {
		return nil, fmt.Errorf("csv: invalid metadata: %w", err)
	}

	p := &model.Parameter{
		Name:           meta.Name,
		Levels:         meta.Levels,
		InputLevels:    meta.InputLevels,
		Nullable:       meta.Nullable,
		Cacheable:      meta.Cacheable,
		ArraySeparator: meta.ArraySeparator,
	}

	cr := csv.NewReader(br)
	cr.Comma = comma
	cr.FieldsPerRecord = len(p.Levels)
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("csv: reading header: %w", err)
	}
	for i, name := range p.LevelNames() {
		if header[i] != name {
			return nil, fmt.Errorf("csv: header column %d is %q, metadata declares %q", i, header[i], name)
		}
	}

	l := &csvLoader{reader: cr, more: true}
	if c, ok := r.(io.Closer); ok {
		l.closer = c
	}
	return &model.ParameterBatch{Parameter: p, Loader: l}, nil
}

type csvLoader struct {
	reader *csv.Reader
	closer io.Closer
	more   bool
}

func (l *csvLoader) HasMore() bool { return l.more }

func (l *csvLoader) NextBatch(ctx context.Context, size int) ([]model.Entry, error) {
	entries := make([]model.Entry, 0, size)
	for len(entries) < size {
		record, err := l.reader.Read()
		if errors.Is(err, io.EOF) {
			l.more = false
			break
		}
		if err != nil {
			l.more = false
			return nil, fmt.Errorf("csv: %w", err)
		}
		entries = append(entries, model.NewEntry(record...))
	}
	return entries, nil
}

func (l *csvLoader) Close() error {
	l.more = false
	if l.closer == nil {
		return nil
	}
	c := l.closer
	l.closer = nil
	return c.Close()
}
