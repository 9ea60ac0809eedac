package repository

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"mercator-hq/paramengine/pkg/model"
)

func TestCSV_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		entries int
		comma   rune
	}{
		{name: "empty", entries: 0},
		{name: "single batch", entries: 3},
		{name: "several batches", entries: model.DefaultBatchSize*2 + 7},
		{name: "comma separated", entries: 4, comma: ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := discount(tt.entries)
			var buf bytes.Buffer

			n, err := WriteCSV(context.Background(), &buf,
				&model.ParameterBatch{Parameter: want.Header(), Loader: model.NewSliceLoader(want.Entries)}, tt.comma)
			if err != nil {
				t.Fatalf("WriteCSV() error = %v", err)
			}
			if n != tt.entries {
				t.Errorf("WriteCSV() wrote %d entries, want %d", n, tt.entries)
			}

			batch, err := ReadCSV(&buf, tt.comma)
			if err != nil {
				t.Fatalf("ReadCSV() error = %v", err)
			}
			got, err := batch.Collect(context.Background(), 100)
			if err != nil {
				t.Fatalf("Collect() error = %v", err)
			}
			assertSameParameter(t, got, want)
		})
	}
}

func TestCSV_Format(t *testing.T) {
	p := &model.Parameter{
		Name:        "codes",
		Levels:      []model.Level{{Name: "code"}, {Name: "label"}},
		InputLevels: 1,
		Cacheable:   true,
		Entries:     []model.Entry{model.NewEntry("A", "semi;colon")},
	}

	var buf bytes.Buffer
	if _, err := WriteCSV(context.Background(), &buf,
		&model.ParameterBatch{Parameter: p.Header(), Loader: model.NewSliceLoader(p.Entries)}, 0); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], `#{"name":"codes"`) {
		t.Errorf("metadata line = %q", lines[0])
	}
	if lines[1] != "code;label" {
		t.Errorf("header = %q", lines[1])
	}
	if lines[2] != `A;"semi;colon"` {
		t.Errorf("row = %q", lines[2])
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "no metadata", input: "code;label\nA;B\n"},
		{name: "bad metadata", input: "#{not json\ncode;label\n"},
		{name: "no header", input: `#{"name":"x","levels":[{"name":"code"}],"inputLevels":1}` + "\n"},
		{name: "header mismatch", input: `#{"name":"x","levels":[{"name":"code"}],"inputLevels":1}` + "\nother\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.input), 0); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReadCSV_RowWidth(t *testing.T) {
	input := `#{"name":"x","levels":[{"name":"a"},{"name":"b"}],"inputLevels":1}` + "\na;b\n1;2\n3\n"
	batch, err := ReadCSV(strings.NewReader(input), 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := batch.Collect(context.Background(), 10); err == nil {
		t.Error("expected error for short row")
	}
}

func TestCSVDir(t *testing.T) {
	for _, compress := range []bool{false, true} {
		name := "plain"
		if compress {
			name = "zstd"
		}
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()
			repo, err := NewCSVDir(dir, 0, compress, nil)
			if err != nil {
				t.Fatal(err)
			}

			want := discount(model.DefaultBatchSize + 1)
			if err := repo.Save(ctx, want); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			file := "discount.csv"
			if compress {
				file += ZstdExt
			}
			if _, err := os.Stat(filepath.Join(dir, file)); err != nil {
				t.Fatalf("expected %s: %v", file, err)
			}

			assertSameParameter(t, collect(t, repo, "discount", 64), want)

			names, err := repo.List(ctx)
			if err != nil || !reflect.DeepEqual(names, []string{"discount"}) {
				t.Errorf("List() = %v, %v", names, err)
			}

			if err := repo.Delete(ctx, "discount"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, err := repo.Load(ctx, "discount"); !errors.Is(err, model.ErrNotFound) {
				t.Errorf("Load() after Delete error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestCSVDir_SwitchCompression(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	plain, _ := NewCSVDir(dir, 0, false, nil)
	if err := plain.Save(ctx, discount(2)); err != nil {
		t.Fatal(err)
	}
	zipped, _ := NewCSVDir(dir, 0, true, nil)
	if err := zipped.Save(ctx, discount(5)); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "discount.csv")); !os.IsNotExist(err) {
		t.Errorf("plain file should be replaced, stat error = %v", err)
	}
	if got := collect(t, plain, "discount", 10); len(got.Entries) != 5 {
		t.Errorf("got %d entries, want 5", len(got.Entries))
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewCompressedWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	payload := strings.Repeat("region;rate\n", 100)
	if _, err := w.Write([]byte(payload)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() >= len(payload) {
		t.Errorf("compressed size %d not smaller than %d", buf.Len(), len(payload))
	}

	r, err := NewCompressedReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(r); err != nil {
		t.Fatal(err)
	}
	if out.String() != payload {
		t.Error("decompressed payload differs")
	}
}
