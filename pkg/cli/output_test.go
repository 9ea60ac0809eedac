package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func sampleTable() *Table {
	table := NewTable("parameter", "entries")
	table.Append("discount", "3")
	table.Append("pricing", "1,200")
	return table
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{input: "", want: FormatText},
		{input: "text", want: FormatText},
		{input: "JSON", want: FormatJSON},
		{input: "csv", want: FormatCSV},
		{input: "junit", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTableAppendPadsRows(t *testing.T) {
	table := NewTable("a", "b", "c")
	table.Append("1")

	if got := len(table.Rows[0]); got != 3 {
		t.Errorf("row width = %d, want 3", got)
	}
}

func TestTextFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&TextFormatter{}).FormatTo(buf, sampleTable()); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	want := "parameter  entries\ndiscount   3\npricing    1,200\n"
	if buf.String() != want {
		t.Errorf("FormatTo() = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := (&TextFormatter{}).FormatTo(buf, "test message"); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "test message\n" {
		t.Errorf("FormatTo() = %q, want %q", buf.String(), "test message\n")
	}
}

func TestJSONFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&JSONFormatter{Indent: true}).FormatTo(buf, sampleTable()); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var got Table
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("FormatTo() produced invalid JSON: %v", err)
	}
	if len(got.Rows) != 2 || got.Rows[1][0] != "pricing" {
		t.Errorf("FormatTo() rows = %v", got.Rows)
	}
}

func TestCSVFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&CSVFormatter{Comma: ';'}).FormatTo(buf, sampleTable()); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	want := "parameter;entries\ndiscount;3\npricing;1,200\n"
	if got := buf.String(); got != want {
		t.Errorf("FormatTo() = %q, want %q", got, want)
	}

	if err := (&CSVFormatter{}).FormatTo(buf, "not a table"); err == nil {
		t.Error("FormatTo() expected error for non-table data")
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{format: FormatText, want: "*cli.TextFormatter"},
		{format: FormatJSON, want: "*cli.JSONFormatter"},
		{format: FormatCSV, want: "*cli.CSVFormatter"},
		{format: "unknown", want: "*cli.TextFormatter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := fmt.Sprintf("%T", NewFormatter(tt.format)); got != tt.want {
				t.Errorf("NewFormatter(%q) type = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestHumanize(t *testing.T) {
	if got := Count(1234567); got != "1,234,567" {
		t.Errorf("Count() = %q", got)
	}
	if got := Bytes(2048); got != "2.0 kB" {
		t.Errorf("Bytes() = %q", got)
	}
	if got := Bytes(-1); got != "-" {
		t.Errorf("Bytes(-1) = %q", got)
	}
	if got := Age(time.Time{}); got != "never" {
		t.Errorf("Age(zero) = %q", got)
	}
	if got := Age(time.Now().Add(-3 * time.Minute)); got != "3 minutes ago" {
		t.Errorf("Age() = %q", got)
	}
}
