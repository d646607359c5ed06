// Package catalog defines the emitted entry type and its on-disk writers.
// The extraction core hands finalized entries to a writer; the format is a
// serialization concern only.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Entry is one finalized catalog message.
type Entry struct {
	Kind         string            `json:"kind"`
	Context      string            `json:"context"`
	Source       string            `json:"source,omitempty"`
	Plural       string            `json:"plural,omitempty"`
	ID           string            `json:"id,omitempty"`
	IDMetadata   string            `json:"id_metadata,omitempty"`
	Comment      string            `json:"comment,omitempty"`
	ExtraComment string            `json:"extra_comment,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Placeholders []string          `json:"placeholders,omitempty"`
	File         string            `json:"file"`
	Line         int               `json:"line"`
	Column       int               `json:"column"`
}

// Writer serializes a finalized catalog.
type Writer interface {
	Write(w io.Writer, entries []Entry) error
}

// JSONWriter emits the catalog as an indented JSON array.
type JSONWriter struct{}

func (JSONWriter) Write(w io.Writer, entries []Entry) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(entries); err != nil {
		return fmt.Errorf("encode catalog JSON: %w", err)
	}
	return nil
}

// TSVWriter emits one tab-separated row per entry with a header line.
type TSVWriter struct{}

func (TSVWriter) Write(w io.Writer, entries []Entry) error {
	if _, err := fmt.Fprintln(w, "kind\tcontext\tsource\tplural\tid\tcomment\tfile\tline\tcolumn"); err != nil {
		return fmt.Errorf("write TSV header: %w", err)
	}
	for _, e := range entries {
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			e.Kind,
			escapeTSV(e.Context),
			escapeTSV(e.Source),
			escapeTSV(e.Plural),
			escapeTSV(e.ID),
			escapeTSV(e.Comment),
			e.File,
			e.Line,
			e.Column,
		)
		if err != nil {
			return fmt.Errorf("write TSV row: %w", err)
		}
	}
	return nil
}

// ForFormat picks a writer by name; unknown names fall back to JSON.
func ForFormat(format string) Writer {
	if format == "tsv" {
		return TSVWriter{}
	}
	return JSONWriter{}
}

// escapeTSV replaces tabs and newlines in a string for TSV safety.
func escapeTSV(s string) string {
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}
