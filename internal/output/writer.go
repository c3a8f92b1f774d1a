package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/strrl/intake-intel/internal/models"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Writer renders one result document per call to an underlying stream.
type Writer struct {
	out    io.Writer
	format Format
}

func NewWriter(out io.Writer, format Format) *Writer {
	if format == "" {
		format = FormatJSON
	}
	return &Writer{out: out, format: format}
}

func (w *Writer) WriteReport(report models.Report) error {
	return w.Write(report, func() string { return ReportMarkdown(report) })
}

func (w *Writer) WriteKeywords(result models.KeywordResult) error {
	return w.Write(result, func() string { return KeywordsMarkdown(result) })
}

// Write encodes v as a json or yaml document, or writes the text produced by
// markdown when the markdown format is selected.
func (w *Writer) Write(v any, markdown func() string) error {
	if w.format == FormatMarkdown {
		return w.writeString(markdown())
	}
	return w.writeDocument(v)
}

func (w *Writer) writeDocument(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	switch w.format {
	case FormatJSON:
		return w.writeString(string(data) + "\n")
	case FormatYAML:
		// yaml follows the json field names and custom marshalers
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to convert result to yaml: %w", err)
		}
		out, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return w.writeString(string(out))
	default:
		return fmt.Errorf("unsupported output format %q", w.format)
	}
}

func (w *Writer) writeString(s string) error {
	if _, err := io.WriteString(w.out, s); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// WriteError renders err as {"error": "..."}. Errors are always JSON so
// callers can parse failures the same way regardless of format.
func WriteError(out io.Writer, err error) {
	data, _ := json.Marshal(map[string]string{"error": err.Error()})
	fmt.Fprintln(out, string(data))
}
