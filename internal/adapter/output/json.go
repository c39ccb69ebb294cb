package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/toastui/internal/history"
)

// JSONFormatter formats entries as a JSON array.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes entries as a JSON array.
func (f *JSONFormatter) Format(w io.Writer, entries []history.Entry) error {
	if entries == nil {
		entries = []history.Entry{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

// FormatSingle writes a single entry as JSON.
func (f *JSONFormatter) FormatSingle(w io.Writer, e *history.Entry) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(e)
}
