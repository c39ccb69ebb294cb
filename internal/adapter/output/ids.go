package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/toastui/internal/history"
)

// IDsFormatter outputs just the toast ids, one per line.
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// Format writes ids to the writer, one per line.
func (f *IDsFormatter) Format(w io.Writer, entries []history.Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, e.ID); err != nil {
			return err
		}
	}
	return nil
}
