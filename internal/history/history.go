// Package history appends closed toasts to a JSONL dismissal log.
//
// The log is read back only for listing and pruning. Entries are never turned
// back into live toasts.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/store"
)

// SchemaVersion is the current dismissal log schema version.
const SchemaVersion = 1

// ErrRecorderClosed is returned when writing to a closed recorder.
var ErrRecorderClosed = errors.New("history recorder is closed")

// schemaHeader is the first line of the JSONL file.
type schemaHeader struct {
	ToastuiSchemaVersion int   `json:"toastui_schema_version"`
	CreatedAt            int64 `json:"created_at"`
}

// Entry is one line of the dismissal log.
type Entry struct {
	ID          string         `json:"id"`
	Type        model.Type     `json:"type"`
	Position    model.Position `json:"position"`
	Message     string         `json:"message"`
	CreatedAt   time.Time      `json:"created_at"`
	DismissedAt time.Time      `json:"dismissed_at"`
	LifetimeMS  int64          `json:"lifetime_ms"`
}

// NewEntry builds the log entry for a toast closed at dismissedAt.
func NewEntry(rec model.Record, dismissedAt time.Time) Entry {
	return Entry{
		ID:          rec.ID,
		Type:        rec.Type,
		Position:    rec.Position,
		Message:     rec.Message,
		CreatedAt:   rec.CreatedAt,
		DismissedAt: dismissedAt,
		LifetimeMS:  dismissedAt.Sub(rec.CreatedAt).Milliseconds(),
	}
}

// Recorder appends entries to a JSONL file.
type Recorder struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	logger *slog.Logger
	now    func() time.Time
	closed bool
}

// Open opens (or creates) the dismissal log at path.
// A schema header is written when the file is new.
func Open(path string, logger *slog.Logger) (*Recorder, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	r := &Recorder{
		path:   path,
		file:   file,
		logger: logger,
		now:    time.Now,
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.Size() == 0 {
		if err := r.writeLine(schemaHeader{
			ToastuiSchemaVersion: SchemaVersion,
			CreatedAt:            r.now().Unix(),
		}); err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	return r, nil
}

// Path returns the log file path.
func (r *Recorder) Path() string {
	return r.path
}

// Append writes one entry.
func (r *Recorder) Append(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRecorderClosed
	}
	if err := r.writeLine(e); err != nil {
		return fmt.Errorf("append %s: %w", r.path, err)
	}

	r.logger.Debug("toast logged",
		"id", e.ID,
		"type", e.Type,
		"dismissed", humanize.RelTime(e.CreatedAt, e.DismissedAt, "after it appeared", "before it appeared"),
	)
	return nil
}

func (r *Recorder) writeLine(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = r.file.Write(append(data, '\n'))
	return err
}

// Run logs every evicted toast until ctx is done or changes closes. changes
// should come from Store.SubscribeAll so no eviction is missed. An entry is
// stamped with the eviction time carried by the event.
func (r *Recorder) Run(ctx context.Context, changes <-chan store.ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-changes:
			if !ok {
				return
			}
			if ev.Type != store.ChangeTypeEvict {
				continue
			}
			at := ev.At
			if at.IsZero() {
				at = r.now()
			}
			if err := r.Append(NewEntry(ev.Record, at)); err != nil {
				r.logger.Warn("failed to log dismissed toast", "id", ev.ID, "error", err)
			}
		}
	}
}

// Close flushes and closes the log file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	if err := r.file.Sync(); err != nil {
		_ = r.file.Close()
		return err
	}
	return r.file.Close()
}
