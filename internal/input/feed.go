package input

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jmylchreest/toastui/internal/model"
)

const maxLineSize = 1024 * 1024

// Feed reads one JSON request per line from r and raises each as a toast.
// Blank lines and lines starting with '#' are skipped. A bad line is logged and
// skipped; the feed keeps going. Feed returns when r is exhausted or ctx is
// done, with every line error joined together.
func Feed(ctx context.Context, r io.Reader, sink Sink, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = Facade{}
	}

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	var errs []error
	lineNum := 0
	for {
		select {
		case <-ctx.Done():
			return errors.Join(append(errs, ctx.Err())...)
		case line, ok := <-lines:
			if !ok {
				var err error
				select {
				case err = <-readErr:
				default:
				}
				if err != nil {
					errs = append(errs, fmt.Errorf("failed to read feed: %w", err))
				}
				return errors.Join(errs...)
			}

			lineNum++
			if err := feedLine(line, sink); err != nil {
				fe := &FeedError{Line: lineNum, Err: err}
				logger.Warn("skipping feed line", "line", lineNum, "error", err)
				errs = append(errs, fe)
			}
		}
	}
}

func feedLine(line []byte, sink Sink) error {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] == '#' {
		return nil
	}

	req, err := ParseRequest(line)
	if err != nil {
		return err
	}

	_, err = sink.Notify(req)
	return err
}

// ParseRequest decodes and validates one JSON request.
func ParseRequest(data []byte) (model.Request, error) {
	var req model.Request
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return model.Request{}, fmt.Errorf("invalid JSON: %w", err)
	}

	req.Message = sanitize(req.Message)
	if err := req.Validate(); err != nil {
		return model.Request{}, err
	}
	return req, nil
}
