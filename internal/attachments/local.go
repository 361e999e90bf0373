package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/payment-tracker/internal/domain"
)

// maxNameAttempts bounds the retries after a stored name collision.
const maxNameAttempts = 5

// Local stores attachments as files in one directory.
type Local struct {
	dir string
	log zerolog.Logger
	now func() time.Time
}

// NewLocal creates dir if needed and returns a Local manager rooted at it.
func NewLocal(dir string, log zerolog.Logger) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("NewLocal: resolve %q: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("NewLocal: create %q: %w", abs, err)
	}
	return &Local{dir: abs, log: log, now: time.Now}, nil
}

// Dir returns the absolute uploads directory.
func (l *Local) Dir() string {
	return l.dir
}

func (l *Local) Save(ctx context.Context, r io.Reader, originalName string, slot domain.Slot) (string, error) {
	now := l.now()
	name := StoredName(slot, now, originalName)

	var f *os.File
	for attempt := 0; ; attempt++ {
		var err error
		f, err = os.OpenFile(filepath.Join(l.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) || attempt >= maxNameAttempts {
			return "", &domain.AttachmentIOError{Op: "save", Name: name, Err: err}
		}
		name = UniqueName(slot, now, originalName)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", &domain.AttachmentIOError{Op: "save", Name: name, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", &domain.AttachmentIOError{Op: "save", Name: name, Err: err}
	}

	l.log.Debug().Str("stored_name", name).Str("slot", string(slot)).Msg("attachment saved")
	return name, nil
}

func (l *Local) Delete(ctx context.Context, name string) bool {
	if !ValidName(name) {
		l.log.Warn().Str("stored_name", name).Msg("refusing to delete invalid attachment name")
		return false
	}

	err := os.Remove(filepath.Join(l.dir, name))
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return true
	}

	l.log.Warn().Err(err).Str("stored_name", name).Msg("failed to delete attachment")
	return false
}

func (l *Local) Resolve(name string) string {
	return filepath.Join(l.dir, filepath.Base(name))
}

func (l *Local) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("%q: %w", name, ErrNotExist)
	}

	f, err := os.Open(filepath.Join(l.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%q: %w", name, ErrNotExist)
	}
	if err != nil {
		return nil, &domain.AttachmentIOError{Op: "open", Name: name, Err: err}
	}
	return f, nil
}

// Ensure Local implements Manager.
var _ Manager = (*Local)(nil)
