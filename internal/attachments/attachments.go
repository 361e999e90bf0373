// Package attachments stores the receipt and request files of payments.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/payment-tracker/internal/domain"
)

// ErrNotExist is returned by Open when no file is stored under the name.
var ErrNotExist = errors.New("attachment does not exist")

// Manager saves, resolves and deletes attachment files.
// Stored names are flat: they never contain a path separator.
type Manager interface {
	// Save writes the content under a new stored name and returns it.
	// An existing file is never overwritten.
	Save(ctx context.Context, r io.Reader, originalName string, slot domain.Slot) (string, error)

	// Delete removes the file. It returns true when the file is gone afterwards,
	// including when it never existed. I/O failures are logged and reported as false.
	Delete(ctx context.Context, name string) bool

	// Resolve returns where the stored file lives (a path or a URI).
	Resolve(name string) string

	// Open returns the stored content. The caller closes it.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// StoredName builds "{slot}-{unix millis}-{original base name}".
func StoredName(slot domain.Slot, t time.Time, originalName string) string {
	return fmt.Sprintf("%s-%d-%s", slot, t.UnixMilli(), cleanOriginal(originalName))
}

// UniqueName is StoredName with a random segment, used when the plain
// name is already taken.
func UniqueName(slot domain.Slot, t time.Time, originalName string) string {
	return fmt.Sprintf("%s-%d-%s-%s", slot, t.UnixMilli(), uuid.NewString()[:8], cleanOriginal(originalName))
}

// ValidName reports whether name is safe to use as a flat stored name.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}

// cleanOriginal keeps only the base name of what the client sent.
func cleanOriginal(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		return "file"
	}
	return name
}
