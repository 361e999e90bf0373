// Package gcsuploader stores payment attachments in a Google Cloud Storage bucket.
package gcsuploader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"

	"github.com/dvloznov/payment-tracker/internal/attachments"
	"github.com/dvloznov/payment-tracker/internal/domain"
)

const (
	uploadTimeout   = 2 * time.Minute
	maxNameAttempts = 5
)

// Manager is an attachments.Manager backed by a GCS bucket.
// Objects are written as {prefix}{stored name}.
type Manager struct {
	client *storage.Client
	bucket string
	prefix string
	log    zerolog.Logger
	now    func() time.Time
}

// NewManager creates a storage client using Application Default Credentials.
func NewManager(ctx context.Context, bucket, prefix string, log zerolog.Logger) (*Manager, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return NewManagerWithClient(client, bucket, prefix, log), nil
}

// NewManagerWithClient wraps an existing client. Close closes it.
func NewManagerWithClient(client *storage.Client, bucket, prefix string, log zerolog.Logger) *Manager {
	return &Manager{client: client, bucket: bucket, prefix: prefix, log: log, now: time.Now}
}

// Close closes the storage client.
func (m *Manager) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

// ObjectName maps a stored name onto the object path inside the bucket.
func (m *Manager) ObjectName(name string) string {
	return m.prefix + name
}

// Save uploads the content under a new stored name. The write is conditional
// on the object not existing, so an existing attachment is never replaced.
func (m *Manager) Save(ctx context.Context, r io.Reader, originalName string, slot domain.Slot) (string, error) {
	// The body is buffered so a collision can be retried under another name.
	data, err := io.ReadAll(r)
	if err != nil {
		return "", &domain.AttachmentIOError{Op: "save", Name: originalName, Err: err}
	}

	now := m.now()
	name := attachments.StoredName(slot, now, originalName)
	for attempt := 0; ; attempt++ {
		err := m.upload(ctx, m.ObjectName(name), data)
		if err == nil {
			m.log.Debug().Str("stored_name", name).Str("bucket", m.bucket).Msg("attachment uploaded")
			return name, nil
		}
		if !isPreconditionFailed(err) || attempt >= maxNameAttempts {
			return "", &domain.AttachmentIOError{Op: "save", Name: name, Err: err}
		}
		name = attachments.UniqueName(slot, now, originalName)
	}
}

func (m *Manager) upload(ctx context.Context, objectName string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	obj := m.client.Bucket(m.bucket).Object(objectName).If(storage.Conditions{DoesNotExist: true})
	w := obj.NewWriter(ctx)

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return fmt.Errorf("copy to GCS writer: %w", err)
	}

	// Close finalizes the upload and reports precondition failures.
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}
	return nil
}

// Delete removes a stored attachment. ref is a stored name or the gs:// URI
// Resolve returned for it.
func (m *Manager) Delete(ctx context.Context, ref string) bool {
	name := m.storedName(ref)
	if !attachments.ValidName(name) {
		m.log.Warn().Str("stored_name", ref).Msg("refusing to delete invalid attachment name")
		return false
	}

	err := m.client.Bucket(m.bucket).Object(m.ObjectName(name)).Delete(ctx)
	if err == nil || errors.Is(err, storage.ErrObjectNotExist) {
		return true
	}

	m.log.Warn().Err(err).Str("stored_name", name).Str("bucket", m.bucket).Msg("failed to delete attachment")
	return false
}

// Resolve returns the gs:// URI of the stored object.
func (m *Manager) Resolve(name string) string {
	return "gs://" + m.bucket + "/" + m.ObjectName(name)
}

// Open streams a stored attachment. ref is a stored name or its gs:// URI.
func (m *Manager) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	name := m.storedName(ref)
	if !attachments.ValidName(name) {
		return nil, fmt.Errorf("%q: %w", ref, attachments.ErrNotExist)
	}

	rc, err := m.client.Bucket(m.bucket).Object(m.ObjectName(name)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%q: %w", name, attachments.ErrNotExist)
	}
	if err != nil {
		return nil, &domain.AttachmentIOError{Op: "open", Name: name, Err: err}
	}
	return rc, nil
}

// storedName maps a gs:// URI inside this bucket and prefix back to the
// stored name. Plain names pass through; foreign URIs map to "".
func (m *Manager) storedName(ref string) string {
	if !strings.HasPrefix(ref, "gs://") {
		return ref
	}
	bucket, object, err := ParseURI(ref)
	if err != nil || bucket != m.bucket || !strings.HasPrefix(object, m.prefix) {
		return ""
	}
	name := strings.TrimPrefix(object, m.prefix)
	if name != StoredNameFromURI(ref) {
		return ""
	}
	return name
}

func isPreconditionFailed(err error) bool {
	var gErr *googleapi.Error
	return errors.As(err, &gErr) && gErr.Code == http.StatusPreconditionFailed
}

// ParseURI splits "gs://bucket/path/to/object" into bucket and object path.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// StoredNameFromURI extracts the stored name from a GCS URI.
// e.g., "gs://bucket/uploads/receipt-1-a.pdf" → "receipt-1-a.pdf"
func StoredNameFromURI(uri string) string {
	_, object, err := ParseURI(uri)
	if err != nil {
		return ""
	}
	return path.Base(object)
}

// Ensure Manager implements attachments.Manager.
var _ attachments.Manager = (*Manager)(nil)
