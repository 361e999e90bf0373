package attachments

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/payment-tracker/internal/domain"
)

var fixedNow = time.UnixMilli(1700000000123)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	l, err := NewLocal(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	l.now = func() time.Time { return fixedNow }
	return l
}

func TestStoredName(t *testing.T) {
	tests := []struct {
		slot     domain.Slot
		original string
		want     string
	}{
		{domain.SlotReceipt, "scan.pdf", "receipt-1700000000123-scan.pdf"},
		{domain.SlotRequest, "docs/request form.pdf", "request-1700000000123-request form.pdf"},
		{domain.SlotReceipt, `C:\Users\me\invoice.png`, "receipt-1700000000123-invoice.png"},
		{domain.SlotReceipt, "../../etc/passwd", "receipt-1700000000123-passwd"},
		{domain.SlotReceipt, "", "receipt-1700000000123-file"},
	}

	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			got := StoredName(tt.slot, fixedNow, tt.original)
			assert.Equal(t, tt.want, got)
			assert.True(t, ValidName(got))
		})
	}
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("receipt-1-a.pdf"))
	for _, bad := range []string{"", ".", "..", "../x", "a/b", `a\b`, "x..y"} {
		assert.False(t, ValidName(bad), bad)
	}
}

func TestLocal_SaveOpenDelete(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	name, err := l.Save(ctx, strings.NewReader("pdf bytes"), "scan.pdf", domain.SlotReceipt)
	require.NoError(t, err)
	assert.Equal(t, "receipt-1700000000123-scan.pdf", name)
	assert.Equal(t, filepath.Join(l.Dir(), name), l.Resolve(name))

	rc, err := l.Open(ctx, name)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))

	assert.True(t, l.Delete(ctx, name))
	_, err = os.Stat(l.Resolve(name))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// Deleting again is still a success.
	assert.True(t, l.Delete(ctx, name))
}

func TestLocal_SaveNeverOverwrites(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	first, err := l.Save(ctx, strings.NewReader("first"), "scan.pdf", domain.SlotReceipt)
	require.NoError(t, err)
	second, err := l.Save(ctx, strings.NewReader("second"), "scan.pdf", domain.SlotReceipt)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(second, "receipt-1700000000123-"))
	assert.True(t, strings.HasSuffix(second, "-scan.pdf"))

	data, err := os.ReadFile(l.Resolve(first))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestLocal_SaveSlotsDoNotCollide(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	receipt, err := l.Save(ctx, strings.NewReader("r"), "doc.pdf", domain.SlotReceipt)
	require.NoError(t, err)
	request, err := l.Save(ctx, strings.NewReader("q"), "doc.pdf", domain.SlotRequest)
	require.NoError(t, err)

	assert.NotEqual(t, receipt, request)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestLocal_SaveFailureLeavesNoFile(t *testing.T) {
	l := newTestLocal(t)

	_, err := l.Save(context.Background(), io.MultiReader(bytes.NewReader([]byte("part")), failingReader{}), "scan.pdf", domain.SlotReceipt)
	require.Error(t, err)

	var ioErr *domain.AttachmentIOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "save", ioErr.Op)

	entries, err := os.ReadDir(l.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocal_OpenMissing(t *testing.T) {
	l := newTestLocal(t)

	_, err := l.Open(context.Background(), "receipt-1-nothing.pdf")
	assert.ErrorIs(t, err, ErrNotExist)

	_, err = l.Open(context.Background(), "../secret")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestLocal_DeleteFailureIsLoggedNotRaised(t *testing.T) {
	buf := &bytes.Buffer{}
	l, err := NewLocal(t.TempDir(), zerolog.New(buf))
	require.NoError(t, err)

	// A non-empty directory under the stored name cannot be removed with os.Remove.
	name := "receipt-1-dir"
	require.NoError(t, os.MkdirAll(filepath.Join(l.Dir(), name, "child"), 0o755))

	assert.False(t, l.Delete(context.Background(), name))
	assert.Contains(t, buf.String(), "failed to delete attachment")
}
