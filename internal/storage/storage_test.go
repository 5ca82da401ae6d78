package storage_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/richat-partners/staffing-api/internal/config"
	"github.com/richat-partners/staffing-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ============================================================================
// Storage Interface Tests
// ============================================================================

func TestStorageInterfaceCompliance(t *testing.T) {
	var _ storage.Storage = (*storage.LocalStorage)(nil)
	var _ storage.Storage = (*storage.AzureBlobStorage)(nil)
	var _ storage.Storage = (*storage.MinIOStorage)(nil)
}

func TestNewStorage_LocalMode(t *testing.T) {
	root := filepath.Join(t.TempDir(), "media")

	s, err := storage.NewStorage(context.Background(), &config.StorageConfig{Mode: "local"}, &config.MediaConfig{Root: root}, zap.NewNop())

	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStorage{}, s)
	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewStorage_Errors(t *testing.T) {
	media := &config.MediaConfig{Root: t.TempDir()}

	_, err := storage.NewStorage(context.Background(), &config.StorageConfig{Mode: "ftp"}, media, zap.NewNop())
	assert.Error(t, err)

	_, err = storage.NewStorage(context.Background(), &config.StorageConfig{Mode: "azure"}, media, zap.NewNop())
	assert.Error(t, err)

	_, err = storage.NewStorage(context.Background(), &config.StorageConfig{Mode: "minio"}, media, zap.NewNop())
	assert.Error(t, err)
}

// ============================================================================
// Key Tests
// ============================================================================

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "standardized_cvs/CV_Richat_A_B.pdf", want: "standardized_cvs/CV_Richat_A_B.pdf"},
		{key: "/standardized_cvs//a.pdf", want: "standardized_cvs/a.pdf"},
		{key: `cv_uploads\a.pdf`, want: "cv_uploads/a.pdf"},
		{key: "", wantErr: true},
		{key: "/", wantErr: true},
		{key: "../etc/passwd", wantErr: true},
		{key: "standardized_cvs/../../x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := storage.CleanKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, storage.ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUniqueKey(t *testing.T) {
	a := storage.UniqueKey("cv_uploads", "Mon CV.PDF")
	b := storage.UniqueKey("cv_uploads", "Mon CV.PDF")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "cv_uploads/"))
	assert.True(t, strings.HasSuffix(a, ".pdf"))
}

// ============================================================================
// LocalStorage Tests
// ============================================================================

func TestLocalStorage_PutDownloadDelete(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	ls, err := storage.NewLocalStorage(root)
	require.NoError(t, err)

	content := []byte("%PDF-1.3 fake")
	size, err := ls.Put(ctx, "standardized_cvs/CV_Richat_A_B.pdf", "application/pdf", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)

	onDisk, err := os.ReadFile(filepath.Join(root, "standardized_cvs", "CV_Richat_A_B.pdf"))
	require.NoError(t, err)
	assert.Equal(t, content, onDisk)

	rc, err := ls.Download(ctx, "standardized_cvs/CV_Richat_A_B.pdf")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, content, got)

	require.NoError(t, ls.Delete(ctx, "standardized_cvs/CV_Richat_A_B.pdf"))
	_, err = ls.Download(ctx, "standardized_cvs/CV_Richat_A_B.pdf")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLocalStorage_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = ls.Put(ctx, "a/b.json", "application/json", strings.NewReader(`{"v":1}`))
	require.NoError(t, err)
	_, err = ls.Put(ctx, "a/b.json", "application/json", strings.NewReader(`{"v":2}`))
	require.NoError(t, err)

	rc, err := ls.Download(ctx, "a/b.json")
	require.NoError(t, err)
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	assert.Equal(t, `{"v":2}`, string(got))
}

func TestLocalStorage_DeleteMissingIsNoop(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, ls.Delete(context.Background(), "standardized_cvs/missing.pdf"))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = ls.Put(context.Background(), "../outside.txt", "text/plain", strings.NewReader("x"))
	assert.ErrorIs(t, err, storage.ErrInvalidKey)
}
