package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
	"github.com/noah-isme/ledgerdesk-api/internal/service"
	appErrors "github.com/noah-isme/ledgerdesk-api/pkg/errors"
)

type backupServiceMock struct {
	imported   []byte
	importErr  error
	cleared    models.Domain
	snapshot   *models.Snapshot
	restoreKey string
	file       *service.ReportFile
	openErr    error
}

func (m *backupServiceMock) Export(_ context.Context, domain models.Domain) ([]byte, error) {
	return []byte(`{"exportDate":"2024-03-15T10:30:00.000Z"}`), nil
}

func (m *backupServiceMock) Import(_ context.Context, _ models.Domain, data []byte) error {
	m.imported = data
	return m.importErr
}

func (m *backupServiceMock) Clear(_ context.Context, domain models.Domain) error {
	m.cleared = domain
	return nil
}

func (m *backupServiceMock) Snapshot(context.Context, models.Domain) (*models.Snapshot, error) {
	return m.snapshot, nil
}

func (m *backupServiceMock) ListSnapshots(context.Context, models.Domain) ([]models.Snapshot, error) {
	return []models.Snapshot{}, nil
}

func (m *backupServiceMock) OpenSnapshot(context.Context, string) (*service.ReportFile, error) {
	return m.file, m.openErr
}

func (m *backupServiceMock) RestoreSnapshot(_ context.Context, _ models.Domain, input models.RestoreSnapshotInput) error {
	m.restoreKey = input.Key
	return nil
}

func TestBackupHandlerExportFilename(t *testing.T) {
	h := NewBackupHandler(&backupServiceMock{})
	h.now = func() time.Time { return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC) }

	c, w := newGinContext(http.MethodGet, "/library/export", nil)
	c.Params = gin.Params{{Key: "domain", Value: "library"}}
	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="library-backup-2024-03-15.json"`, w.Header().Get("Content-Disposition"))
}

func TestBackupHandlerImportRawBody(t *testing.T) {
	backups := &backupServiceMock{}
	h := NewBackupHandler(backups)

	c, w := newGinContext(http.MethodPost, "/payroll/import", []byte(`{"employees":[],"departments":[]}`))
	c.Params = gin.Params{{Key: "domain", Value: "payroll"}}
	h.Import(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"employees":[],"departments":[]}`, string(backups.imported))
}

func TestBackupHandlerImportMultipart(t *testing.T) {
	backups := &backupServiceMock{}
	h := NewBackupHandler(backups)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "library-backup.json")
	require.NoError(t, err)
	_, _ = part.Write([]byte(`{"students":[]}`))
	require.NoError(t, mw.Close())

	c, w := newGinContext(http.MethodPost, "/library/import", body.Bytes())
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())
	c.Params = gin.Params{{Key: "domain", Value: "library"}}
	h.Import(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"students":[]}`, string(backups.imported))
}

func TestBackupHandlerImportRejectsEmptyBody(t *testing.T) {
	backups := &backupServiceMock{}
	h := NewBackupHandler(backups)

	c, w := newGinContext(http.MethodPost, "/library/import", []byte("  "))
	c.Params = gin.Params{{Key: "domain", Value: "library"}}
	h.Import(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, backups.imported)
}

func TestBackupHandlerImportRejected(t *testing.T) {
	backups := &backupServiceMock{importErr: appErrors.Clone(appErrors.ErrImportRejected, "Invalid backup file format")}
	h := NewBackupHandler(backups)

	c, w := newGinContext(http.MethodPost, "/library/import", []byte(`{"students":"nope"}`))
	c.Params = gin.Params{{Key: "domain", Value: "library"}}
	h.Import(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestBackupHandlerCreateSnapshotStatus(t *testing.T) {
	backups := &backupServiceMock{snapshot: &models.Snapshot{Domain: models.DomainLibrary, Key: "library/x.json"}}
	h := NewBackupHandler(backups)

	c, w := newGinContext(http.MethodPost, "/library/snapshots", nil)
	c.Params = gin.Params{{Key: "domain", Value: "library"}}
	h.CreateSnapshot(c)
	assert.Equal(t, http.StatusCreated, w.Code)

	backups.snapshot.Pending = true
	c, w = newGinContext(http.MethodPost, "/library/snapshots", nil)
	c.Params = gin.Params{{Key: "domain", Value: "library"}}
	h.CreateSnapshot(c)
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestBackupHandlerRestoreSnapshot(t *testing.T) {
	backups := &backupServiceMock{}
	h := NewBackupHandler(backups)

	body, _ := json.Marshal(models.RestoreSnapshotInput{Key: "library/20240315T103000Z-a.json"})
	c, w := newGinContext(http.MethodPost, "/library/snapshots/restore", body)
	c.Params = gin.Params{{Key: "domain", Value: "library"}}
	h.RestoreSnapshot(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "library/20240315T103000Z-a.json", backups.restoreKey)
}

func TestBackupHandlerDownloadSnapshotInvalidToken(t *testing.T) {
	h := NewBackupHandler(&backupServiceMock{openErr: appErrors.Clone(appErrors.ErrNotFound, "snapshot link is invalid or expired")})

	c, w := newGinContext(http.MethodGet, "/snapshots/download/bad", nil)
	c.Params = gin.Params{{Key: "token", Value: "bad"}}
	h.DownloadSnapshot(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
