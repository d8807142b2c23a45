package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
	"github.com/noah-isme/ledgerdesk-api/internal/service"
	appErrors "github.com/noah-isme/ledgerdesk-api/pkg/errors"
	"github.com/noah-isme/ledgerdesk-api/pkg/response"
)

const maxImportBytes = 10 << 20

type backupService interface {
	Export(ctx context.Context, domain models.Domain) ([]byte, error)
	Import(ctx context.Context, domain models.Domain, data []byte) error
	Clear(ctx context.Context, domain models.Domain) error
	Snapshot(ctx context.Context, domain models.Domain) (*models.Snapshot, error)
	ListSnapshots(ctx context.Context, domain models.Domain) ([]models.Snapshot, error)
	OpenSnapshot(ctx context.Context, token string) (*service.ReportFile, error)
	RestoreSnapshot(ctx context.Context, domain models.Domain, input models.RestoreSnapshotInput) error
}

// BackupHandler exposes export, import, clear and snapshot endpoints per domain.
type BackupHandler struct {
	backups backupService
	now     func() time.Time
}

// NewBackupHandler constructs BackupHandler.
func NewBackupHandler(backups backupService) *BackupHandler {
	return &BackupHandler{backups: backups, now: time.Now}
}

// Export godoc
// @Summary Download the domain backup document
// @Tags Backup
// @Produce json
// @Param domain path string true "library or payroll"
// @Success 200 {file} file
// @Router /{domain}/export [get]
func (h *BackupHandler) Export(c *gin.Context) {
	domain := pathDomain(c)
	data, err := h.backups.Export(c.Request.Context(), domain)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("%s-backup-%s.json", domain, h.now().Format("2006-01-02"))
	response.Attachment(c, filename, "application/json", data)
}

// Import godoc
// @Summary Replace the domain with a backup document
// @Description Accepts the document as the raw JSON body or as a multipart "file" field. Nothing is written when the document is rejected.
// @Tags Backup
// @Accept json,mpfd
// @Produce json
// @Param domain path string true "library or payroll"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /{domain}/import [post]
func (h *BackupHandler) Import(c *gin.Context) {
	data, err := readImport(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	domain := pathDomain(c)
	if err := h.backups.Import(c.Request.Context(), domain, data); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"domain": domain, "imported": true})
}

// Clear godoc
// @Summary Remove every stored key of the domain
// @Tags Backup
// @Param domain path string true "library or payroll"
// @Success 204
// @Router /{domain}/data [delete]
func (h *BackupHandler) Clear(c *gin.Context) {
	if err := h.backups.Clear(c.Request.Context(), pathDomain(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateSnapshot godoc
// @Summary Archive the current backup document
// @Tags Backup
// @Produce json
// @Param domain path string true "library or payroll"
// @Success 201 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Router /{domain}/snapshots [post]
func (h *BackupHandler) CreateSnapshot(c *gin.Context) {
	snapshot, err := h.backups.Snapshot(c.Request.Context(), pathDomain(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if snapshot.Pending {
		response.JSON(c, http.StatusAccepted, snapshot)
		return
	}
	response.Created(c, snapshot)
}

// ListSnapshots godoc
// @Summary List archived snapshots with signed download links
// @Tags Backup
// @Produce json
// @Param domain path string true "library or payroll"
// @Success 200 {object} response.Envelope
// @Router /{domain}/snapshots [get]
func (h *BackupHandler) ListSnapshots(c *gin.Context) {
	snapshots, err := h.backups.ListSnapshots(c.Request.Context(), pathDomain(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, snapshots, countMeta(len(snapshots)))
}

// RestoreSnapshot godoc
// @Summary Import an archived snapshot
// @Tags Backup
// @Accept json
// @Produce json
// @Param domain path string true "library or payroll"
// @Param payload body models.RestoreSnapshotInput true "Snapshot key"
// @Success 200 {object} response.Envelope
// @Router /{domain}/snapshots/restore [post]
func (h *BackupHandler) RestoreSnapshot(c *gin.Context) {
	var input models.RestoreSnapshotInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	domain := pathDomain(c)
	if err := h.backups.RestoreSnapshot(c.Request.Context(), domain, input); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"domain": domain, "restored": input.Key})
}

// DownloadSnapshot godoc
// @Summary Download an archived snapshot through a signed token
// @Tags Backup
// @Produce json
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /snapshots/download/{token} [get]
func (h *BackupHandler) DownloadSnapshot(c *gin.Context) {
	file, err := h.backups.OpenSnapshot(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func readImport(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "backup file is required")
		}
		f, err := header.Open()
		if err != nil {
			return nil, invalidPayload(err)
		}
		defer f.Close()
		return readAll(f)
	}
	return readAll(c.Request.Body)
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, invalidPayload(err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "backup file is empty")
	}
	return data, nil
}
