package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/ledgerdesk-api/internal/models"
	"github.com/noah-isme/ledgerdesk-api/internal/repository"
	appErrors "github.com/noah-isme/ledgerdesk-api/pkg/errors"
	"github.com/noah-isme/ledgerdesk-api/pkg/jobs"
	"github.com/noah-isme/ledgerdesk-api/pkg/storage"
)

// SnapshotJobType identifies archive uploads on the job queue.
const SnapshotJobType = "backup.snapshot"

const exportDateLayout = "2006-01-02T15:04:05.000Z07:00"

type libraryBackupStore interface {
	List(ctx context.Context) []models.Student
	SeatLayout(ctx context.Context) models.SeatLayout
	ReplaceAll(ctx context.Context, students []models.Student) error
	Clear(ctx context.Context) error
}

type payrollBackupStore interface {
	List(ctx context.Context) []models.Employee
	ReplaceAll(ctx context.Context, employees []models.Employee, departments []models.Department) error
	Clear(ctx context.Context) error
}

type backupSettingsStore interface {
	LibraryTimings(ctx context.Context) models.LibraryTimings
	SaveLibraryTimings(ctx context.Context, timings models.LibraryTimings) error
	PayrollSettings(ctx context.Context) models.PayrollSettings
	ReplacePayrollSettings(ctx context.Context, values models.PayrollSettings) error
}

type snapshotSigner interface {
	Sign(domain, key string) (string, time.Time, error)
	Verify(token string) (storage.DownloadToken, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type snapshotRecorder interface {
	RecordSnapshot(domain models.Domain, ok bool)
}

// BackupServiceConfig carries the public path prefix of snapshot download links.
type BackupServiceConfig struct {
	DownloadBase string
}

// BackupService exports, imports and clears whole domains and archives export snapshots.
type BackupService struct {
	library     libraryBackupStore
	payroll     payrollBackupStore
	departments departmentReader
	settings    backupSettingsStore
	archive     storage.Archive
	signer      snapshotSigner
	queue       jobEnqueuer
	snapshots   snapshotRecorder
	ids         *PaymentIDGenerator
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         BackupServiceConfig
	now         func() time.Time
}

// BackupDeps groups the collaborators of BackupService. Archive, Signer, Queue and
// Snapshots are optional.
type BackupDeps struct {
	Library     libraryBackupStore
	Payroll     payrollBackupStore
	Departments departmentReader
	Settings    backupSettingsStore
	Archive     storage.Archive
	Signer      snapshotSigner
	Queue       jobEnqueuer
	Snapshots   snapshotRecorder
	IDs         *PaymentIDGenerator
	Validator   *validator.Validate
	Logger      *zap.Logger
}

type snapshotUpload struct {
	Domain models.Domain
	Key    string
	Data   []byte
}

// NewBackupService constructs the service.
func NewBackupService(deps BackupDeps, cfg BackupServiceConfig) *BackupService {
	if deps.IDs == nil {
		deps.IDs = NewPaymentIDGenerator()
	}
	if deps.Validator == nil {
		deps.Validator = NewValidator()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.DownloadBase == "" {
		cfg.DownloadBase = "/api/v1/snapshots/download"
	}
	cfg.DownloadBase = strings.TrimRight(cfg.DownloadBase, "/")
	return &BackupService{
		library:     deps.Library,
		payroll:     deps.Payroll,
		departments: deps.Departments,
		settings:    deps.Settings,
		archive:     deps.Archive,
		signer:      deps.Signer,
		queue:       deps.Queue,
		snapshots:   deps.Snapshots,
		ids:         deps.IDs,
		validator:   deps.Validator,
		logger:      deps.Logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// SetQueue attaches the job queue used for asynchronous archive uploads.
func (s *BackupService) SetQueue(q jobEnqueuer) {
	s.queue = q
}

// Export returns the pretty-printed backup document of domain.
func (s *BackupService) Export(ctx context.Context, domain models.Domain) ([]byte, error) {
	var doc interface{}
	exportDate := s.now().UTC().Format(exportDateLayout)
	switch domain {
	case models.DomainLibrary:
		layout := s.library.SeatLayout(ctx)
		timings := s.settings.LibraryTimings(ctx)
		doc = models.LibraryExport{
			Students:   s.library.List(ctx),
			SeatLayout: &layout,
			Timings:    &timings,
			ExportDate: exportDate,
		}
	case models.DomainPayroll:
		doc = models.PayrollExport{
			Employees:   s.payroll.List(ctx),
			Departments: s.departments.List(ctx),
			Settings:    s.settings.PayrollSettings(ctx),
			ExportDate:  exportDate,
		}
	default:
		return nil, unknownDomain(domain)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode export")
	}
	return data, nil
}

// Import replaces domain with the document in data. The document is checked completely
// before anything is written; a failed follow-up write restores the previous collection.
func (s *BackupService) Import(ctx context.Context, domain models.Domain, data []byte) error {
	var err error
	switch domain {
	case models.DomainLibrary:
		err = s.importLibrary(ctx, data)
	case models.DomainPayroll:
		err = s.importPayroll(ctx, data)
	default:
		return unknownDomain(domain)
	}
	if err != nil {
		s.logger.Warn("import rejected", zap.String("domain", string(domain)), zap.Error(err))
		return err
	}
	s.logger.Info("import completed", zap.String("domain", string(domain)), zap.Int("bytes", len(data)))
	return nil
}

// Clear removes every key of domain.
func (s *BackupService) Clear(ctx context.Context, domain models.Domain) error {
	var err error
	switch domain {
	case models.DomainLibrary:
		err = s.library.Clear(ctx)
	case models.DomainPayroll:
		err = s.payroll.Clear(ctx)
	default:
		return unknownDomain(domain)
	}
	if err != nil {
		return translateRepoError(err, "data not found")
	}
	s.logger.Info("domain cleared", zap.String("domain", string(domain)))
	return nil
}

func (s *BackupService) importLibrary(ctx context.Context, data []byte) error {
	raw, err := decodeSections(data)
	if err != nil {
		return err
	}
	var students []models.Student
	if err := requireSection(raw, "students", &students); err != nil {
		return err
	}
	for i, st := range students {
		if st.ID <= 0 {
			return importRejected(fmt.Errorf("student %d has id %d", i, st.ID), "student ids must be positive")
		}
	}
	var timings *models.LibraryTimings
	if section, ok := raw["timings"]; ok && !isNull(section) {
		timings = &models.LibraryTimings{}
		if err := json.Unmarshal(section, timings); err != nil {
			return importRejected(err, "timings section is malformed")
		}
		if err := s.validator.Struct(timings); err != nil {
			return importRejected(err, "timings section is invalid")
		}
	}

	previous := s.library.List(ctx)
	if err := s.library.ReplaceAll(ctx, students); err != nil {
		return importFailure(err, "students")
	}
	if timings != nil {
		if err := s.settings.SaveLibraryTimings(ctx, *timings); err != nil {
			if rbErr := s.library.ReplaceAll(ctx, previous); rbErr != nil {
				s.logger.Error("restore students after failed import", zap.Error(rbErr))
			}
			return translateRepoError(err, "timings not found")
		}
	}
	for _, st := range students {
		for _, p := range st.PaymentHistory {
			s.ids.Observe(p.PaymentID)
		}
	}
	return nil
}

func (s *BackupService) importPayroll(ctx context.Context, data []byte) error {
	raw, err := decodeSections(data)
	if err != nil {
		return err
	}
	var employees []models.Employee
	if err := requireSection(raw, "employees", &employees); err != nil {
		return err
	}
	var departments []models.Department
	if err := requireSection(raw, "departments", &departments); err != nil {
		return err
	}
	for i, e := range employees {
		if e.ID <= 0 {
			return importRejected(fmt.Errorf("employee %d has id %d", i, e.ID), "employee ids must be positive")
		}
	}
	var settings models.PayrollSettings
	section, hasSettings := raw["settings"]
	hasSettings = hasSettings && !isNull(section)
	if hasSettings {
		if err := json.Unmarshal(section, &settings); err != nil {
			return importRejected(err, "settings section is malformed")
		}
	}

	previousEmployees := s.payroll.List(ctx)
	previousDepartments := s.departments.List(ctx)
	if err := s.payroll.ReplaceAll(ctx, employees, departments); err != nil {
		return importFailure(err, "employees")
	}
	if hasSettings {
		if err := s.settings.ReplacePayrollSettings(ctx, settings); err != nil {
			if rbErr := s.payroll.ReplaceAll(ctx, previousEmployees, previousDepartments); rbErr != nil {
				s.logger.Error("restore employees after failed import", zap.Error(rbErr))
			}
			return translateRepoError(err, "settings not found")
		}
	}
	for _, e := range employees {
		for _, p := range e.PaymentHistory {
			s.ids.Observe(p.PaymentID)
		}
	}
	return nil
}

// Snapshot archives the current export of domain. With a queue attached the upload runs
// in the background and the returned snapshot is marked pending.
func (s *BackupService) Snapshot(ctx context.Context, domain models.Domain) (*models.Snapshot, error) {
	if !domain.Valid() {
		return nil, unknownDomain(domain)
	}
	if s.archive == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "snapshot archive is not configured")
	}
	data, err := s.Export(ctx, domain)
	if err != nil {
		return nil, err
	}
	createdAt := s.now().UTC()
	key := fmt.Sprintf("%s/%s-%s.json", domain, createdAt.Format("20060102T150405Z"), uuid.NewString())
	upload := snapshotUpload{Domain: domain, Key: key, Data: data}

	snapshot := models.Snapshot{Domain: domain, Key: key, Size: int64(len(data)), CreatedAt: createdAt}
	if s.queue != nil {
		if err := s.queue.Enqueue(jobs.Job{Type: SnapshotJobType, Payload: upload}); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "snapshot queue unavailable")
		}
		snapshot.Pending = true
	} else if err := s.upload(ctx, upload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive snapshot")
	}
	if err := s.sign(&snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// HandleSnapshotJob uploads a queued snapshot. It is the queue's job handler.
func (s *BackupService) HandleSnapshotJob(ctx context.Context, job jobs.Job) error {
	upload, ok := job.Payload.(snapshotUpload)
	if !ok {
		return fmt.Errorf("unexpected snapshot payload %T", job.Payload)
	}
	return s.upload(ctx, upload)
}

func (s *BackupService) upload(ctx context.Context, upload snapshotUpload) error {
	err := s.archive.Put(ctx, upload.Key, upload.Data)
	if s.snapshots != nil {
		s.snapshots.RecordSnapshot(upload.Domain, err == nil)
	}
	if err != nil {
		s.logger.Error("snapshot upload failed", zap.String("key", upload.Key), zap.Error(err))
		return err
	}
	s.logger.Info("snapshot archived", zap.String("key", upload.Key), zap.Int("bytes", len(upload.Data)))
	return nil
}

// ListSnapshots returns archived snapshots of domain, newest first, with download links.
func (s *BackupService) ListSnapshots(ctx context.Context, domain models.Domain) ([]models.Snapshot, error) {
	if !domain.Valid() {
		return nil, unknownDomain(domain)
	}
	if s.archive == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "snapshot archive is not configured")
	}
	objects, err := s.archive.List(ctx, string(domain)+"/")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list snapshots")
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key > objects[j].Key })
	out := make([]models.Snapshot, 0, len(objects))
	for _, obj := range objects {
		snapshot := models.Snapshot{Domain: domain, Key: obj.Key, Size: obj.Size, CreatedAt: obj.LastModified}
		if err := s.sign(&snapshot); err != nil {
			return nil, err
		}
		out = append(out, snapshot)
	}
	return out, nil
}

// OpenSnapshot resolves a signed download token to the archived document.
func (s *BackupService) OpenSnapshot(ctx context.Context, token string) (*ReportFile, error) {
	if s.archive == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "snapshot archive is not configured")
	}
	ref, err := s.signer.Verify(token)
	if err != nil {
		message := "download link is invalid"
		if errors.Is(err, storage.ErrTokenExpired) {
			message = "download link has expired"
		}
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, message)
	}
	data, err := s.fetch(ctx, ref.Key)
	if err != nil {
		return nil, err
	}
	return &ReportFile{Filename: path.Base(ref.Key), ContentType: "application/json", Body: data}, nil
}

// RestoreSnapshot imports an archived snapshot of domain.
func (s *BackupService) RestoreSnapshot(ctx context.Context, domain models.Domain, input models.RestoreSnapshotInput) error {
	if !domain.Valid() {
		return unknownDomain(domain)
	}
	if s.archive == nil {
		return appErrors.Clone(appErrors.ErrUnavailable, "snapshot archive is not configured")
	}
	if err := s.validator.Struct(input); err != nil || !strings.HasPrefix(input.Key, string(domain)+"/") {
		return validationError("invalid snapshot key", FieldErrors{"key": "Snapshot does not belong to " + string(domain)})
	}
	data, err := s.fetch(ctx, input.Key)
	if err != nil {
		return err
	}
	return s.Import(ctx, domain, data)
}

func (s *BackupService) fetch(ctx context.Context, key string) ([]byte, error) {
	data, err := s.archive.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "snapshot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read snapshot")
	}
	return data, nil
}

func (s *BackupService) sign(snapshot *models.Snapshot) error {
	if s.signer == nil {
		return nil
	}
	token, expiresAt, err := s.signer.Sign(string(snapshot.Domain), snapshot.Key)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	snapshot.DownloadURL = s.cfg.DownloadBase + "/" + token
	snapshot.ExpiresAt = expiresAt
	return nil
}

func decodeSections(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(data), &raw); err != nil {
		return nil, importRejected(err, "backup file is not valid JSON")
	}
	if raw == nil {
		return nil, importRejected(errors.New("document is null"), "backup file is empty")
	}
	return raw, nil
}

func requireSection(raw map[string]json.RawMessage, name string, dest interface{}) error {
	section, ok := raw[name]
	if !ok || isNull(section) {
		return importRejected(fmt.Errorf("missing %s", name), fmt.Sprintf("backup file is missing %s", name))
	}
	if err := json.Unmarshal(section, dest); err != nil {
		return importRejected(err, fmt.Sprintf("%s section is malformed", name))
	}
	return nil
}

func isNull(section json.RawMessage) bool {
	return string(bytes.TrimSpace(section)) == "null"
}

func importFailure(err error, collection string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return importRejected(err, fmt.Sprintf("%s contain duplicate records", collection))
	case errors.Is(err, repository.ErrSeatUnavailable):
		return importRejected(err, "students contain invalid or shared seats")
	default:
		return translateRepoError(err, collection+" not found")
	}
}

func unknownDomain(domain models.Domain) error {
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown domain %q", domain))
}
