// Package job implements the file lifecycle engine: AcceptJob reserves a
// file for processing, ProcessJob runs it end to end on a bounded worker
// pool.
package job

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/phantoooomCam/sabanas-server/internal/carrier"
	"github.com/phantoooomCam/sabanas-server/internal/config"
	"github.com/phantoooomCam/sabanas-server/internal/dispatch"
	"github.com/phantoooomCam/sabanas-server/internal/ftpclient"
	"github.com/phantoooomCam/sabanas-server/internal/metrics"
	"github.com/phantoooomCam/sabanas-server/internal/models"
	"github.com/phantoooomCam/sabanas-server/internal/repository"
	"github.com/phantoooomCam/sabanas-server/internal/sheet"
	apperrors "github.com/phantoooomCam/sabanas-server/pkg/errors"
	"github.com/phantoooomCam/sabanas-server/pkg/logger"
)

// Engine owns the job channel and the fixed pool of worker goroutines that
// drain it, following the teacher's bounded-concurrency idiom (WaitGroup-
// bounded background checks in internal/health).
type Engine struct {
	repo    *repository.Repository
	ftp     *ftpclient.Client
	jobCfg  config.JobConfig
	ftpCfg  config.FTPConfig
	metrics *metrics.PrometheusMetrics

	jobs chan jobItem
	wg   sync.WaitGroup
}

type jobItem struct {
	fileID        int64
	correlationID string
}

func NewEngine(repo *repository.Repository, ftp *ftpclient.Client, jobCfg config.JobConfig, ftpCfg config.FTPConfig, m *metrics.PrometheusMetrics) *Engine {
	return &Engine{
		repo:    repo,
		ftp:     ftp,
		jobCfg:  jobCfg,
		ftpCfg:  ftpCfg,
		metrics: m,
		jobs:    make(chan jobItem, jobCfg.QueueSize),
	}
}

// Start spawns the fixed-size worker pool. It returns immediately; workers
// run until ctx is canceled and the job channel drains.
func (e *Engine) Start(ctx context.Context) {
	for i := 0; i < e.jobCfg.WorkerPoolSize; i++ {
		e.wg.Add(1)
		go e.worker(ctx)
	}
}

// Stop closes the job channel and waits for in-flight workers to finish.
func (e *Engine) Stop() {
	close(e.jobs)
	e.wg.Wait()
}

func (e *Engine) worker(ctx context.Context) {
	defer e.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-e.jobs:
			if !ok {
				return
			}
			e.setGauge()
			e.ProcessJob(ctx, item.fileID, item.correlationID)
		}
	}
}

func (e *Engine) setGauge() {
	if e.metrics == nil {
		return
	}
	e.metrics.SetGauge("jobs_queued", float64(len(e.jobs)), nil)
}

// AcceptJob reserves fileId for processing: it must currently be
// "uploaded"; on success it transitions to "queued" and schedules
// ProcessJob onto the worker pool.
func (e *Engine) AcceptJob(ctx context.Context, fileID int64) (string, *models.FileRecord, error) {
	rec, err := e.repo.GetFile(ctx, fileID)
	if err != nil {
		return "", nil, err
	}
	if rec == nil {
		return "", nil, apperrors.New(apperrors.ErrNotFound, "file not found").WithStatusCode(404)
	}
	if rec.State != models.StateUploaded {
		return "", nil, apperrors.New(apperrors.ErrConflict, fmt.Sprintf("file is in state %q, expected %q", rec.State, models.StateUploaded)).
			WithStatusCode(409).WithContext("state", rec.State)
	}

	ok, err := e.repo.TryTransitionState(ctx, fileID, models.StateUploaded, models.StateQueued, false, false)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, apperrors.New(apperrors.ErrConflict, "file state changed concurrently").WithStatusCode(409)
	}

	jobID := newJobID()
	correlationID := newJobID()

	select {
	case e.jobs <- jobItem{fileID: fileID, correlationID: correlationID}:
	default:
		logger.WithField("file_id", fileID).Warn("job queue full, blocking enqueue")
		e.jobs <- jobItem{fileID: fileID, correlationID: correlationID}
	}

	rec.State = models.StateQueued
	return jobID, rec, nil
}

// ProcessJob runs one file through download -> dispatch -> parse ->
// persist, guaranteeing the record reaches processed or error exactly
// once. Any early-return path besides "not queued" reaches a terminal
// state before returning.
func (e *Engine) ProcessJob(ctx context.Context, fileID int64, correlationID string) {
	log := logger.WithField("correlation_id", correlationID).WithField("file_id", fileID)
	started := time.Now()

	rec, err := e.repo.GetFile(ctx, fileID)
	if err != nil || rec == nil || rec.State != models.StateQueued {
		return
	}

	ok, err := e.repo.TryTransitionState(ctx, fileID, models.StateQueued, models.StateProcessing, true, false)
	if err != nil || !ok {
		return
	}

	carrierName := "TELCEL"
	defer func() {
		if e.metrics != nil {
			e.metrics.ObserveHistogram("etl_job_duration", time.Since(started).Seconds(), map[string]string{"carrier": carrierName})
		}
	}()

	scratchDir := filepath.Join(e.ftpCfg.LocalTmpDir, fmt.Sprintf("%d", fileID))
	defer os.RemoveAll(scratchDir)

	localPath, err := e.ftp.Download(rec.Path, scratchDir)
	if err != nil {
		log.WithError(err).Error("ftp download failed")
		e.fail(ctx, fileID, carrierName)
		return
	}

	var metadataFields []string
	if rec.CarrierName != nil {
		metadataFields = []string{*rec.CarrierName}
	}
	parser := dispatch.Resolve(rec.CarrierID, metadataFields, localPath)
	carrierName = parser.Name()
	if err := e.repo.SetCarrier(ctx, fileID, carrierIDFor(carrierName), carrierName); err != nil {
		log.WithError(err).Warn("failed to record carrier on file")
	}

	sheets, err := sheet.ReadWorkbook(localPath)
	if err != nil {
		log.WithError(err).Error("failed to read workbook")
		e.fail(ctx, fileID, carrierName)
		return
	}

	blocks := carrier.Locate(parser, sheets)
	records, stats, err := parser.Normalize(fileID, blocks, localPath, time.Now().UTC())
	if err != nil {
		log.WithError(err).Error("normalize rejected file")
		e.fail(ctx, fileID, carrierName)
		return
	}

	if e.metrics != nil {
		e.metrics.AddCounter("etl_rows", float64(stats.Seen), map[string]string{"carrier": carrierName, "stage": "seen"})
		e.metrics.AddCounter("etl_rows", float64(stats.DroppedFilter), map[string]string{"carrier": carrierName, "stage": "dropped_filter"})
		e.metrics.AddCounter("etl_rows", float64(stats.Deduplicated), map[string]string{"carrier": carrierName, "stage": "deduplicated"})
		e.metrics.AddCounter("etl_rows", float64(stats.Kept), map[string]string{"carrier": carrierName, "stage": "kept"})
	}

	if _, err := e.repo.ReplaceRecords(ctx, fileID, records); err != nil {
		log.WithError(err).Error("failed to persist canonical records")
		e.fail(ctx, fileID, carrierName)
		return
	}

	if ok, err := e.repo.TryTransitionState(ctx, fileID, models.StateProcessing, models.StateProcessed, false, true); err != nil || !ok {
		if err != nil {
			log = log.WithError(err)
		}
		log.Error("failed to transition to processed")
		e.fail(ctx, fileID, carrierName)
		return
	}

	if e.metrics != nil {
		e.metrics.IncrementCounter("etl_files_processed", map[string]string{"carrier": carrierName, "state": "processed"})
	}
	log.WithField("rows", stats.Kept).Info("file processed")
}

func (e *Engine) fail(ctx context.Context, fileID int64, carrierName string) {
	if err := e.repo.MarkError(ctx, fileID); err != nil {
		logger.WithField("file_id", fileID).WithError(err).Error("failed to mark file as error")
	}
	if e.metrics != nil {
		e.metrics.IncrementCounter("etl_files_processed", map[string]string{"carrier": carrierName, "state": "error"})
	}
}

func carrierIDFor(name string) int {
	switch name {
	case "ATT":
		return 4
	case "MOVISTAR":
		return 5
	case "ALTAN":
		return 12
	default:
		return 1
	}
}

func newJobID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
