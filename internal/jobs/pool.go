package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"vidgrab/internal/extract"
	"vidgrab/internal/media"
	"vidgrab/internal/models"
)

// Engine is the blocking download side of the extraction client, kept
// narrow so tests can substitute a stub.
type Engine interface {
	Download(ctx context.Context, url, selector string, out extract.OutputTemplate, onProgress extract.ProgressFunc, clip *extract.ClipRange) (string, error)
}

// CompletionLog receives one record per completed download.
type CompletionLog interface {
	Append(id, filename string, size int64) error
}

// PoolConfig wires a worker pool.
type PoolConfig struct {
	Store       *Store
	Queue       *Queue
	Engine      Engine
	Workers     int
	DownloadDir string
	// DownloadTimeout bounds one engine call; 0 disables the watchdog.
	DownloadTimeout time.Duration
	Audit           CompletionLog
	Log             *logrus.Logger
}

// Pool runs a fixed set of workers that claim queued jobs in FIFO
// order, drive the extraction engine and keep the store current. A
// claimed job runs to completion or failure; there is no mid-flight
// cancellation.
type Pool struct {
	store   *Store
	queue   *Queue
	engine  Engine
	workers int
	dir     string
	timeout time.Duration
	audit   CompletionLog
	log     *logrus.Logger
	wg      sync.WaitGroup
}

func NewPool(cfg PoolConfig) *Pool {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	return &Pool{
		store:   cfg.Store,
		queue:   cfg.Queue,
		engine:  cfg.Engine,
		workers: cfg.Workers,
		dir:     cfg.DownloadDir,
		timeout: cfg.DownloadTimeout,
		audit:   cfg.Audit,
		log:     cfg.Log,
	}
}

// Submit registers a new job and enqueues it. It returns immediately
// with the queued snapshot; all download errors surface later through
// the job record.
func (p *Pool) Submit(req models.DownloadRequest) (models.Job, error) {
	job := p.store.Create()
	if !p.queue.Enqueue(job.ID, req) {
		err := fmt.Errorf("queue closed")
		_ = p.store.Update(job.ID, func(j *models.Job) {
			j.Status = models.StatusFailed
			j.Error = "server is shutting down"
		})
		return models.Job{}, err
	}
	p.log.WithFields(logrus.Fields{
		"job_id": job.ID,
		"format": req.Format,
		"queued": p.queue.Len(),
	}).Info("job submitted")
	return job, nil
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.log.WithField("workers", p.workers).Info("worker pool started")
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	p.queue.Close()
	p.wg.Wait()
	p.log.Info("worker pool stopped")
}

func (p *Pool) worker(n int) {
	defer p.wg.Done()
	for {
		item, ok := p.queue.dequeue()
		if !ok {
			return
		}
		p.runJob(n, item)
	}
}

func (p *Pool) runJob(worker int, item queueItem) {
	log := p.log.WithFields(logrus.Fields{"worker": worker, "job_id": item.jobID})

	completed := false
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("worker panic: %v", r)
			_ = p.store.Update(item.jobID, func(j *models.Job) {
				j.Status = models.StatusFailed
				j.Error = fmt.Sprintf("internal error: %v", r)
			})
		}
		// Partial artifacts must never outlive a failed job.
		if !completed {
			p.removeArtifacts(item.jobID, log)
		}
	}()

	if err := p.store.Update(item.jobID, func(j *models.Job) {
		j.Status = models.StatusDownloading
	}); err != nil {
		log.WithError(err).Warn("could not claim job")
		return
	}

	selector := media.ResolveFormat(item.req.Format, item.req.Quality)
	out := extract.OutputTemplate{Dir: p.dir, Token: item.jobID}
	clip := clipRange(item.req)

	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	log.WithField("selector", selector).Info("download started")
	path, err := p.engine.Download(ctx, item.req.URL, selector, out, p.progressFunc(item.jobID), clip)
	if err != nil {
		log.WithError(err).Error("download failed")
		_ = p.store.Update(item.jobID, func(j *models.Job) {
			j.Status = models.StatusFailed
			j.Error = err.Error()
		})
		return
	}

	var size int64
	if info, statErr := os.Stat(path); statErr == nil {
		size = info.Size()
	}

	filename := filepath.Base(path)
	if err := p.store.Update(item.jobID, func(j *models.Job) {
		j.Status = models.StatusCompleted
		j.Progress = 100
		j.ArtifactPath = path
		j.Filename = filename
	}); err != nil {
		log.WithError(err).Warn("could not record completion")
		return
	}
	completed = true

	if p.audit != nil {
		if err := p.audit.Append(item.jobID, filename, size); err != nil {
			log.WithError(err).Warn("audit append failed")
		}
	}
	log.WithFields(logrus.Fields{"file": filename, "size": size}).Info("download completed")
}

// progressFunc builds the callback the engine invokes from the worker
// goroutine. Progress only ever moves forward; the terminal sample
// flips the job into processing at 100%.
func (p *Pool) progressFunc(id string) extract.ProgressFunc {
	return func(pr extract.Progress) {
		_ = p.store.Update(id, func(j *models.Job) {
			j.DownloadedBytes = pr.DownloadedBytes
			j.TotalBytes = pr.TotalBytes
			if pr.Finished {
				j.Status = models.StatusProcessing
				j.Progress = 100
				return
			}
			if pr.TotalBytes > 0 {
				pct := float64(pr.DownloadedBytes) / float64(pr.TotalBytes) * 100
				if pct > 99.9 {
					pct = 99.9
				}
				if pct > j.Progress {
					j.Progress = pct
				}
			}
			if pr.BytesPerSecond > 0 {
				j.Speed = humanSpeed(pr.BytesPerSecond)
			}
			if pr.ETA > 0 {
				j.ETA = int(pr.ETA.Seconds())
			}
		})
	}
}

// removeArtifacts deletes everything in the download directory carrying
// the job's token, covering partial output from any failure mode.
func (p *Pool) removeArtifacts(id string, log *logrus.Entry) {
	matches, err := filepath.Glob(filepath.Join(p.dir, "*"+id+"*"))
	if err != nil {
		return
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.WithError(err).WithField("path", path).Warn("cleanup failed")
		}
	}
}

func clipRange(req models.DownloadRequest) *extract.ClipRange {
	if req.StartTime == nil && req.EndTime == nil {
		return nil
	}
	return &extract.ClipRange{Start: req.StartTime, End: req.EndTime}
}

func humanSpeed(bps float64) string {
	switch {
	case bps >= 1<<20:
		return fmt.Sprintf("%.1fMB/s", bps/(1<<20))
	case bps >= 1<<10:
		return fmt.Sprintf("%.1fKB/s", bps/(1<<10))
	default:
		return fmt.Sprintf("%.0fB/s", bps)
	}
}
