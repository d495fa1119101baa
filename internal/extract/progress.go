package extract

import (
	"sync"
	"time"
)

// meter accumulates bytes across the concurrent stream downloads of
// one job, enforces the size cap and emits throttled progress samples.
type meter struct {
	mu         sync.Mutex
	cb         ProgressFunc
	total      int64
	maxBytes   int64
	downloaded int64
	started    time.Time
	lastEmit   time.Time
	finished   bool
}

func newMeter(cb ProgressFunc, total, maxBytes int64) *meter {
	return &meter{cb: cb, total: total, maxBytes: maxBytes, started: time.Now()}
}

// preflight rejects transfers whose announced size already exceeds the
// cap. Streams with unknown length are checked as they arrive instead.
func (m *meter) preflight() error {
	if m.maxBytes > 0 && m.total > m.maxBytes {
		return ErrSizeLimit
	}
	return nil
}

func (m *meter) add(n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.downloaded += int64(n)
	if m.maxBytes > 0 && m.downloaded > m.maxBytes {
		return ErrSizeLimit
	}
	if m.cb == nil {
		return nil
	}
	now := time.Now()
	if now.Sub(m.lastEmit) < progressInterval {
		return nil
	}
	m.lastEmit = now
	m.cb(m.sample(false))
	return nil
}

// finish emits the single terminal sample marking the start of
// post-processing. Safe to call once per meter.
func (m *meter) finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finished || m.cb == nil {
		m.finished = true
		return
	}
	m.finished = true
	m.cb(m.sample(true))
}

func (m *meter) sample(finished bool) Progress {
	p := Progress{
		DownloadedBytes: m.downloaded,
		TotalBytes:      m.total,
		Finished:        finished,
	}
	if elapsed := time.Since(m.started).Seconds(); elapsed > 0 {
		p.BytesPerSecond = float64(m.downloaded) / elapsed
		if p.BytesPerSecond > 0 && m.total > m.downloaded {
			p.ETA = time.Duration(float64(m.total-m.downloaded)/p.BytesPerSecond) * time.Second
		}
	}
	return p
}
