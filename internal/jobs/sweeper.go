package jobs

import (
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// SweepTarget is one directory with its own retention window.
type SweepTarget struct {
	Dir    string
	MaxAge time.Duration
}

// Sweeper periodically reclaims aged artifacts and evicts terminal
// in-memory job records. Individual deletion errors are logged and
// never abort the rest of a sweep.
type Sweeper struct {
	targets  []SweepTarget
	interval time.Duration
	store    *Store
	// evictAfter bounds how long terminal job records stay in memory.
	evictAfter time.Duration
	log        *logrus.Logger
	stop       chan struct{}
	done       chan struct{}
}

func NewSweeper(targets []SweepTarget, interval time.Duration, store *Store, evictAfter time.Duration, log *logrus.Logger) *Sweeper {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Sweeper{
		targets:    targets,
		interval:   interval,
		store:      store,
		evictAfter: evictAfter,
		log:        log,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (s *Sweeper) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.SweepOnce(time.Now())
			}
		}
	}()
	s.log.WithField("interval", s.interval).Info("retention sweeper started")
}

// Stop terminates the loop and waits for it to exit.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

// SweepOnce runs a single pass against the given clock reading.
func (s *Sweeper) SweepOnce(now time.Time) {
	for _, target := range s.targets {
		s.sweepDir(target, now)
	}
	if s.store != nil && s.evictAfter > 0 {
		if n := s.store.EvictTerminalBefore(now.Add(-s.evictAfter)); n > 0 {
			s.log.WithFields(logrus.Fields{
				"evicted": n,
				"tracked": s.store.Count(),
			}).Info("evicted terminal job records")
		}
	}
}

func (s *Sweeper) sweepDir(target SweepTarget, now time.Time) {
	entries, err := os.ReadDir(target.Dir)
	if err != nil {
		s.log.WithError(err).WithField("dir", target.Dir).Warn("sweep skipped")
		return
	}

	cutoff := now.Add(-target.MaxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(target.Dir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.log.WithError(err).WithField("path", path).Warn("could not delete aged file")
			continue
		}
		removed++
	}
	if removed > 0 {
		s.log.WithFields(logrus.Fields{"dir": target.Dir, "removed": removed}).Info("swept aged files")
	}
}
