package s3mirror

import (
	"context"
	"fmt"
	"log"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Options struct {
	// Prefix is prepended to every object key.
	Prefix        string
	Workers       int
	QueueCapacity int
	// EnqueueWait bounds how long Enqueue blocks on a full queue before
	// dropping the file.
	EnqueueWait time.Duration
	Attempts    int
	Backoff     time.Duration
}

type Stats struct {
	QueueDepth    int
	QueueCapacity int
	Enqueued      uint64
	Dropped       uint64
	Uploaded      uint64
	Failed        uint64
}

// Mirror uploads run artifacts in the background. Object keys are the file's
// path relative to dataDir.
type Mirror struct {
	up      Uploader
	dataDir string
	opts    Options
	logger  *log.Logger

	jobs chan string
	wg   sync.WaitGroup
	once sync.Once
	// mu orders Enqueue against Close; closed is set under the write lock.
	mu     sync.RWMutex
	closed bool

	enqueued atomic.Uint64
	dropped  atomic.Uint64
	uploaded atomic.Uint64
	failed   atomic.Uint64
}

func New(up Uploader, dataDir string, opts Options, logger *log.Logger) *Mirror {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.QueueCapacity <= 0 {
		opts.QueueCapacity = 1024
	}
	if opts.EnqueueWait <= 0 {
		opts.EnqueueWait = 25 * time.Millisecond
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 4
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 200 * time.Millisecond
	}
	opts.Prefix = strings.Trim(strings.ReplaceAll(opts.Prefix, "\\", "/"), "/")

	m := &Mirror{
		up:      up,
		dataDir: dataDir,
		opts:    opts,
		logger:  logger,
		jobs:    make(chan string, opts.QueueCapacity),
	}
	for i := 0; i < opts.Workers; i++ {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			for p := range m.jobs {
				m.upload(p)
			}
		}()
	}
	return m
}

// Enqueue schedules localPath for upload. A nil Mirror ignores the call, and
// so does a closed one: files enqueued after Close are counted as dropped.
func (m *Mirror) Enqueue(localPath string) {
	if m == nil {
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.enqueued.Add(1)
	if m.closed {
		m.dropped.Add(1)
		m.printf("mirror drop local=%s reason=closed", localPath)
		return
	}
	select {
	case m.jobs <- localPath:
		return
	default:
	}
	t := time.NewTimer(m.opts.EnqueueWait)
	defer t.Stop()
	select {
	case m.jobs <- localPath:
	case <-t.C:
		n := m.dropped.Add(1)
		m.printf("mirror drop local=%s reason=queue_full dropped_total=%d", localPath, n)
	}
}

// Close drains the queue and waits for in-flight uploads.
func (m *Mirror) Close() {
	if m == nil {
		return
	}
	m.once.Do(func() {
		m.mu.Lock()
		m.closed = true
		close(m.jobs)
		m.mu.Unlock()
		m.wg.Wait()
	})
}

func (m *Mirror) Stats() Stats {
	if m == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:    len(m.jobs),
		QueueCapacity: cap(m.jobs),
		Enqueued:      m.enqueued.Load(),
		Dropped:       m.dropped.Load(),
		Uploaded:      m.uploaded.Load(),
		Failed:        m.failed.Load(),
	}
}

func (m *Mirror) upload(localPath string) {
	key, err := m.ObjectKey(localPath)
	if err != nil {
		m.failed.Add(1)
		m.printf("mirror skip local=%s err=%v", localPath, err)
		return
	}
	var last error
	for attempt := 1; attempt <= m.opts.Attempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		last = m.up.PutFile(ctx, key, localPath)
		cancel()
		if last == nil {
			m.uploaded.Add(1)
			m.printf("mirror uploaded key=%s", key)
			return
		}
		if attempt < m.opts.Attempts {
			time.Sleep(time.Duration(attempt*attempt) * m.opts.Backoff)
		}
	}
	m.failed.Add(1)
	m.printf("mirror upload failed key=%s err=%v", key, last)
}

// ObjectKey maps a file under dataDir to its object key.
func (m *Mirror) ObjectKey(localPath string) (string, error) {
	base, err := filepath.Abs(m.dataDir)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(localPath)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is outside %s", abs, base)
	}
	if m.opts.Prefix != "" {
		rel = path.Join(m.opts.Prefix, rel)
	}
	return rel, nil
}

func (m *Mirror) printf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}
