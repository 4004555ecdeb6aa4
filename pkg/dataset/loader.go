package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/Sumatoshi-tech/locstats/pkg/cachefile"
	"github.com/Sumatoshi-tech/locstats/pkg/commits"
	"github.com/Sumatoshi-tech/locstats/pkg/linelog"
)

// ErrNoSource indicates the loader has neither a source log nor a cache.
var ErrNoSource = errors.New("no source log or cache configured")

// State is the lifecycle state of a Loader.
type State int32

// Loader states.
const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

const loadKey = "dataset"

// Options configures a Loader.
type Options struct {
	// SourcePath is the raw CSV log.
	SourcePath string
	// CachePath is the precomputed cache. Empty disables the cache.
	CachePath string
	// WriteCache writes the cache after every raw ingest.
	WriteCache bool
	// URLBase is prefixed to commit ids to build commit links.
	URLBase string
	// Logger receives load diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Loader loads a Dataset at most once until invalidated. Concurrent callers
// of Initialize share a single load.
type Loader struct {
	opts   Options
	logger *slog.Logger
	group  singleflight.Group
	loads  atomic.Int64

	mu         sync.RWMutex
	state      State
	dataset    *Dataset
	err        error
	generation uint64
}

// NewLoader creates a loader in the uninitialized state.
func NewLoader(opts Options) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Loader{opts: opts, logger: logger}
}

// State returns the current lifecycle state.
func (l *Loader) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.state
}

// Err returns the error of the last failed load, if the loader is failed.
func (l *Loader) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.err
}

// Loads returns the number of loads performed so far.
func (l *Loader) Loads() int64 {
	return l.loads.Load()
}

// Dataset returns the loaded dataset, or nil unless the loader is ready.
func (l *Loader) Dataset() *Dataset {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.dataset
}

// Initialize returns the dataset, loading it if needed. A ready loader returns
// its dataset without reloading. A failed loader retries on the next call.
// Cancelling ctx abandons the wait but not a load other callers share.
func (l *Loader) Initialize(ctx context.Context) (*Dataset, error) {
	if ds := l.Dataset(); ds != nil {
		return ds, nil
	}

	ch := l.group.DoChan(loadKey, func() (any, error) {
		return l.load(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("initialize dataset: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		ds, ok := res.Val.(*Dataset)
		if !ok {
			return nil, fmt.Errorf("initialize dataset: unexpected result %T", res.Val)
		}

		return ds, nil
	}
}

// Invalidate drops the loaded dataset and returns the loader to the
// uninitialized state. An in-flight load finishes for its callers but is not kept.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.state = StateUninitialized
	l.dataset = nil
	l.err = nil
	l.generation++
	l.mu.Unlock()

	l.group.Forget(loadKey)
}

func (l *Loader) load(ctx context.Context) (*Dataset, error) {
	l.mu.Lock()
	if l.dataset != nil {
		ds := l.dataset
		l.mu.Unlock()

		return ds, nil
	}

	l.state = StateLoading
	generation := l.generation
	l.mu.Unlock()

	ds, err := l.read(ctx)
	l.loads.Add(1)

	l.mu.Lock()
	defer l.mu.Unlock()

	if generation != l.generation {
		return ds, err
	}

	if err != nil {
		l.state = StateFailed
		l.err = err

		return nil, err
	}

	l.state = StateReady
	l.dataset = ds

	return ds, nil
}

func (l *Loader) read(ctx context.Context) (*Dataset, error) {
	if l.opts.CachePath != "" {
		ds, err := l.readCache()
		if err == nil {
			l.logger.InfoContext(ctx, "dataset loaded from cache",
				"path", l.opts.CachePath, "commits", len(ds.Commits), "records", len(ds.Records))

			return ds, nil
		}

		if l.opts.SourcePath == "" {
			return nil, fmt.Errorf("load cache: %w", err)
		}

		if errors.Is(err, fs.ErrNotExist) {
			l.logger.DebugContext(ctx, "cache not found, ingesting raw log", "path", l.opts.CachePath)
		} else {
			l.logger.WarnContext(ctx, "cache unusable, ingesting raw log", "path", l.opts.CachePath, "error", err)
		}
	}

	if l.opts.SourcePath == "" {
		return nil, ErrNoSource
	}

	ctxErr := ctx.Err()
	if ctxErr != nil {
		return nil, ctxErr
	}

	ds, err := l.readRaw()
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "dataset ingested from raw log",
		"path", l.opts.SourcePath, "commits", len(ds.Commits), "records", len(ds.Records))

	if l.opts.WriteCache && l.opts.CachePath != "" {
		saveErr := cachefile.Save(l.opts.CachePath, cachefile.Build(ds.Records, ds.Commits))
		if saveErr != nil {
			l.logger.WarnContext(ctx, "write cache failed", "path", l.opts.CachePath, "error", saveErr)
		}
	}

	return ds, nil
}

// errStaleCache indicates the cache is older than the source log.
var errStaleCache = errors.New("cache is older than source log")

func (l *Loader) readCache() (*Dataset, error) {
	cacheInfo, err := os.Stat(l.opts.CachePath)
	if err != nil {
		return nil, fmt.Errorf("stat cache: %w", err)
	}

	if l.opts.SourcePath != "" {
		sourceInfo, statErr := os.Stat(l.opts.SourcePath)
		if statErr == nil && sourceInfo.ModTime().After(cacheInfo.ModTime()) {
			return nil, errStaleCache
		}
	}

	doc, err := cachefile.Load(l.opts.CachePath)
	if err != nil {
		return nil, err
	}

	records, cs, err := doc.Restore()
	if err != nil {
		return nil, err
	}

	ds := New(records, cs)
	ds.Source = SourceCache

	return ds, nil
}

func (l *Loader) readRaw() (*Dataset, error) {
	file, err := os.Open(l.opts.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("open source log: %w", err)
	}
	defer file.Close()

	records, err := linelog.Ingest(file)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", l.opts.SourcePath, err)
	}

	ds := New(records, commits.Aggregator{URLBase: l.opts.URLBase}.Commits(records))
	ds.Source = SourceRaw

	return ds, nil
}
