// Package batch generates masks for a list of panoramas concurrently.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"panomask/internal/pano"
	"panomask/internal/segment"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job is one panorama to segment.
type Job struct {
	Key  string // output basename
	Name string // display name
	Path string // source image
}

// NewJob builds a job for path, naming it after the file when name is empty.
func NewJob(path, name string) Job {
	key := pano.Basename(path)
	if name == "" {
		name = key
	}
	return Job{Key: key, Name: name, Path: path}
}

// Status is the outcome of a job.
type Status int

const (
	StatusDone Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result reports what happened to one job.
type Result struct {
	Job      Job
	Status   Status
	Width    int
	Height   int
	Coverage segment.Coverage
	Masks    pano.MaskPaths
	Duration time.Duration
	Err      error
}

// Cleaner post-processes a mask before it is written.
type Cleaner func(*segment.Mask) (*segment.Mask, error)

// Options configures a Runner.
type Options struct {
	MaskDir     string
	Suffixes    pano.Suffixes
	Params      segment.Params
	Workers     int // concurrent panoramas, <= 0 means 1
	ScanWorkers int // row bands per image, 0 = GOMAXPROCS
	Cleanup     Cleaner
}

// Runner segments panoramas and writes their masks.
type Runner struct {
	opts Options
	log  *zap.Logger
}

// NewRunner creates a runner. A nil logger disables logging.
func NewRunner(opts Options, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Runner{opts: opts, log: log}
}

// Run processes jobs with at most Options.Workers in flight. Missing source
// files are skipped, not failed. Results are returned in job order; the
// error joins every failed job's error.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	if err := os.MkdirAll(r.opts.MaskDir, 0755); err != nil {
		return nil, fmt.Errorf("create mask directory: %w", err)
	}

	results := make([]Result, len(jobs))

	var g errgroup.Group
	g.SetLimit(r.opts.Workers)
	for i, job := range jobs {
		if ctx.Err() != nil {
			results[i] = Result{Job: job, Status: StatusFailed, Err: ctx.Err()}
			continue
		}
		g.Go(func() error {
			results[i] = r.Process(ctx, job)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, res := range results {
		if res.Status == StatusFailed {
			errs = append(errs, fmt.Errorf("%s: %w", res.Job.Key, res.Err))
		}
	}
	return results, errors.Join(errs...)
}

// Process segments a single panorama and writes its three masks.
func (r *Runner) Process(ctx context.Context, job Job) Result {
	start := time.Now()
	res := Result{Job: job}
	log := r.log.With(zap.String("panorama", job.Name), zap.String("path", job.Path))

	if err := ctx.Err(); err != nil {
		res.Status = StatusFailed
		res.Err = err
		return res
	}

	p, err := pano.Load(job.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("Panorama missing, skipping")
			res.Status = StatusSkipped
			res.Err = err
			return res
		}
		log.Error("Failed to load panorama", zap.Error(err))
		res.Status = StatusFailed
		res.Err = err
		return res
	}
	res.Width, res.Height = p.Width(), p.Height()
	log.Debug("Loaded panorama", zap.String("format", p.Format),
		zap.Int("width", res.Width), zap.Int("height", res.Height))

	masks := r.opts.Params.ComputeMasksParallel(p.Image, r.opts.ScanWorkers)

	if r.opts.Cleanup != nil {
		if err := r.cleanup(masks); err != nil {
			log.Error("Mask cleanup failed", zap.Error(err))
			res.Status = StatusFailed
			res.Err = err
			return res
		}
	}
	res.Coverage = masks.Coverage

	res.Masks = pano.MaskPathsFor(r.opts.MaskDir, job.Key, r.opts.Suffixes)
	if err := pano.WriteMasks(masks, res.Masks); err != nil {
		log.Error("Failed to write masks", zap.Error(err))
		res.Status = StatusFailed
		res.Err = err
		return res
	}

	res.Status = StatusDone
	res.Duration = time.Since(start)
	log.Info("Masks written",
		zap.Int("width", res.Width),
		zap.Int("height", res.Height),
		zap.String("sky", percent(res.Coverage.Sky)),
		zap.String("water", percent(res.Coverage.Water)),
		zap.String("vegetation", percent(res.Coverage.Vegetation)),
		zap.Duration("elapsed", res.Duration))
	return res
}

// cleanup replaces each mask with its cleaned version and refreshes coverage.
func (r *Runner) cleanup(res *segment.Result) error {
	var err error
	if res.Sky, err = r.opts.Cleanup(res.Sky); err != nil {
		return fmt.Errorf("sky: %w", err)
	}
	if res.Water, err = r.opts.Cleanup(res.Water); err != nil {
		return fmt.Errorf("water: %w", err)
	}
	if res.Vegetation, err = r.opts.Cleanup(res.Vegetation); err != nil {
		return fmt.Errorf("vegetation: %w", err)
	}
	res.Coverage = segment.Coverage{
		Sky:        res.Sky.Coverage(),
		Water:      res.Water.Coverage(),
		Vegetation: res.Vegetation.Coverage(),
	}
	return nil
}

// Summary counts results by status.
type Summary struct {
	Done, Skipped, Failed int
}

// Summarize tallies a result set.
func Summarize(results []Result) Summary {
	var s Summary
	for _, res := range results {
		switch res.Status {
		case StatusDone:
			s.Done++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

func percent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}
