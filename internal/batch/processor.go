package batch

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chinedufn/webgl-wield-item-tutorial/internal/attach"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/postprocess"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/raster"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/scene"

	"github.com/HugoSmits86/nativewebp"
	"github.com/go-gl/mathgl/mgl64"
)

// Config holds all shared resources for a batch run.
type Config struct {
	Scene     *scene.Scene
	Render    raster.Options
	OutputDir string
	Workers   int
}

// FrameJob is one frame to render: the animation clock and which prop is in
// the hand at that moment.
type FrameJob struct {
	Index int
	Time  float64
	Held  attach.Prop
}

// Result holds the outcome of rendering one frame.
type Result struct {
	Index   int
	Time    float64
	Held    attach.Prop
	Image   string     // file name relative to OutputDir
	Model   mgl64.Mat4 // prop model-view matrix for the frame
	Success bool
	Error   string
}

// Plan builds count frames sampled at fps starting from start seconds. The
// held prop flips every toggleEvery frames; toggleEvery <= 0 never flips.
func Plan(start, fps float64, count int, held attach.Prop, toggleEvery int) []FrameJob {
	if count <= 0 || fps <= 0 {
		return nil
	}
	jobs := make([]FrameJob, count)
	for i := range jobs {
		if toggleEvery > 0 && i > 0 && i%toggleEvery == 0 {
			held = held.Other()
		}
		jobs[i] = FrameJob{
			Index: i,
			Time:  start + float64(i)/fps,
			Held:  held,
		}
	}
	return jobs
}

// FrameName is the output file name for frame index.
func FrameName(index int) string {
	return fmt.Sprintf("frame_%04d.webp", index)
}

// Run renders all jobs using a worker pool. A failed frame is reported in its
// Result and does not stop the others. Cancelling ctx stops dispatching new
// frames; undispatched frames come back with the context error.
func Run(ctx context.Context, cfg Config, jobs []FrameJob) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f frames/sec\n", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processFrame(cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	next := 0
dispatch:
	for ; next < total; next++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobChan <- next:
		}
	}
	close(jobChan)

	wg.Wait()
	close(done)

	for i := next; i < total; i++ {
		results[i] = failed(jobs[i], ctx.Err())
	}
	return results
}

func failed(job FrameJob, err error) Result {
	return Result{
		Index: job.Index,
		Time:  job.Time,
		Held:  job.Held,
		Error: err.Error(),
	}
}

func processFrame(cfg Config, job FrameJob) Result {
	frame, err := cfg.Scene.Evaluate(job.Time, job.Held)
	if err != nil {
		return failed(job, err)
	}

	img, err := raster.RenderFrame(cfg.Render, frame)
	if err != nil {
		return failed(job, err)
	}

	// Post-processing: supersample downsample
	if cfg.Render.Supersample > 1 {
		img = postprocess.Downsample(img, cfg.Render.Supersample)
	}

	name := FrameName(job.Index)
	if err := writeWebP(filepath.Join(cfg.OutputDir, name), img); err != nil {
		return failed(job, err)
	}

	return Result{
		Index:   job.Index,
		Time:    job.Time,
		Held:    job.Held,
		Image:   name,
		Model:   frame.Attachment.Model,
		Success: true,
	}
}

func writeWebP(path string, img *image.NRGBA) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		return fmt.Errorf("WebP encode: %w", err)
	}
	return f.Close()
}
