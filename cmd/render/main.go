package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/chinedufn/webgl-wield-item-tutorial/internal/animation"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/attach"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/batch"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/config"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/model"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/raster"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/scene"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	modelPath := flag.String("model", "", "Character JSON (skinned mesh + keyframes)")
	shortPath := flag.String("short", "", "Short stick JSON")
	longPath := flag.String("long", "", "Long stick JSON")
	texturePath := flag.String("texture", "", "Character texture (png, jpg or tga)")
	outputDir := flag.String("output", "", "Output directory (default: renders)")
	frames := flag.Int("frames", 0, "Number of frames to render (default: 60)")
	fps := flag.Float64("fps", 0, "Frames per second of animation time (default: 30)")
	held := flag.String("held", "", "Prop in hand at frame 0: short or long")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		Model:     *modelPath,
		ShortProp: *shortPath,
		LongProp:  *longPath,
		Texture:   *texturePath,
		OutputDir: *outputDir,
		Frames:    *frames,
		FPS:       *fps,
		Held:      *held,
		Workers:   *workers,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Load assets
	character, err := model.LoadCharacter(cfg.Model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading character: %v\n", err)
		os.Exit(1)
	}
	shortStick, err := model.LoadProp(cfg.ShortProp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading short stick: %v\n", err)
		os.Exit(1)
	}
	longStick, err := model.LoadProp(cfg.LongProp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading long stick: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Character: %d vertices, %d joints, %d keyframes\n",
		len(character.Mesh.Positions), character.Skeleton.JointCount(), character.Skeleton.KeyframeCount())

	renderOpts := raster.Options{
		Size:        cfg.RenderSize,
		Supersample: cfg.Supersample,
		Character:   character,
		Props: map[attach.Prop]*model.Mesh{
			attach.ShortProp: shortStick,
			attach.LongProp:  longStick,
		},
		Light: raster.DefaultLight(),
	}
	if cfg.Texture != "" {
		tex, err := texture.LoadTexture(cfg.Texture)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else {
			renderOpts.Texture = tex
			fmt.Printf("Texture: %dx%d\n", tex.Bounds().Dx(), tex.Bounds().Dy())
		}
	}

	sc, err := scene.New(character.Skeleton, scene.Options{
		Range: animation.Range{
			Start:     cfg.RangeStart,
			End:       cfg.RangeEnd,
			StartTime: cfg.StartTime,
			Clamp:     cfg.Clamp,
		},
		HandJoint: cfg.HandJoint,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	firstHeld, _ := attach.ParseProp(cfg.Held)
	jobs := batch.Plan(cfg.StartTime, cfg.FPS, cfg.Frames, firstHeld, cfg.ToggleEvery)

	fmt.Printf("Wield-item renderer → WebP\n")
	fmt.Printf("Frames: %d @ %.0f fps, Hand: %s, Workers: %d\n", len(jobs), cfg.FPS, cfg.HandJoint, cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()

	// Run batch
	results := batch.Run(ctx, batch.Config{
		Scene:     sc,
		Render:    renderOpts,
		OutputDir: cfg.OutputDir,
		Workers:   cfg.Workers,
	}, jobs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, len(jobs))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(errors) < limit {
			limit = len(errors)
		}
		for _, e := range errors[:limit] {
			fmt.Printf("  frame %d (t=%.3f): %s\n", e.Index, e.Time, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: create %s failed: %v\n", cfg.OutputDir, err)
	} else if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
