package main

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/chinedufn/webgl-wield-item-tutorial/internal/texture"
)

// texdump decodes character textures the way the renderer does and writes
// them back out as PNG, so a bad TGA or JPEG shows up before a long batch.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: texdump texture.tga [more textures...]")
		os.Exit(2)
	}

	errors := 0
	for _, src := range os.Args[1:] {
		if err := dumpTexture(src); err != nil {
			fmt.Fprintf(os.Stderr, "ERR %v\n", err)
			errors++
		}
	}
	if errors > 0 {
		fmt.Printf("\nDone with %d error(s).\n", errors)
		os.Exit(1)
	}
	fmt.Println("\nDone. All textures decoded.")
}

func dumpTexture(src string) error {
	img, err := texture.LoadTexture(src)
	if err != nil {
		return err
	}

	dst := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + "_dump.png"
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}

	opaque := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] == 255 {
			opaque++
		}
	}
	b := img.Bounds()
	fmt.Printf("OK  %s -> %s  (%dx%d, %.0f%% opaque)\n",
		src, dst, b.Dx(), b.Dy(), 100*float64(opaque)/float64(b.Dx()*b.Dy()))
	return nil
}
