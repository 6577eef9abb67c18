package preview

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2/log"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// PreviewWidth is the pixel width of workspace preview images
const PreviewWidth = 640

// PreviewsSubdir is the directory for previews inside the figure directory
const PreviewsSubdir = "previews"

// Render creates a WebP preview of a generated figure and returns its path.
// The full-resolution PNG stays untouched for download.
func Render(figurePath string) (string, error) {
	img, err := imaging.Open(figurePath)
	if err != nil {
		return "", fmt.Errorf("error opening figure: %w", err)
	}

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	log.Infof("[Preview] Figure dimensions: %dx%d", width, height)

	thumb := imaging.Resize(img, PreviewWidth, 0, imaging.Lanczos)

	base := filepath.Base(figurePath)
	nameWithoutExt := base[:len(base)-len(filepath.Ext(base))]
	previewPath := filepath.Join(filepath.Dir(figurePath), PreviewsSubdir, nameWithoutExt+".webp")

	if err := saveWebP(thumb, previewPath); err != nil {
		return "", err
	}

	log.Infof("[Preview] WebP preview created: %s", previewPath)
	return previewPath, nil
}

// PathFor returns the preview path a figure would get, without rendering it.
func PathFor(figureDir, figureUUID string) string {
	return filepath.Join(figureDir, PreviewsSubdir, figureUUID+".webp")
}

func saveWebP(img image.Image, outputPath string) error {
	// Ensure directory exists
	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	output, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("error creating WebP file: %w", err)
	}
	defer output.Close()

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, 85)
	if err != nil {
		return fmt.Errorf("error creating encoder options: %w", err)
	}

	if err := webp.Encode(output, img, options); err != nil {
		return fmt.Errorf("error encoding WebP image: %w", err)
	}

	return nil
}
