package projectfile

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/systemstart/stepline/pkg/pipeline"
)

const thumbnailSize = 250

// GenerateThumbnail materializes the project thumbnail artifact at
// thumbnailPath. Actual map rendering happens in the external engine; this
// writes the blank canvas the renderer draws over.
func GenerateThumbnail(p *Project, thumbnailPath string) error {
	slog.Info("generating project thumbnail", "project", p.Path, "thumbnail", thumbnailPath)

	if err := writeThumbnail(thumbnailPath); err != nil {
		return generationFailure(err.Error())
	}

	if _, err := os.Stat(thumbnailPath); err != nil {
		return generationFailure("file does not exist")
	}
	return nil
}

func generationFailure(reason string) error {
	return pipeline.NewError(pipeline.KindGenerationFailure,
		"Failed to generate project thumbnail:\n{{ .reason }}",
		map[string]any{"reason": reason})
}

func writeThumbnail(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, thumbnailSize, thumbnailSize))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, canvas); err != nil {
		return err
	}
	return f.Sync()
}
