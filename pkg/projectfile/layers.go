package projectfile

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/systemstart/stepline/pkg/pipeline"
)

// LayerSummary is the per-layer report recorded in the feedback document.
//
// JSON fields are declared in alphabetical order to keep the serialized
// feedback deterministic.
type LayerSummary struct {
	Datasource   string `json:"datasource"`
	ErrorSummary string `json:"error_summary"`
	Filename     string `json:"filename"`
	ID           string `json:"id"`
	IsValid      bool   `json:"is_valid"`
	Name         string `json:"name"`
}

// CheckLayers validates every layer's datasource and returns one summary per
// layer. File-backed datasources must exist on disk, resolved relative to
// the project file. Any invalid layer fails the whole check.
func CheckLayers(p *Project) ([]LayerSummary, error) {
	slog.Info("checking layer and datasource validity", "layers", len(p.Layers))

	summaries := make([]LayerSummary, 0, len(p.Layers))
	hasInvalid := false

	for _, layer := range p.Layers {
		summary := LayerSummary{
			Datasource: layer.Datasource,
			Filename:   layerFilename(p.Path, layer),
			ID:         layer.ID,
			IsValid:    true,
			Name:       layer.Name,
		}

		if summary.Filename != "" {
			if _, err := os.Stat(summary.Filename); err != nil {
				summary.IsValid = false
				summary.ErrorSummary = "datasource file does not exist"
				hasInvalid = true
			}
		}

		summaries = append(summaries, summary)
	}

	if hasInvalid {
		return nil, pipeline.NewError(pipeline.KindInvalidLayers,
			`Project file {{ .project_filename | quote }} contains invalid layers`,
			map[string]any{
				"project_filename": p.Path,
				"layers_summary":   summaries,
			})
	}

	return summaries, nil
}

// layerFilename resolves a file-backed datasource to a path, or returns ""
// for datasources that are not plain files (services, in-memory providers,
// connection strings).
func layerFilename(projectPath string, layer Layer) string {
	ds := layer.Datasource
	// Layer options are appended after a pipe, e.g. "roads.gpkg|layername=roads".
	if i := strings.Index(ds, "|"); i >= 0 {
		ds = ds[:i]
	}
	if ds == "" || layer.Provider == "memory" ||
		strings.Contains(ds, "://") || strings.Contains(ds, "=") {
		return ""
	}
	if filepath.IsAbs(ds) {
		return ds
	}
	return filepath.Join(filepath.Dir(projectPath), ds)
}
