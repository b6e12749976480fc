package projectfile

import (
	"github.com/systemstart/stepline/pkg/manifest"
	"github.com/systemstart/stepline/pkg/pipeline"
)

// Initial argument names for the canonical pipeline.
const (
	ArgProjectFilename   = "project_filename"
	ArgThumbnailFilename = "thumbnail_filename"
)

// Pipeline builds the canonical project-file pipeline: validity check, open,
// layer check, thumbnail. The opened project is a public return so later
// steps consume the parsed document instead of the path; the layer summary
// is recorded in the feedback.
func Pipeline() (*pipeline.Pipeline, error) {
	check, err := pipeline.NewStep("Project Validity Check",
		[]string{ArgProjectFilename}, CheckProjectFile)
	if err != nil {
		return nil, err
	}

	open, err := pipeline.NewStep("Opening Check",
		[]string{ArgProjectFilename}, OpenProject,
		pipeline.WithReturns("project"),
		pipeline.WithPublicReturns("project"))
	if err != nil {
		return nil, err
	}

	layers, err := pipeline.NewStep("Layer Validity Check",
		[]string{"project"}, CheckLayers,
		pipeline.WithReturns("layers_summary"),
		pipeline.WithOutputs("layers_summary"))
	if err != nil {
		return nil, err
	}

	thumbnail, err := pipeline.NewStep("Generate Thumbnail Image",
		[]string{"project", ArgThumbnailFilename}, GenerateThumbnail)
	if err != nil {
		return nil, err
	}

	return pipeline.New(check, open, layers, thumbnail)
}

// Funcs exposes the step callables under stable names for manifest binding.
func Funcs() manifest.Funcs {
	return manifest.Funcs{
		"check_project_file": CheckProjectFile,
		"open_project":       OpenProject,
		"check_layers":       CheckLayers,
		"generate_thumbnail": GenerateThumbnail,
	}
}
