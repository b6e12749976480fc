package projectfile

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/systemstart/stepline/pkg/manifest"
	"github.com/systemstart/stepline/pkg/pipeline"
)

func setupValidProject(t *testing.T) (projectPath, thumbnailPath string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "roads.gpkg"), []byte("data"), 0o600); err != nil {
		t.Fatal(err)
	}
	return writeProjectFile(t, dir, "site.qgs", sampleProject),
		filepath.Join(dir, "thumbnail.png")
}

func TestGenerateThumbnail(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "thumbs", "site.png")

	p := &Project{Path: filepath.Join(dir, "site.qgs")}
	if err := GenerateThumbnail(p, out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output must be a decodable PNG: %v", err)
	}
	if img.Bounds().Dx() != thumbnailSize || img.Bounds().Dy() != thumbnailSize {
		t.Errorf("unexpected dimensions: %v", img.Bounds())
	}
}

func TestPipeline_AllStepsSucceed(t *testing.T) {
	projectPath, thumbnailPath := setupValidProject(t)

	p, err := Pipeline()
	if err != nil {
		t.Fatalf("building pipeline: %v", err)
	}

	fb, err := p.Run(map[string]any{
		ArgProjectFilename:   projectPath,
		ArgThumbnailFilename: thumbnailPath,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fb.Steps) != 4 {
		t.Fatalf("expected 4 records, got %d", len(fb.Steps))
	}
	for _, rec := range fb.Steps {
		if rec.Stage != pipeline.StageSucceeded {
			t.Errorf("step %q: %q", rec.Name, rec.Stage)
		}
	}
	if _, ok := fb.Steps[2].Outputs["layers_summary"]; !ok {
		t.Error("layer check should record layers_summary")
	}
	if _, err := os.Stat(thumbnailPath); err != nil {
		t.Error("thumbnail artifact should exist")
	}
}

func TestPipeline_MissingProjectFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "x.qgs")

	p, err := Pipeline()
	if err != nil {
		t.Fatalf("building pipeline: %v", err)
	}

	fb, err := p.Run(map[string]any{
		ArgProjectFilename:   missing,
		ArgThumbnailFilename: filepath.Join(t.TempDir(), "thumbnail.png"),
	})
	if err != nil {
		t.Fatalf("domain failures must stay in the feedback: %v", err)
	}

	if fb.Steps[0].Stage != pipeline.StageStarted {
		t.Errorf("failing step stage: %q", fb.Steps[0].Stage)
	}
	for _, rec := range fb.Steps[1:] {
		if rec.Stage != pipeline.StageNotStarted {
			t.Errorf("step %q should be unreached: %q", rec.Name, rec.Stage)
		}
	}
	if !strings.Contains(fb.Error, missing) {
		t.Errorf("error should name the file: %q", fb.Error)
	}
	if len(fb.ErrorStack) == 0 {
		t.Error("error stack should be captured")
	}
}

func TestFuncs_BindThroughManifest(t *testing.T) {
	projectPath, thumbnailPath := setupValidProject(t)

	m := &manifest.Manifest{
		Arguments: []string{ArgProjectFilename, ArgThumbnailFilename},
		Steps: []manifest.StepConfig{
			{Name: "check", Call: "check_project_file", Args: []string{ArgProjectFilename}},
			{
				Name: "open", Call: "open_project",
				Args:    []string{ArgProjectFilename},
				Returns: []string{"project"},
				Public:  []string{"project"},
			},
			{
				Name: "thumbnail", Call: "generate_thumbnail",
				Args: []string{"project", ArgThumbnailFilename},
			},
		},
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("manifest should be valid: %v", err)
	}

	p, err := manifest.Build(m, Funcs())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	fb, err := p.Run(map[string]any{
		ArgProjectFilename:   projectPath,
		ArgThumbnailFilename: thumbnailPath,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if fb.Error != "" {
		t.Fatalf("unexpected feedback error: %q", fb.Error)
	}
	if _, err := os.Stat(thumbnailPath); err != nil {
		t.Error("thumbnail artifact should exist")
	}
}
