package projectfile

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/systemstart/stepline/pkg/pipeline"
)

// Project is the opened project document: the metadata and layer entries
// later steps validate and render from.
type Project struct {
	Path    string
	Title   string
	Version string
	Layers  []Layer
}

// Layer is one map layer declared by the project document.
type Layer struct {
	ID         string `xml:"id"`
	Name       string `xml:"layername"`
	Datasource string `xml:"datasource"`
	Provider   string `xml:"provider"`
}

type projectDocument struct {
	XMLName xml.Name `xml:"qgis"`
	Version string   `xml:"version,attr"`
	Title   string   `xml:"title"`
	Layers  []Layer  `xml:"projectlayers>maplayer"`
}

// OpenProject reads and decodes a project file. Plain .qgs files are read
// directly; .qgz archives are zip files holding the .qgs document as a
// member.
func OpenProject(path string) (*Project, error) {
	slog.Info("opening project file", "path", path)

	data, err := readProjectDocument(path)
	if err != nil {
		return nil, invalidProject(path, err)
	}

	var doc projectDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, invalidProject(path, err)
	}

	return &Project{
		Path:    path,
		Title:   doc.Title,
		Version: doc.Version,
		Layers:  doc.Layers,
	}, nil
}

func invalidProject(path string, err error) error {
	return pipeline.NewError(pipeline.KindInvalidXML,
		"Project file {{ .project_filename | quote }} is not a readable project document:\n{{ .error }}",
		map[string]any{
			"project_filename": path,
			"error":            err.Error(),
		})
}

func readProjectDocument(path string) ([]byte, error) {
	if filepath.Ext(path) != ".qgz" {
		return os.ReadFile(path)
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer r.Close()

	for _, member := range r.File {
		if !strings.HasSuffix(member.Name, ".qgs") {
			continue
		}
		f, err := member.Open()
		if err != nil {
			return nil, fmt.Errorf("opening archive member %s: %w", member.Name, err)
		}
		defer f.Close()
		return io.ReadAll(f)
	}

	return nil, fmt.Errorf("archive contains no .qgs document")
}
