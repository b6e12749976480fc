package projectfile

import (
	"encoding/xml"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/systemstart/stepline/pkg/pipeline"
)

// allowedPatterns lists the file name patterns a project file may match.
var allowedPatterns = []string{"*.qgs", "*.qgz"}

// CheckProjectFile verifies the project file exists, carries a known
// extension, and (for plain XML projects) is a well-formed XML document.
func CheckProjectFile(path string) error {
	slog.Info("checking project file validity", "path", path)

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return pipeline.NewError(pipeline.KindNotFound,
			`Project file {{ .project_filename | quote }} does not exist`,
			map[string]any{"project_filename": path})
	}

	if !matchesAllowed(filepath.Base(path)) {
		return pipeline.NewError(pipeline.KindBadExtension,
			`Project file {{ .project_filename | quote }} has unknown file extension {{ .extension | quote }}`,
			map[string]any{
				"project_filename": path,
				"extension":        filepath.Ext(path),
			})
	}

	if filepath.Ext(path) == ".qgs" {
		if err := checkWellFormedXML(path); err != nil {
			return pipeline.NewError(pipeline.KindInvalidXML,
				"Project file {{ .project_filename | quote }} is an invalid XML document:\n{{ .xml_error }}",
				map[string]any{
					"project_filename": path,
					"xml_error":        err.Error(),
				})
		}
	}

	return nil
}

func matchesAllowed(name string) bool {
	for _, pattern := range allowedPatterns {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func checkWellFormedXML(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	for {
		if _, err := dec.Token(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
