package dawduction

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ReadProject parses a project from r, trying JSON first and YAML second,
// the same way either file extension may arrive from the host.
func ReadProject(r io.Reader) (Project, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Project{}, fmt.Errorf("ReadProject: %w", err)
	}
	var project Project
	if errJSON := json.Unmarshal(b, &project); errJSON != nil {
		if errYaml := yaml.Unmarshal(b, &project); errYaml != nil {
			return Project{}, fmt.Errorf("the project could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	for i := range project.Automation {
		project.Automation[i].Sort()
	}
	if err := project.Validate(); err != nil {
		return Project{}, fmt.Errorf("invalid project: %w", err)
	}
	return project, nil
}

// WriteProject serializes the project to w, as JSON if path has a .json
// extension and as YAML otherwise.
func WriteProject(w io.Writer, path string, project Project) error {
	var contents []byte
	var err error
	if filepath.Ext(path) == ".json" {
		contents, err = json.MarshalIndent(project, "", "  ")
	} else {
		contents, err = yaml.Marshal(project)
	}
	if err != nil {
		return fmt.Errorf("WriteProject: %w", err)
	}
	if _, err := w.Write(contents); err != nil {
		return fmt.Errorf("WriteProject: %w", err)
	}
	return nil
}
