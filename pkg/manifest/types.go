package manifest

// Manifest is the YAML pipeline definition format: the argument names the
// caller seeds the run with, followed by the ordered step list.
type Manifest struct {
	Arguments []string     `yaml:"arguments"`
	Steps     []StepConfig `yaml:"steps"`

	// Set by the loader, not from YAML.
	FilePath string `yaml:"-"`
}

// StepConfig defines a single step within a manifest. Call names a
// registered Go callable; Args, Returns, Outputs and Public carry the same
// meaning as the pipeline.Step binding contract.
type StepConfig struct {
	Name    string   `yaml:"name"`
	Call    string   `yaml:"call"`
	Args    []string `yaml:"args,omitempty"`
	Returns []string `yaml:"returns,omitempty"`
	Outputs []string `yaml:"outputs,omitempty"`
	Public  []string `yaml:"public,omitempty"`
}
