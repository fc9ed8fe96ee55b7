package parser

import (
	"fmt"

	"github.com/desertwitch/swupd/internal/operation"
	"gopkg.in/yaml.v3"
)

// Configuration is a successfully parsed update description.
type Configuration struct {
	Product      string
	Platform     string
	ResourceURIs []string
	BackupPath   string

	Validate []operation.Operation
	Backup   []operation.Operation
	Update   []operation.Operation
}

// Plan is the serializable summary of a [Configuration].
type Plan struct {
	Product      string   `yaml:"product"`
	Platform     string   `yaml:"platform"`
	ResourceURIs []string `yaml:"resource_uris,omitempty"`
	BackupPath   string   `yaml:"backup_path,omitempty"`
	Validate     []Step   `yaml:"validate,omitempty"`
	Backup       []Step   `yaml:"backup,omitempty"`
	Update       []Step   `yaml:"update,omitempty"`
}

// Step is one operation of a [Plan].
type Step struct {
	Action    string         `yaml:"action"`
	Resources []StepResource `yaml:"resources"`
}

type StepResource struct {
	Path string `yaml:"path"`
	Type string `yaml:"type"`
	Root string `yaml:"root"`
}

// Summary returns the [Plan] of the configuration.
func (c *Configuration) Summary() Plan {
	return Plan{
		Product:      c.Product,
		Platform:     c.Platform,
		ResourceURIs: c.ResourceURIs,
		BackupPath:   c.BackupPath,
		Validate:     steps(c.Validate),
		Backup:       steps(c.Backup),
		Update:       steps(c.Update),
	}
}

// MarshalPlan returns the YAML encoding of the configuration's [Plan].
func (c *Configuration) MarshalPlan() ([]byte, error) {
	out, err := yaml.Marshal(c.Summary())
	if err != nil {
		return nil, fmt.Errorf("(parser) failed to marshal plan: %w", err)
	}

	return out, nil
}

// Operations returns the number of operations in all lists.
func (c *Configuration) Operations() int {
	return len(c.Validate) + len(c.Backup) + len(c.Update)
}

func steps(ops []operation.Operation) []Step {
	if len(ops) == 0 {
		return nil
	}

	out := make([]Step, 0, len(ops))

	for _, op := range ops {
		s := Step{Action: action(op)}
		for _, r := range op.Resources() {
			s.Resources = append(s.Resources, StepResource{
				Path: r.Path(),
				Type: r.Type().String(),
				Root: r.Root().String(),
			})
		}
		out = append(out, s)
	}

	return out
}

func action(op operation.Operation) string {
	switch op.(type) {
	case *operation.Copy:
		return "copy"
	case *operation.Remove:
		return "remove"
	case *operation.Expect:
		return "expect"
	default:
		return "unknown"
	}
}
