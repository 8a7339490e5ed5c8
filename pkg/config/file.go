package config

import (
	"fmt"
	"os"

	"github.com/hdwhdw/pathmap/pkg/pathutil"
	"gopkg.in/yaml.v3"
)

// RuleFile is the on-disk YAML form of a mapping rule
type RuleFile struct {
	LogicalBase      string `yaml:"logicalBase"`
	LogicalSeparator string `yaml:"logicalSeparator"`
	FSBase           string `yaml:"fsBase"`
	FSSeparator      string `yaml:"fsSeparator,omitempty"`
	FileExtension    string `yaml:"fileExtension,omitempty"`
}

// Rule converts the file contents into a mapping rule
func (f RuleFile) Rule() pathutil.Rule {
	return pathutil.Rule{
		LogicalBase:      f.LogicalBase,
		LogicalSeparator: f.LogicalSeparator,
		FSBase:           f.FSBase,
		FSSeparator:      f.FSSeparator,
		FileExtension:    f.FileExtension,
	}
}

// ParseRule decodes a YAML rule document
func ParseRule(data []byte) (pathutil.Rule, error) {
	var f RuleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return pathutil.Rule{}, fmt.Errorf("failed to parse rule: %w", err)
	}
	return f.Rule(), nil
}

// LoadRuleFile reads a mapping rule from a YAML file
func LoadRuleFile(path string) (pathutil.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pathutil.Rule{}, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}

	rule, err := ParseRule(data)
	if err != nil {
		return pathutil.Rule{}, fmt.Errorf("%s: %w", path, err)
	}
	return rule, nil
}
