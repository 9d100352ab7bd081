package feed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadList reads a sequence of strings from a JSON or YAML file. A missing
// file is an empty list.
func LoadList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var list []string
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if list == nil {
		list = []string{}
	}
	return list, nil
}
