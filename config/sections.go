package config

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed exclusive_sections.yaml
var exclusiveSectionsYAML []byte

// ExclusiveSections returns the UI sections reserved to the given client
// application. Unknown clients get none.
func ExclusiveSections(clientName string) ([]string, error) {
	return parseExclusiveSections(exclusiveSectionsYAML, clientName)
}

func parseExclusiveSections(raw []byte, clientName string) ([]string, error) {
	var byClient map[string][]string
	if err := yaml.Unmarshal(raw, &byClient); err != nil {
		return nil, fmt.Errorf("parse exclusive sections: %w", err)
	}
	sections, ok := byClient[clientName]
	if !ok {
		return []string{}, nil
	}
	return sections, nil
}
