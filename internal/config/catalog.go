package config

import (
	"fmt"
	"os"

	"karigar/internal/models"

	yamlv2 "gopkg.in/yaml.v2"
)

type catalogFile struct {
	Services []models.ServiceCategory `yaml:"services"`
}

// LoadCatalog reads the service catalog file. An empty path falls back to
// the built-in trade list.
func LoadCatalog(path string) ([]models.ServiceCategory, error) {
	if path == "" {
		return models.ServiceTypes, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file catalogFile
	if err := yamlv2.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	if len(file.Services) == 0 {
		return models.ServiceTypes, nil
	}

	seen := make(map[string]bool)
	for _, svc := range file.Services {
		if svc.Name == "" {
			return nil, fmt.Errorf("catalog entry with empty name")
		}
		if seen[svc.Name] {
			return nil, fmt.Errorf("duplicate catalog entry: %s", svc.Name)
		}
		seen[svc.Name] = true
	}

	return file.Services, nil
}
