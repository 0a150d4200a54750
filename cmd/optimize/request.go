package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stitts-dev/fanta-optimizer/internal/api/validation"
	"github.com/stitts-dev/fanta-optimizer/internal/optimizer"
)

// loadRequest reads a request file and runs it through the same validation as the HTTP API.
// YAML files are converted to JSON first so both formats share one schema.
func loadRequest(path string) (*optimizer.Request, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
	case ".yaml", ".yml":
		raw, err = yamlToJSON(raw)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported request file extension %q", ext)
	}

	return validation.ParseOptimizeRequest(raw)
}

func yamlToJSON(raw []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML request: %w", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML request: %w", err)
	}
	return data, nil
}
