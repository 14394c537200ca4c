package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Manifest is a JSON catalog describing many PFB files as one dataset:
//
//	{
//	  "name": "run42",
//	  "attributes": {"model": "richards"},
//	  "variables": [
//	    {"name": "pressure", "files": ["press.0.pfb", "press.1.pfb"],
//	     "time-varying": true}
//	  ]
//	}
//
// Relative file paths resolve against the manifest's directory.
type Manifest struct {
	Name      string             `mapstructure:"name" validate:"required"`
	Attrs     map[string]any     `mapstructure:"attributes"`
	Variables []ManifestVariable `mapstructure:"variables" validate:"required,min=1,dive"`
}

type ManifestVariable struct {
	Name        string   `mapstructure:"name" validate:"required"`
	Files       []string `mapstructure:"files" validate:"required,min=1,dive,required"`
	TimeVarying bool     `mapstructure:"time-varying"`
}

var validate = validator.New()

// LoadManifest parses and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}

	var m Manifest
	if err := mapstructure.Decode(doc, &m); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	if err := validate.Struct(&m); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range m.Variables {
		for j, f := range m.Variables[i].Files {
			if !filepath.IsAbs(f) {
				m.Variables[i].Files[j] = filepath.Join(dir, f)
			}
		}
	}
	return &m, nil
}
