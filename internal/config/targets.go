package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/mrlokans/airspace/internal/entities"
	"gopkg.in/yaml.v3"
)

// Characters that cannot appear in a remote file name. Targets upload after
// changing into their directory, so a name must not carry a path.
var invalidFileNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// targetsFile is the YAML layout of TARGETS_FILE:
//
//	targets:
//	  - directory: /heatmap/airspacedata
//	  - directory: /tracemap/airspacedata
//	    payload_file_name: france.geojson
type targetsFile struct {
	Targets []entities.PublishTarget `yaml:"targets"`
}

// PublishTargets returns the configured targets. The YAML file wins over
// PUBLISH_DIRECTORIES when set; missing file names fall back to the defaults.
func (c *Config) PublishTargets() ([]entities.PublishTarget, error) {
	var targets []entities.PublishTarget

	if c.Publish.TargetsFile != "" {
		loaded, err := LoadTargets(c.Publish.TargetsFile)
		if err != nil {
			return nil, err
		}
		targets = loaded
	} else {
		for _, dir := range c.Publish.Directories {
			targets = append(targets, entities.PublishTarget{Directory: dir})
		}
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no publish targets configured")
	}

	for i := range targets {
		if targets[i].Directory == "" {
			return nil, fmt.Errorf("publish target %d has no directory", i)
		}
		if targets[i].PayloadFileName == "" {
			targets[i].PayloadFileName = c.Publish.PayloadFileName
		}
		if targets[i].MetadataFileName == "" {
			targets[i].MetadataFileName = c.Publish.MetadataFileName
		}
		for _, name := range []string{targets[i].PayloadFileName, targets[i].MetadataFileName} {
			if err := validateFileName(name); err != nil {
				return nil, fmt.Errorf("publish target %d: %w", i, err)
			}
		}
		if targets[i].PayloadFileName == targets[i].MetadataFileName {
			return nil, fmt.Errorf("publish target %d: payload and metadata share the name %q", i, targets[i].PayloadFileName)
		}
	}
	return targets, nil
}

// LoadTargets reads publish targets from a YAML file.
func LoadTargets(path string) ([]entities.PublishTarget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read targets file %s: %w", path, err)
	}

	var file targetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse targets YAML: %w", err)
	}
	return file.Targets, nil
}

func validateFileName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("invalid file name %q", name)
	}
	if invalidFileNameChars.MatchString(name) {
		return fmt.Errorf("file name %q contains invalid characters", name)
	}
	return nil
}
