package converters

import (
	"context"
	"log"

	"github.com/mrlokans/airspace/internal/openair"
	"github.com/paulmach/orb/geojson"
)

// LocalConverter runs the in-process OpenAir parser.
type LocalConverter struct {
	tempDir string
	parser  *openair.Parser
}

// Compile-time check
var _ Converter = (*LocalConverter)(nil)

func NewLocalConverter(tempDir string, skipFailures bool) *LocalConverter {
	return &LocalConverter{
		tempDir: tempDir,
		parser:  openair.NewParser(skipFailures),
	}
}

func (c *LocalConverter) Name() string { return "local" }

func (c *LocalConverter) Convert(ctx context.Context, raw string) (*geojson.FeatureCollection, error) {
	log.Printf("Parsing OpenAir file with local parser...")

	if err := ctx.Err(); err != nil {
		return nil, &ConversionError{Backend: c.Name(), Err: err}
	}

	var fc *geojson.FeatureCollection
	err := withTempFile(c.tempDir, raw, func(path string) error {
		airspaces, err := c.parser.ParseFile(path)
		if err != nil {
			return err
		}
		fc = openair.ToFeatureCollection(airspaces)
		return nil
	})
	if err != nil {
		return nil, &ConversionError{Backend: c.Name(), Err: err}
	}

	log.Printf("Local parser produced %d airspaces", len(fc.Features))
	return fc, nil
}
