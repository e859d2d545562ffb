package converters

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mrlokans/airspace/internal/config"
	"github.com/paulmach/orb/geojson"
)

// ErrUnknownBackend is returned by New for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown converter backend")

// Converter transforms OpenAir text into a GeoJSON feature collection.
//
// Implementations:
//   - LocalConverter (local.go) - in-process OpenAir parser
//   - RemoteConverter (remote.go) - remote conversion service
type Converter interface {
	Convert(ctx context.Context, raw string) (*geojson.FeatureCollection, error)
	// Name identifies the backend in logs, errors and metrics.
	Name() string
}

// ConversionError carries the backend-reported cause of a failed conversion.
type ConversionError struct {
	Backend string
	Err     error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s conversion failed: %v", e.Backend, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// New builds the backend selected in configuration.
func New(cfg config.Converter) (Converter, error) {
	switch cfg.Backend {
	case config.BackendLocal, "":
		return NewLocalConverter(cfg.TempDir, cfg.SkipFailures), nil
	case config.BackendRemote:
		if cfg.URL == "" {
			return nil, fmt.Errorf("remote converter requires CONVERTER_URL")
		}
		return NewRemoteConverter(cfg.URL, cfg.TempDir, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// withTempFile writes raw to a fresh temporary file, hands its path to fn and
// removes the file afterwards whatever fn returns.
func withTempFile(dir, raw string, fn func(path string) error) error {
	f, err := os.CreateTemp(dir, "openair-*.txt")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(raw); err != nil {
		f.Close()
		return fmt.Errorf("writing temporary file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temporary file: %w", err)
	}

	return fn(path)
}
