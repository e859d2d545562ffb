package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mrlokans/airspace/internal/converters"
	"github.com/mrlokans/airspace/internal/entities"
	"github.com/mrlokans/airspace/internal/metadata"
	"github.com/mrlokans/airspace/internal/publisher"
	"github.com/paulmach/orb/geojson"
)

// Fetcher retrieves the raw OpenAir text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// MetadataExtractor builds provenance metadata from the raw text. It never fails.
type MetadataExtractor interface {
	Extract(raw, sourceURL string) metadata.Metadata
}

// Publisher replicates the payload and metadata to every target.
type Publisher interface {
	Publish(ctx context.Context, payload *geojson.FeatureCollection, md metadata.Metadata, targets []entities.PublishTarget) publisher.Result
}

// Pipeline runs fetch → extract → convert → publish. It keeps no state
// between runs; metadata travels from extraction to publication as a value.
type Pipeline struct {
	sourceURL string
	targets   []entities.PublishTarget
	fetcher   Fetcher
	extractor MetadataExtractor
	converter converters.Converter
	publisher Publisher
	now       func() time.Time
}

func New(sourceURL string, targets []entities.PublishTarget, fetcher Fetcher, extractor MetadataExtractor, converter converters.Converter, publisher Publisher) *Pipeline {
	return &Pipeline{
		sourceURL: sourceURL,
		targets:   targets,
		fetcher:   fetcher,
		extractor: extractor,
		converter: converter,
		publisher: publisher,
		now:       time.Now,
	}
}

// Run performs one full cycle. Fetch and conversion failures abort the run and
// are returned as *source.FetchError and *converters.ConversionError. A publish
// failure still yields a complete summary alongside a *publisher.PublishError.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		RunID:     uuid.New().String(),
		StartedAt: p.now(),
		SourceURL: p.sourceURL,
		Backend:   p.converter.Name(),
	}
	log.Printf(">>> OpenAir to GeoJSON converter (run %s)", summary.RunID)

	raw, err := p.fetcher.Fetch(ctx, p.sourceURL)
	if err != nil {
		return p.fail(summary, StageFetch, err)
	}

	md := p.extractor.Extract(raw, p.sourceURL)
	summary.Metadata = &md
	log.Printf("Source: %s", md.Source())

	payload, err := p.converter.Convert(ctx, raw)
	if err != nil {
		return p.fail(summary, StageConvert, err)
	}
	summary.Features = len(payload.Features)

	result := p.publisher.Publish(ctx, payload, md, p.targets)
	summary.Publish = &result
	summary.FinishedAt = p.now()

	if err := result.Err(); err != nil {
		summary.Status = StatusFailed
		if result.Partial() {
			summary.Status = StatusPartial
		}
		summary.FailedAt = StagePublish
		summary.Error = err.Error()
		log.Printf("Run %s %s after %v: %v", summary.RunID, summary.Status, summary.Duration().Round(time.Millisecond), err)
		return summary, err
	}

	summary.Status = StatusSuccess
	log.Printf("Run %s published %d airspaces to %d targets in %v",
		summary.RunID, summary.Features, result.Succeeded(), summary.Duration().Round(time.Millisecond))
	return summary, nil
}

func (p *Pipeline) fail(summary *Summary, stage Stage, err error) (*Summary, error) {
	summary.FinishedAt = p.now()
	summary.Status = StatusFailed
	summary.FailedAt = stage
	summary.Error = err.Error()
	log.Printf("Run %s failed at %s: %v", summary.RunID, stage, err)
	return summary, fmt.Errorf("%s: %w", stage, err)
}
