package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mrlokans/airspace/internal/entities"
	"github.com/mrlokans/airspace/internal/metadata"
	"github.com/mrlokans/airspace/internal/storage"
	"github.com/paulmach/orb/geojson"
)

const stagingSuffix = ".tmp"

// Publisher replicates one payload and its metadata to every target over a
// single storage session.
type Publisher struct {
	client storage.Client
	staged bool
}

// NewPublisher creates a publisher. With staged set, each file is uploaded
// under a temporary name and renamed into place, so readers never observe a
// half-written file.
func NewPublisher(client storage.Client, staged bool) *Publisher {
	return &Publisher{
		client: client,
		staged: staged,
	}
}

// Publish serializes payload and metadata once and uploads the same bytes to
// each target in order. The first failure stops the chain: later targets are
// reported as skipped and earlier ones stay published.
func (p *Publisher) Publish(ctx context.Context, payload *geojson.FeatureCollection, md metadata.Metadata, targets []entities.PublishTarget) Result {
	result := Result{Targets: make([]TargetResult, len(targets))}
	for i, t := range targets {
		result.Targets[i] = TargetResult{Target: t, Status: StatusSkipped}
	}
	if len(targets) == 0 {
		return result
	}

	payloadBytes, metadataBytes, err := serialize(payload, md)
	if err != nil {
		failAll(&result, err)
		return result
	}
	result.PayloadBytes = len(payloadBytes)
	result.MetadataBytes = len(metadataBytes)

	session, err := p.client.Connect(ctx)
	if err != nil {
		log.Printf("[FTP] %v", err)
		failAll(&result, err)
		return result
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Printf("[FTP] Error closing connection: %v", err)
		}
	}()

	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			result.set(i, StatusFailed, err)
			skipRest(&result, i+1)
			break
		}

		log.Printf(">>> Writing result to %s", target)
		if err := p.publishTarget(session, target, payloadBytes, metadataBytes); err != nil {
			log.Printf("[FTP] Publishing to %s failed: %v", target.Directory, err)
			result.set(i, StatusFailed, err)
			skipRest(&result, i+1)
			break
		}
		result.set(i, StatusSuccess, nil)
	}

	return result
}

func (p *Publisher) publishTarget(session storage.Session, target entities.PublishTarget, payload, md []byte) error {
	if err := session.ChangeDir(target.Directory); err != nil {
		return err
	}
	if err := p.upload(session, target.PayloadFileName, payload); err != nil {
		return err
	}
	return p.upload(session, target.MetadataFileName, md)
}

func (p *Publisher) upload(session storage.Session, name string, data []byte) error {
	if !p.staged {
		return session.Upload(name, bytes.NewReader(data))
	}
	staging := name + stagingSuffix
	if err := session.Upload(staging, bytes.NewReader(data)); err != nil {
		return err
	}
	return session.Rename(staging, name)
}

func serialize(payload *geojson.FeatureCollection, md metadata.Metadata) ([]byte, []byte, error) {
	if payload == nil {
		return nil, nil, fmt.Errorf("serialize payload: nil feature collection")
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("serialize payload: %w", err)
	}
	metadataBytes, err := json.Marshal(md)
	if err != nil {
		return nil, nil, fmt.Errorf("serialize metadata: %w", err)
	}
	return payloadBytes, metadataBytes, nil
}

func failAll(result *Result, err error) {
	for i := range result.Targets {
		result.set(i, StatusFailed, err)
	}
}

func skipRest(result *Result, from int) {
	for i := from; i < len(result.Targets); i++ {
		result.set(i, StatusSkipped, ErrNotAttempted)
	}
}
