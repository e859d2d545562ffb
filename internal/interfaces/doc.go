// Package interfaces documents the extension points of the airspace publisher.
//
// # Interface Categories
//
// ## Pipeline stages
//
//   - Fetcher: downloads the raw OpenAir text (internal/pipeline/pipeline.go)
//   - MetadataExtractor: provenance sidecar from the raw text (internal/pipeline/pipeline.go)
//   - Converter: OpenAir text to GeoJSON (internal/converters/converter.go)
//   - Publisher: replication to every target (internal/pipeline/pipeline.go)
//
// ## Storage
//
//   - storage.Client / storage.Session: one connection per publish
//     (internal/storage/client.go), implemented for FTP and the local filesystem
//
// ## Run observers
//
//   - Observer: notified after every run, e.g. Prometheus metrics (internal/pipeline/runner.go)
//   - Auditor: persists run summaries (internal/pipeline/runner.go)
//
// # Adding a New Converter Backend
//
//  1. Implement Converter in internal/converters/
//
//     type OgrConverter struct {
//         binary  string
//         tempDir string
//     }
//
//     func (c *OgrConverter) Name() string { return "ogr" }
//     func (c *OgrConverter) Convert(ctx context.Context, raw string) (*geojson.FeatureCollection, error)
//
//  2. Add a config.Backend value and select it in converters.New
//
//  3. Add a compile-time check to checks.go
//
// # Adding a New Storage Provider
//
//  1. Create a sub-package: internal/storage/providers/sftp/
//
//  2. Implement storage.Client returning a storage.Session that supports
//     ChangeDir, Upload, Rename and Close
//
//  3. Build it in entrypoint.NewStorageClient
//
// # Compile-Time Interface Checks
//
// Implementations are checked at compile time:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go.
package interfaces
