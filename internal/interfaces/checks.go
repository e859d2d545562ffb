package interfaces

// Compile-time interface implementation checks.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/airspace/internal/audit"
	"github.com/mrlokans/airspace/internal/converters"
	"github.com/mrlokans/airspace/internal/http"
	"github.com/mrlokans/airspace/internal/metadata"
	"github.com/mrlokans/airspace/internal/metrics"
	"github.com/mrlokans/airspace/internal/pipeline"
	"github.com/mrlokans/airspace/internal/publisher"
	"github.com/mrlokans/airspace/internal/scheduler"
	"github.com/mrlokans/airspace/internal/source"
	"github.com/mrlokans/airspace/internal/storage"
	"github.com/mrlokans/airspace/internal/storage/providers/ftp"
	"github.com/mrlokans/airspace/internal/storage/providers/local"
)

// =============================================================================
// Pipeline stages
// =============================================================================

var _ pipeline.Fetcher = (*source.Client)(nil)
var _ pipeline.MetadataExtractor = (*metadata.Extractor)(nil)
var _ pipeline.Publisher = (*publisher.Publisher)(nil)

var _ converters.Converter = (*converters.LocalConverter)(nil)
var _ converters.Converter = (*converters.RemoteConverter)(nil)

// =============================================================================
// Storage providers
// =============================================================================

var _ storage.Client = (*ftp.Client)(nil)
var _ storage.Client = (*local.Client)(nil)

// =============================================================================
// Run observers
// =============================================================================

var _ pipeline.Observer = (*metrics.Metrics)(nil)
var _ pipeline.Auditor = (*audit.Auditor)(nil)
var _ scheduler.AuditCleaner = (*audit.Auditor)(nil)

// =============================================================================
// Runner consumers
// =============================================================================

var _ scheduler.PipelineRunner = (*pipeline.Runner)(nil)
var _ http.PipelineRunner = (*pipeline.Runner)(nil)
var _ http.SyncScheduler = (*scheduler.AirspaceSyncScheduler)(nil)
