package metadata

import (
	"encoding/json"
	"strings"
	"time"
)

// SourceMarker introduces the provenance line of the netcoupe OpenAir file:
//
//	* SOURCE: AIP FRANCE 2019/08/15       *
const SourceMarker = "SOURCE:"

// DateLayout is the timestamp format consumed by the heatmap and tracemap apps.
const DateLayout = "02/01/2006 15:04:05"

// Metadata describes where a published payload comes from. It is built once
// per run and never mutated afterwards.
type Metadata struct {
	GeneratedAt       time.Time
	SourceURL         string
	SourceDescription string
}

type wireMetadata struct {
	Date   string `json:"date"`
	Source string `json:"source"`
}

// Source is the attribution string written to the sidecar, "<url>  --> <description>".
func (m Metadata) Source() string {
	return m.SourceURL + "  --> " + m.SourceDescription
}

// MarshalJSON keeps the sidecar layout {"date": ..., "source": ...} expected downstream.
func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireMetadata{
		Date:   m.GeneratedAt.Format(DateLayout),
		Source: m.Source(),
	})
}

// Extractor builds Metadata from raw OpenAir text.
type Extractor struct {
	now func() time.Time
}

func NewExtractor() *Extractor {
	return &Extractor{now: time.Now}
}

// Extract never fails: a missing marker yields an empty description.
func (e *Extractor) Extract(raw, sourceURL string) Metadata {
	return Metadata{
		GeneratedAt:       e.now(),
		SourceURL:         sourceURL,
		SourceDescription: SourceDescription(raw),
	}
}

// SourceDescription returns the trimmed text between the first SOURCE: marker
// and the next '*'. Without a closing '*' the rest of the line is used.
func SourceDescription(raw string) string {
	start := strings.Index(raw, SourceMarker)
	if start < 0 {
		return ""
	}
	rest := raw[start+len(SourceMarker):]

	end := strings.IndexByte(rest, '*')
	if end < 0 {
		end = strings.IndexAny(rest, "\r\n")
	}
	if end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
