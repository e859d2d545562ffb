package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mrlokans/airspace/internal/converters"
	"github.com/mrlokans/airspace/internal/entities"
	"github.com/mrlokans/airspace/internal/metadata"
	"github.com/mrlokans/airspace/internal/publisher"
	"github.com/mrlokans/airspace/internal/source"
	"github.com/mrlokans/airspace/internal/storage/providers/local"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOpenAir = `* SOURCE: AIP FRANCE 2019/08/15 *
AC D
AN CTR TEST
AH 3500FT AMSL
AL SFC
DP 45:58:30 N 006:02:00 E
DP 45:58:30 N 006:12:00 E
DP 45:52:00 N 006:12:00 E
`

type stubFetcher struct {
	body  string
	err   error
	calls int
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.calls++
	return f.body, f.err
}

type stubConverter struct {
	fc    *geojson.FeatureCollection
	err   error
	calls int
	seen  string
}

func (c *stubConverter) Name() string { return "stub" }

func (c *stubConverter) Convert(ctx context.Context, raw string) (*geojson.FeatureCollection, error) {
	c.calls++
	c.seen = raw
	return c.fc, c.err
}

type stubPublisher struct {
	result publisher.Result
	calls  int
	md     metadata.Metadata
}

func (p *stubPublisher) Publish(ctx context.Context, payload *geojson.FeatureCollection, md metadata.Metadata, targets []entities.PublishTarget) publisher.Result {
	p.calls++
	p.md = md
	return p.result
}

func twoTargets() []entities.PublishTarget {
	return []entities.PublishTarget{
		{Directory: "/heatmap/airspacedata", PayloadFileName: "a.geojson", MetadataFileName: "a.json"},
		{Directory: "/tracemap/airspacedata", PayloadFileName: "a.geojson", MetadataFileName: "a.json"},
	}
}

func resultWith(statuses ...publisher.Status) publisher.Result {
	result := publisher.Result{}
	for i, status := range statuses {
		tr := publisher.TargetResult{Target: twoTargets()[i], Status: status}
		if status == publisher.StatusFailed {
			tr.Err = errors.New("550 failed")
			tr.Error = tr.Err.Error()
		}
		result.Targets = append(result.Targets, tr)
	}
	return result
}

func newStubPipeline(f *stubFetcher, c *stubConverter, p *stubPublisher) *Pipeline {
	return New("https://example.org/france.txt", twoTargets(), f, metadata.NewExtractor(), c, p)
}

func TestPipelineRunSuccess(t *testing.T) {
	fetcher := &stubFetcher{body: sampleOpenAir}
	converter := &stubConverter{fc: geojson.NewFeatureCollection().Append(geojson.NewFeature(nil))}
	pub := &stubPublisher{result: resultWith(publisher.StatusSuccess, publisher.StatusSuccess)}

	summary, err := newStubPipeline(fetcher, converter, pub).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, summary.Status)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, "stub", summary.Backend)
	assert.Equal(t, 1, summary.Features)
	require.NotNil(t, summary.Metadata)
	assert.Equal(t, "AIP FRANCE 2019/08/15", summary.Metadata.SourceDescription)
	assert.Equal(t, sampleOpenAir, converter.seen, "converter and extractor share the same raw text")
	assert.Equal(t, *summary.Metadata, pub.md, "published metadata comes from this run")
	assert.True(t, strings.HasPrefix(summary.Message(), ">>> OK :{"))
	assert.False(t, summary.FinishedAt.Before(summary.StartedAt))
}

func TestPipelineFetchFailureStopsRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	converter := &stubConverter{}
	pub := &stubPublisher{}
	p := New(server.URL, twoTargets(), source.NewClient(time.Second), metadata.NewExtractor(), converter, pub)

	summary, err := p.Run(context.Background())

	var fetchErr *source.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)
	assert.Equal(t, 0, converter.calls, "no conversion attempted")
	assert.Equal(t, 0, pub.calls, "no publish attempted")

	assert.Equal(t, StatusFailed, summary.Status)
	assert.Equal(t, StageFetch, summary.FailedAt)
	assert.Nil(t, summary.Metadata)
	assert.True(t, strings.HasPrefix(summary.Message(), ">>> FAILED :"))
}

func TestPipelineConversionFailureStopsRun(t *testing.T) {
	fetcher := &stubFetcher{body: sampleOpenAir}
	converter := &stubConverter{err: &converters.ConversionError{Backend: "stub", Err: errors.New("bad record")}}
	pub := &stubPublisher{}

	summary, err := newStubPipeline(fetcher, converter, pub).Run(context.Background())

	var convErr *converters.ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, 0, pub.calls)
	assert.Equal(t, StatusFailed, summary.Status)
	assert.Equal(t, StageConvert, summary.FailedAt)
	assert.NotNil(t, summary.Metadata, "metadata extraction never aborts a run")
}

func TestPipelinePartialPublish(t *testing.T) {
	fetcher := &stubFetcher{body: sampleOpenAir}
	converter := &stubConverter{fc: geojson.NewFeatureCollection()}
	pub := &stubPublisher{result: resultWith(publisher.StatusSuccess, publisher.StatusFailed)}

	summary, err := newStubPipeline(fetcher, converter, pub).Run(context.Background())

	var pubErr *publisher.PublishError
	require.True(t, errors.As(err, &pubErr))
	assert.Equal(t, StatusPartial, summary.Status)
	assert.Equal(t, StagePublish, summary.FailedAt)
	require.NotNil(t, summary.Publish)
	assert.Equal(t, publisher.StatusSuccess, summary.Publish.Targets[0].Status)
	assert.Equal(t, publisher.StatusFailed, summary.Publish.Targets[1].Status)
	assert.True(t, strings.HasPrefix(summary.Message(), ">>> PARTIAL :{"))
}

func TestPipelinePublishNothing(t *testing.T) {
	fetcher := &stubFetcher{body: sampleOpenAir}
	converter := &stubConverter{fc: geojson.NewFeatureCollection()}
	pub := &stubPublisher{result: resultWith(publisher.StatusFailed, publisher.StatusFailed)}

	summary, err := newStubPipeline(fetcher, converter, pub).Run(context.Background())

	assert.Error(t, err)
	assert.Equal(t, StatusFailed, summary.Status)
	assert.Equal(t, 0, summary.Publish.Succeeded())
}

func TestPipelineRunsAreIndependent(t *testing.T) {
	fetcher := &stubFetcher{body: "* SOURCE: FIRST *"}
	converter := &stubConverter{fc: geojson.NewFeatureCollection()}
	pub := &stubPublisher{result: resultWith(publisher.StatusSuccess)}
	p := newStubPipeline(fetcher, converter, pub)

	first, err := p.Run(context.Background())
	require.NoError(t, err)

	fetcher.body = "* SOURCE: SECOND *"
	second, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "FIRST", first.Metadata.SourceDescription)
	assert.Equal(t, "SECOND", second.Metadata.SourceDescription)
	assert.Equal(t, "SECOND", pub.md.SourceDescription)
	assert.NotEqual(t, first.RunID, second.RunID)
}

// End to end: HTTP upstream, local parser, filesystem storage.
func TestPipelineEndToEnd(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleOpenAir))
	}))
	defer upstream.Close()

	root := t.TempDir()
	targets := twoTargets()
	p := New(
		upstream.URL,
		targets,
		source.NewClient(time.Second),
		metadata.NewExtractor(),
		converters.NewLocalConverter(t.TempDir(), false),
		publisher.NewPublisher(local.NewClient(root), true),
	)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, summary.Status)
	assert.Equal(t, 1, summary.Features)

	var published [][]byte
	for _, target := range targets {
		payload, err := os.ReadFile(filepath.Join(root, target.Directory, target.PayloadFileName))
		require.NoError(t, err)
		published = append(published, payload)

		md, err := os.ReadFile(filepath.Join(root, target.Directory, target.MetadataFileName))
		require.NoError(t, err)

		var sidecar map[string]string
		require.NoError(t, json.Unmarshal(md, &sidecar))
		assert.Equal(t, upstream.URL+"  --> AIP FRANCE 2019/08/15", sidecar["source"])
	}
	assert.Equal(t, published[0], published[1])

	fc, err := geojson.UnmarshalFeatureCollection(published[0])
	require.NoError(t, err)
	assert.Equal(t, "CTR TEST", fc.Features[0].Properties["name"])
}

type recordingObserver struct {
	mu       sync.Mutex
	statuses []RunStatus
}

func (o *recordingObserver) ObserveRun(summary *Summary, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, summary.Status)
}

type recordingAuditor struct {
	saved []any
}

func (a *recordingAuditor) SaveJSON(data any) (string, error) {
	a.saved = append(a.saved, data)
	return "run.json", nil
}

// blockingFetcher holds the run open until released.
type blockingFetcher struct {
	started chan struct{}
	release chan struct{}
}

func (f *blockingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	close(f.started)
	<-f.release
	return sampleOpenAir, nil
}

func TestRunnerRejectsOverlappingRuns(t *testing.T) {
	fetcher := &blockingFetcher{started: make(chan struct{}), release: make(chan struct{})}
	converter := &stubConverter{fc: geojson.NewFeatureCollection()}
	pub := &stubPublisher{result: resultWith(publisher.StatusSuccess)}
	p := New("https://example.org/france.txt", twoTargets()[:1], fetcher, metadata.NewExtractor(), converter, pub)

	observer := &recordingObserver{}
	auditor := &recordingAuditor{}
	runner := NewRunner(p, auditor, observer)

	done := make(chan error, 1)
	go func() {
		_, err := runner.Run(context.Background())
		done <- err
	}()

	<-fetcher.started
	assert.True(t, runner.IsRunning())

	summary, err := runner.Run(context.Background())
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(fetcher.release)
	require.NoError(t, <-done)

	assert.False(t, runner.IsRunning())
	require.NotNil(t, runner.Last())
	assert.Equal(t, StatusSuccess, runner.Last().Status)
	assert.Equal(t, []RunStatus{StatusSuccess}, observer.statuses)
	assert.Len(t, auditor.saved, 1)
}

func TestRunnerRecordsFailedRuns(t *testing.T) {
	fetcher := &stubFetcher{err: &source.FetchError{URL: "x", StatusCode: 500}}
	p := newStubPipeline(fetcher, &stubConverter{}, &stubPublisher{})

	observer := &recordingObserver{}
	runner := NewRunner(p, nil, observer)

	_, err := runner.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StatusFailed, runner.Last().Status)
	assert.Equal(t, []RunStatus{StatusFailed}, observer.statuses)
}
