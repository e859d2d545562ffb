package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mrlokans/airspace/internal/auth"
	"github.com/mrlokans/airspace/internal/config"
	"github.com/mrlokans/airspace/internal/converters"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const openAirSample = `* SOURCE: AIP FRANCE 2019/08/15 *
AC D
AN CTR TEST
AH 2000FT AMSL
AL SFC
DP 45:00:00 N 006:00:00 E
DP 45:10:00 N 006:00:00 E
DP 45:10:00 N 006:10:00 E
`

func testConfig(t *testing.T, sourceURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Source:    config.Source{URL: sourceURL},
		Converter: config.Converter{Backend: config.BackendLocal, TempDir: t.TempDir(), SkipFailures: true},
		Publish: config.Publish{
			PayloadFileName:  config.DefaultPayloadFileName,
			MetadataFileName: config.DefaultMetadataFileName,
			Directories:      []string{"/heatmap/airspacedata"},
		},
	}
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "france.txt")
	require.NoError(t, os.WriteFile(path, []byte(openAirSample), 0644))
	return path
}

func TestConvertCommand(t *testing.T) {
	t.Run("writes GeoJSON to stdout", func(t *testing.T) {
		cmd := NewConvertCommand(testConfig(t, ""))
		cmd.Input = writeSample(t)

		var stdout, stderr bytes.Buffer
		require.NoError(t, cmd.Run(context.Background(), &stdout, &stderr))

		fc, err := geojson.UnmarshalFeatureCollection(stdout.Bytes())
		require.NoError(t, err)
		require.Len(t, fc.Features, 1)
		assert.Equal(t, "CTR TEST", fc.Features[0].Properties["name"])
		assert.Empty(t, stderr.String())
	})

	t.Run("writes to a file and prints metadata", func(t *testing.T) {
		cmd := NewConvertCommand(testConfig(t, ""))
		cmd.Input = writeSample(t)
		cmd.Output = filepath.Join(t.TempDir(), "out.geojson")
		cmd.Metadata = true

		var stdout, stderr bytes.Buffer
		require.NoError(t, cmd.Run(context.Background(), &stdout, &stderr))

		assert.Empty(t, stdout.String())
		assert.FileExists(t, cmd.Output)
		assert.Contains(t, stderr.String(), "Wrote 1 airspaces")

		lines := strings.Split(strings.TrimSpace(stderr.String()), "\n")
		var sidecar map[string]string
		require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &sidecar))
		assert.True(t, strings.HasSuffix(sidecar["source"], "  --> AIP FRANCE 2019/08/15"))
		assert.NotEmpty(t, sidecar["date"])
	})

	t.Run("missing input", func(t *testing.T) {
		cmd := NewConvertCommand(testConfig(t, ""))
		cmd.Input = filepath.Join(t.TempDir(), "missing.txt")

		err := cmd.Run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{})
		assert.ErrorContains(t, err, "failed to read")
	})

	t.Run("unknown backend", func(t *testing.T) {
		cmd := NewConvertCommand(testConfig(t, ""))
		cmd.Input = writeSample(t)
		cmd.Backend = "pigeon"

		err := cmd.Run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{})
		assert.ErrorIs(t, err, converters.ErrUnknownBackend)
	})

	t.Run("cobra wiring", func(t *testing.T) {
		c := NewConvertCommand(testConfig(t, "")).Command()
		var stdout bytes.Buffer
		c.SetOut(&stdout)
		c.SetErr(&bytes.Buffer{})
		c.SetArgs([]string{writeSample(t)})

		require.NoError(t, c.Execute())
		assert.Contains(t, stdout.String(), `"FeatureCollection"`)
	})
}

func TestRunCommand(t *testing.T) {
	t.Run("publishes into a local directory", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(openAirSample))
		}))
		defer upstream.Close()

		cmd := NewRunCommand(testConfig(t, upstream.URL))
		cmd.LocalDir = filepath.Join(t.TempDir(), "site")

		require.NoError(t, cmd.Run(context.Background()))
		assert.FileExists(t, filepath.Join(cmd.LocalDir, "heatmap/airspacedata", config.DefaultPayloadFileName))
		assert.FileExists(t, filepath.Join(cmd.LocalDir, "heatmap/airspacedata", config.DefaultMetadataFileName))
	})

	t.Run("returns the fetch error", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer upstream.Close()

		cmd := NewRunCommand(testConfig(t, upstream.URL))
		cmd.LocalDir = t.TempDir()

		err := cmd.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fetch")
	})

	t.Run("requires FTP settings without local dir", func(t *testing.T) {
		cmd := NewRunCommand(testConfig(t, "http://example.org"))

		err := cmd.Run(context.Background())
		assert.ErrorContains(t, err, "FTP_SERVER_NAME_HEATMAP")
	})
}

func TestHashTokenCommand(t *testing.T) {
	t.Run("generates a token", func(t *testing.T) {
		cmd := NewHashTokenCommand()
		cmd.Cost = bcrypt.MinCost

		var out bytes.Buffer
		require.NoError(t, cmd.Run(&out))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 2)
		token := strings.TrimPrefix(lines[0], "TOKEN=")
		hash := strings.TrimPrefix(lines[1], "TRIGGER_TOKEN_HASH=")
		assert.NoError(t, auth.CheckToken(token, hash))
	})

	t.Run("rejects short tokens", func(t *testing.T) {
		cmd := NewHashTokenCommand()
		cmd.Token = "short"

		assert.ErrorIs(t, cmd.Run(&bytes.Buffer{}), auth.ErrTokenTooShort)
	})
}
