package openair

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSampleFile(t *testing.T) {
	parser := NewParser(false)

	airspaces, err := parser.ParseFile(filepath.Join("testdata", "france_sample.txt"))
	require.NoError(t, err)
	require.Len(t, airspaces, 4)

	t.Run("polygon", func(t *testing.T) {
		a := airspaces[0]
		assert.Equal(t, "D", a.Class)
		assert.Equal(t, "CTR ANNECY", a.Name)
		assert.Equal(t, "3500FT AMSL", a.Upper)
		assert.Equal(t, "SFC", a.Lower)
		require.Len(t, a.Ring, 5, "four corners plus closing point")
		assert.True(t, a.Ring.Closed())
		assert.InDelta(t, 6.0333, a.Ring[0][0], 0.0001)
		assert.InDelta(t, 45.975, a.Ring[0][1], 0.0001)
	})

	t.Run("circle", func(t *testing.T) {
		a := airspaces[1]
		assert.Equal(t, "R 45 A", a.Name)
		assert.Len(t, a.Ring, int(360/DefaultArcStep)+1)
		assert.True(t, a.Ring.Closed())

		// 5 NM is 1/12 of a degree of latitude due north
		assert.InDelta(t, 45.5+5.0/60, a.Ring[0][1], 0.001)
		assert.InDelta(t, 5.3333, a.Ring[0][0], 0.001)
	})

	t.Run("arc by angles", func(t *testing.T) {
		a := airspaces[2]
		assert.Equal(t, "P", a.Class)
		assert.True(t, a.Ring.Closed())
		// DP, 19 arc points (0..90 by 5), DP, closing point
		assert.Len(t, a.Ring, 1+19+1+1)
	})

	t.Run("arc by points counter clockwise", func(t *testing.T) {
		a := airspaces[3]
		assert.Equal(t, "TMA BORDEAUX", a.Name)
		assert.True(t, a.Ring.Closed())

		// The arc goes the long way round, so it must reach south of the center.
		minLat := a.Ring[0][1]
		for _, pt := range a.Ring {
			if pt[1] < minLat {
				minLat = pt[1]
			}
		}
		assert.Less(t, minLat, 44.45)
	})
}

func TestParseMalformedRecord(t *testing.T) {
	input := `AC D
AN GOOD ONE
DP 45:00:00 N 006:00:00 E
DP 45:10:00 N 006:00:00 E
DP 45:10:00 N 006:10:00 E

AC R
AN BROKEN
DP 45:00:00 X 006:00:00 E
DP 45:10:00 N 006:00:00 E
DP 45:10:00 N 006:10:00 E

AC Q
AN ALSO GOOD
V X=45:00:00 N 006:00:00 E
DC 2
`

	t.Run("fails without skip", func(t *testing.T) {
		_, err := NewParser(false).Parse(strings.NewReader(input))
		require.Error(t, err)

		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, 9, perr.Line)
		assert.Equal(t, "BROKEN", perr.Record)
		assert.Contains(t, err.Error(), "line 9 (BROKEN)")
	})

	t.Run("skips with skipFailures", func(t *testing.T) {
		airspaces, err := NewParser(true).Parse(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, airspaces, 2)
		assert.Equal(t, "GOOD ONE", airspaces[0].Name)
		assert.Equal(t, "ALSO GOOD", airspaces[1].Name)
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "arc without center",
			input:   "AC D\nAN X\nDC 5\n",
			wantErr: ErrNoCenter,
		},
		{
			name:    "too few points",
			input:   "AC D\nAN X\nDP 45:00:00 N 006:00:00 E\n",
			wantErr: ErrTooFewPoints,
		},
		{
			name:    "unknown command",
			input:   "AC D\nAN X\nZZ nonsense\n",
			wantErr: ErrUnknownCommand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(false).Parse(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseCommandBeforeAC(t *testing.T) {
	_, err := NewParser(false).Parse(strings.NewReader("AN ORPHAN\n"))
	assert.EqualError(t, err, "line 1: AN before any AC command")

	airspaces, err := NewParser(true).Parse(strings.NewReader("AN ORPHAN\n"))
	assert.NoError(t, err)
	assert.Empty(t, airspaces)
}

func TestParseTrailingComment(t *testing.T) {
	input := "AC D\nAN X\nDP 45:00:00 N 006:00:00 E * corner\nDP 45:10:00N 006:00:00E\nDP 45:10.5 N 006:10 E\n"

	airspaces, err := NewParser(false).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, airspaces, 1)
	assert.InDelta(t, 45.175, airspaces[0].Ring[2][1], 0.0001)
}

func TestParseFileMissing(t *testing.T) {
	_, err := NewParser(false).ParseFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		input string
		want  orb.Point
		ok    bool
	}{
		{"45:30:00 N 005:20:00 E", orb.Point{5 + 20.0/60, 45.5}, true},
		{"45:30:00 S 005:20:00 W", orb.Point{-(5 + 20.0/60), -45.5}, true},
		{"45:30:36N 005:20:00E", orb.Point{5 + 20.0/60, 45.51}, true},
		{"45:30.5 N 005:20.5 E", orb.Point{5 + 20.5/60, 45 + 30.5/60}, true},
		{"45:30:00 N", orb.Point{}, false},
		{"45:30:00 N 45:30:00 N", orb.Point{}, false},
		{"45:75:00 N 005:20:00 E", orb.Point{}, false},
		{"95:00:00 N 005:20:00 E", orb.Point{}, false},
		{"garbage", orb.Point{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseCoordinate(tt.input)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want[0], got[0], 1e-9)
			assert.InDelta(t, tt.want[1], got[1], 1e-9)
		})
	}
}

func TestToFeatureCollection(t *testing.T) {
	airspaces, err := NewParser(false).ParseFile(filepath.Join("testdata", "france_sample.txt"))
	require.NoError(t, err)

	fc := ToFeatureCollection(airspaces)
	require.Len(t, fc.Features, 4)

	f := fc.Features[0]
	assert.Equal(t, "Polygon", f.Geometry.GeoJSONType())
	assert.Equal(t, "D", f.Properties["class"])
	assert.Equal(t, "CTR ANNECY", f.Properties["name"])
	assert.Equal(t, "3500FT AMSL", f.Properties["upper"])
	assert.Equal(t, "SFC", f.Properties["lower"])

	data, err := fc.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"FeatureCollection"`)
}
