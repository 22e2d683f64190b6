package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/format"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
startYear: 1986
endYear: 1988
severityClasses: 5
resolution: 90
width: exact64
compression: s2
dataset: mtbs
version: "20221212"
`

func TestParse(t *testing.T) {
	d, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	require.Equal(t, 1986, d.StartYear)
	require.Equal(t, 1988, d.EndYear)
	require.Equal(t, 5, d.SeverityClasses)
	require.Equal(t, format.WidthExact64, d.Width)
	require.Equal(t, format.CompressionS2, d.Compression)
	require.Equal(t, "20221212", d.Version)
	require.Equal(t, uint64(DefaultBase), d.Base, "unset keys keep defaults")
	require.Equal(t, DefaultTileSize, d.TileSize)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("startYear: 1986\nbogus: 1\n"))
	require.Error(t, err)

	_, err = Parse([]byte("width: float32\n"))
	require.Error(t, err)
}

func TestMarshal_RoundTrip(t *testing.T) {
	d, err := New(1990, 2000, WithWidth(format.WidthExact64), WithCompression(format.CompressionLZ4))
	require.NoError(t, err)

	data, err := d.Marshal()
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, d, back)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	t.Setenv("EVENTCODE_END_YEAR", "2000")
	t.Setenv("EVENTCODE_TEST_RUN", "true")
	t.Setenv("EVENTCODE_WIDTH", "safe53")

	d, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1986, d.StartYear)
	require.Equal(t, 2000, d.EndYear)
	require.True(t, d.TestRun)
	require.Equal(t, format.WidthSafe53, d.Width)
	require.Equal(t, 90, d.Resolution)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	d, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), d)
}

func TestLoad_InvalidAfterEnv(t *testing.T) {
	t.Setenv("EVENTCODE_START_YEAR", "2030")

	_, err := Load("")
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyEnv_BadValue(t *testing.T) {
	t.Setenv("EVENTCODE_RESOLUTION", "thirty")

	_, err := ApplyEnv(Default())
	require.Error(t, err)
}
