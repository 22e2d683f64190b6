package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rrmetrics/eventcode/aggregate"
	"github.com/rrmetrics/eventcode/dictionary"
	"github.com/rrmetrics/eventcode/domain"
	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/format"
	"github.com/rrmetrics/eventcode/pipeline"
	"github.com/stretchr/testify/require"
)

func buildSample(t *testing.T, withSeverity bool, opts ...domain.Option) *pipeline.Result {
	t.Helper()

	dom, err := domain.New(1986, 1988, opts...)
	require.NoError(t, err)

	in := pipeline.Input{
		Units: []uint64{1, 1, 2, 0, 3},
		Occurrence: [][]bool{
			{true, false, true, true, false},
			{false, false, true, false, false},
			{true, false, false, false, true},
		},
	}
	if withSeverity {
		in.Severity = [][]uint8{
			{2, 0, 1, 4, 0},
			{0, 0, 3, 0, 0},
			{3, 0, 0, 0, 5},
		}
	}

	res, err := pipeline.Build(context.Background(), dom, in)
	require.NoError(t, err)

	return res
}

func TestFileName(t *testing.T) {
	dom, err := domain.New(1986, 2020)
	require.NoError(t, err)
	require.Equal(t, "mtbs_fire-year_1986_2020_30m_v1.csv", FileName(dom, format.KindFireYear.String(), "csv"))

	dom, err = domain.New(1986, 2020, domain.WithDataset("cwf", "2024a"), domain.WithResolution(250), domain.WithTestRun())
	require.NoError(t, err)
	require.Equal(t, "cwf_aggregates_1986_2020_250m_testRun2024a.csv", FileName(dom, NameAggregates, "csv"))
}

func TestWriteKeyTable(t *testing.T) {
	res := buildSample(t, true)

	var buf bytes.Buffer
	require.NoError(t, WriteKeyTable(&buf, res.FireYear))
	require.Equal(t, "denseCode,rawCode\n0,0\n1,3\n2,4\n3,5\n", buf.String())

	back, err := ReadKeyTable(&buf, format.KindFireYear, dictionary.WithZero(), dictionary.WithFingerprint(res.Domain.Fingerprint()))
	require.NoError(t, err)
	require.True(t, back.Equal(res.FireYear))
}

func TestReadKeyTable_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no header", "0,0\n1,3\n"},
		{"empty", ""},
		{"gap in dense", "denseCode,rawCode\n0,0\n2,3\n"},
		{"not ascending", "denseCode,rawCode\n0,4\n1,3\n"},
		{"bad number", "denseCode,rawCode\n0,x\n"},
		{"short row", "denseCode,rawCode\n0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadKeyTable(strings.NewReader(tt.input), format.KindSeverity)
			require.ErrorIs(t, err, errs.ErrInvalidPayload)
		})
	}

	_, err := ReadKeyTable(strings.NewReader("denseCode,rawCode\n"), format.KindSeverity)
	require.ErrorIs(t, err, errs.ErrEmptyDomain)
}

func TestWriteComposite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComposite(&buf, buildSample(t, true)))
	require.Equal(t, strings.Join([]string{
		"denseCode,rawCode,unit,fireYearDense,severityDense",
		"0,1100,1,0,0",
		"1,1133,1,3,3",
		"2,1212,2,1,2",
		"3,1321,3,2,1",
	}, "\n")+"\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteComposite(&buf, buildSample(t, false)))
	require.Equal(t, strings.Join([]string{
		"denseCode,rawCode,unit,fireYearDense,severityDense",
		"0,110,1,0,",
		"1,113,1,3,",
		"2,121,2,1,",
		"3,132,3,2,",
	}, "\n")+"\n", buf.String())
}

func TestWriteRecords(t *testing.T) {
	records := []aggregate.Record{
		{Key: 1133, Attribute: aggregate.AreaAttribute, Value: 1800},
		{Key: 1212, Attribute: "dnbr", Year: 1987, Value: 0.25},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, records))
	require.Equal(t, "packedKey,attribute,year,value\n1133,area,0,1800\n1212,dnbr,1987,0.25\n", buf.String())
}

func TestWriteResult(t *testing.T) {
	res := buildSample(t, true, domain.WithDataset("cwf", "v2"))

	reducer, err := aggregate.NewReducer()
	require.NoError(t, err)
	records, err := aggregate.Area(context.Background(), reducer, res.Keys, aggregate.Region{Resolution: res.Domain.Resolution})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteResult(dir, res, records)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "cwf_fire-year_1986_1988_30m_v2.csv"),
		filepath.Join(dir, "cwf_severity_1986_1988_30m_v2.csv"),
		filepath.Join(dir, "cwf_composite_1986_1988_30m_v2.csv"),
		filepath.Join(dir, "cwf_aggregates_1986_1988_30m_v2.csv"),
	}, paths)

	data, err := os.ReadFile(paths[3])
	require.NoError(t, err)
	require.Equal(t, "packedKey,attribute,year,value\n1100,area,0,900\n1133,area,0,900\n1212,area,0,900\n1321,area,0,900\n", string(data))

	f, err := os.Open(paths[1])
	require.NoError(t, err)
	defer f.Close()
	sev, err := ReadKeyTable(f, format.KindSeverity, dictionary.WithZero(), dictionary.WithFingerprint(res.Domain.Fingerprint()))
	require.NoError(t, err)
	require.True(t, sev.Equal(res.Severity))

	paths, err = WriteResult(t.TempDir(), buildSample(t, false), nil)
	require.NoError(t, err)
	require.Len(t, paths, 2)
}
