package severity

import (
	"testing"

	"github.com/rrmetrics/eventcode/errs"
	"github.com/stretchr/testify/require"
)

func TestMTBSClassifier(t *testing.T) {
	c := MTBSClassifier()

	for class := uint8(0); class <= 6; class++ {
		sev, ok := c.Classify(class)
		if class >= 1 && class <= 5 {
			require.True(t, ok, "class %d", class)
			require.Equal(t, class, sev)
		} else {
			require.False(t, ok, "class %d", class)
			require.Equal(t, uint8(0), sev)
		}
	}

	require.Equal(t, uint8(5), c.MaxSeverity())
	require.NoError(t, c.Validate(6))
	require.ErrorIs(t, c.Validate(5), errs.ErrSeverityOutOfRange)
}

func TestClassifyGrid(t *testing.T) {
	c := MTBSClassifier()

	occ, sev := c.ClassifyGrid([][]uint8{
		{0, 3, 6},
		{5, 0, 1},
	})
	require.Equal(t, [][]bool{{false, true, false}, {true, false, true}}, occ)
	require.Equal(t, [][]uint8{{0, 3, 0}, {5, 0, 1}}, sev)
}

func TestNewClassifier_Custom(t *testing.T) {
	// a binary burned/unburned product with classes 10 and 20
	c := NewClassifier(map[uint8]uint8{10: 1, 20: 1})

	sev, ok := c.Classify(20)
	require.True(t, ok)
	require.Equal(t, uint8(1), sev)

	_, ok = c.Classify(1)
	require.False(t, ok)
	require.NoError(t, c.Validate(2))
}
