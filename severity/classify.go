package severity

import (
	"fmt"

	"github.com/rrmetrics/eventcode/errs"
)

// Classifier maps the class values of a source product to a qualifying flag
// and a severity. Classes absent from the mapping do not qualify.
type Classifier struct {
	qualifying [256]bool
	severity   [256]uint8
	max        uint8
}

// NewClassifier creates a classifier where every key of severityByClass
// qualifies with the mapped severity.
func NewClassifier(severityByClass map[uint8]uint8) *Classifier {
	c := &Classifier{}
	for class, sev := range severityByClass {
		c.qualifying[class] = true
		c.severity[class] = sev
		c.max = max(c.max, sev)
	}

	return c
}

// MTBSClassifier returns the classifier of MTBS annual burn severity mosaics:
// classes 1 to 5 qualify with their own value as severity, while 0 (background)
// and 6 (non-processing mask) do not.
func MTBSClassifier() *Classifier {
	return NewClassifier(map[uint8]uint8{1: 1, 2: 2, 3: 3, 4: 4, 5: 5})
}

// Classify returns the severity of class and whether it qualifies.
func (c *Classifier) Classify(class uint8) (uint8, bool) {
	return c.severity[class], c.qualifying[class]
}

// MaxSeverity returns the largest severity the classifier produces.
func (c *Classifier) MaxSeverity() uint8 {
	return c.max
}

// Validate checks that every produced severity is below the radix.
func (c *Classifier) Validate(classes int) error {
	if int(c.max) >= classes {
		return fmt.Errorf("%w: classifier produces severity %d, radix is %d", errs.ErrSeverityOutOfRange, c.max, classes)
	}

	return nil
}

// ClassifyGrid splits a per-year stack of class grids into occurrence and
// severity stacks. Non-qualifying cells get severity 0.
func (c *Classifier) ClassifyGrid(yearly [][]uint8) ([][]bool, [][]uint8) {
	occurrence := make([][]bool, len(yearly))
	severity := make([][]uint8, len(yearly))
	for i, g := range yearly {
		occ := make([]bool, len(g))
		sev := make([]uint8, len(g))
		for j, class := range g {
			if c.qualifying[class] {
				occ[j] = true
				sev[j] = c.severity[class]
			}
		}
		occurrence[i] = occ
		severity[i] = sev
	}

	return occurrence, severity
}
