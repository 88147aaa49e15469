package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeIntervalOverlapsAndDisjoint(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := TimeInterval{Begin: base, End: base.Add(time.Hour)}
	touching := TimeInterval{Begin: base.Add(time.Hour), End: base.Add(2 * time.Hour)}
	separate := TimeInterval{Begin: base.Add(2 * time.Hour), End: base.Add(3 * time.Hour)}

	assert.True(t, a.Overlaps(touching))
	assert.False(t, a.Disjoint(touching))
	assert.True(t, a.Disjoint(separate))
	assert.False(t, a.Overlaps(separate))
}

func TestTimeIntervalUnion(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := TimeInterval{Begin: base, End: base.Add(time.Hour)}
	b := TimeInterval{Begin: base.Add(30 * time.Minute), End: base.Add(2 * time.Hour)}

	u := a.Union(b)
	assert.True(t, u.Begin.Equal(base))
	assert.True(t, u.End.Equal(base.Add(2*time.Hour)))
}

func TestTimeIntervalWidthAndEqual(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := TimeInterval{Begin: base, End: base.Add(90 * time.Minute)}
	assert.Equal(t, 90*time.Minute, a.Width())
	assert.True(t, a.Equal(TimeInterval{Begin: base, End: base.Add(90 * time.Minute)}))
}
