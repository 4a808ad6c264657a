package facilities

import (
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRead_FacilitiesRoundTrip(t *testing.T) {
	f := &Facilities{Name: "dresden"}
	require.NoError(t, f.Add(NewFacility("f1", orb.Point{411000.5, 5655000}, "shop_daily", "errands")))
	assert.Error(t, f.Add(NewFacility("f1", orb.Point{0, 0})))

	path := filepath.Join(t.TempDir(), "facilities.xml.gz")
	require.NoError(t, Write(path, f))
	again, err := Read(path)
	require.NoError(t, err)

	fac := again.Facility("f1")
	require.NotNil(t, fac)
	assert.Equal(t, orb.Point{411000.5, 5655000}, fac.Coord())
	require.Len(t, fac.Activities, 2)
	assert.Equal(t, "errands", fac.Activities[1].Type)
}
