package prepare

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dresden-mobility/dresden-scenario/scenario/config"
	"github.com/dresden-mobility/dresden-scenario/scenario/internal/testutil"
	"github.com/dresden-mobility/dresden-scenario/scenario/population"
)

func TestRelocatePopulation(t *testing.T) {
	// GIVEN a config with relative inputs next to its population
	dir := t.TempDir()
	in := filepath.Join(dir, "input")
	pop := testutil.Population(testutil.Person("p1", "person", testutil.Act("home", "l1", 1, 2)))
	require.NoError(t, population.Write(filepath.Join(in, "plans.xml"), pop))
	cfg := config.New()
	cfg.Module(config.ModulePlans).Set("inputPlansFile", "plans.xml")
	cfg.Module(config.ModuleNetwork).Set("inputNetworkFile", "network.xml.gz")
	cfg.Module(config.ModuleCounts).Set("inputCountsFile", "null")
	cfgIn := filepath.Join(in, "config.xml")
	require.NoError(t, config.Write(cfgIn, cfg))

	// WHEN relocated
	out := filepath.Join(dir, "output")
	cfgPath, popPath, err := RelocatePopulation(cfgIn, out)
	require.NoError(t, err)

	// THEN the new config points at the copied population and the original inputs
	assert.Equal(t, filepath.Join(out, RelocatedConfigName), cfgPath)
	assert.Equal(t, filepath.Join(out, RelocatedPopulationName), popPath)
	_, err = os.Stat(popPath)
	require.NoError(t, err)

	relocated, err := config.Read(cfgPath)
	require.NoError(t, err)
	plans, _ := relocated.Module(config.ModulePlans).Get("inputPlansFile")
	assert.Equal(t, popPath, plans)
	netFile, _ := relocated.Module(config.ModuleNetwork).Get("inputNetworkFile")
	assert.Equal(t, filepath.Join(in, "network.xml.gz"), netFile)
	counts, _ := relocated.Module(config.ModuleCounts).Get("inputCountsFile")
	assert.Equal(t, "null", counts)

	copied, err := population.Read(popPath)
	require.NoError(t, err)
	require.Len(t, copied.Persons, 1)
	assert.Equal(t, "p1", copied.Persons[0].ID)
}

func TestRelocatePopulation_MissingPlansParam(t *testing.T) {
	dir := t.TempDir()
	cfgIn := filepath.Join(dir, "config.xml")
	require.NoError(t, config.Write(cfgIn, config.New()))

	_, _, err := RelocatePopulation(cfgIn, filepath.Join(dir, "out"))

	assert.Error(t, err)
}
