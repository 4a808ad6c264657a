package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `<?xml version="1.0" ?>
<!DOCTYPE config SYSTEM "http://www.matsim.org/files/dtd/config_v2.dtd">
<config>
	<module name="plans">
		<param name="inputPlansFile" value="dresden-v1.0-10pct.plans.xml.gz"/>
	</module>
	<module name="qsim">
		<param name="endTime" value="36:00:00"/>
		<param name="mainMode" value="car,freight"/>
	</module>
	<module name="scoring">
		<parameterset type="scoringParameters">
			<parameterset type="modeParams">
				<param name="mode" value="car"/>
				<param name="marginalUtilityOfTraveling_util_hr" value="-0.5"/>
			</parameterset>
		</parameterset>
	</module>
</config>
`

func readSample(t *testing.T) *Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input", "config.xml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0644))
	c, err := Read(path)
	require.NoError(t, err)
	return c
}

func TestRead_ModulesParamsAndNestedSets(t *testing.T) {
	c := readSample(t)

	end, ok := c.Module(ModuleQSim).Seconds("endTime")
	assert.True(t, ok)
	assert.Equal(t, 129600.0, end)
	assert.Equal(t, []string{"car", "freight"}, c.Module(ModuleQSim).List("mainMode"))

	car := c.ScoringParameters("").ModeParams("car")
	assert.Equal(t, -0.5, car.FloatOr("marginalUtilityOfTraveling_util_hr", 0))
	assert.Len(t, c.Module(ModuleScoring).Sets, 1)
}

func TestModule_GetOrAddDoesNotDuplicate(t *testing.T) {
	c := New()
	assert.False(t, c.HasModule(ModuleCounts))

	c.Module(ModuleCounts).SetFloat("countsScaleFactor", 0.1)
	c.Module(ModuleCounts).SetFloat("countsScaleFactor", 0.25)

	assert.Len(t, c.Modules, 1)
	assert.Equal(t, "0.25", c.Module(ModuleCounts).GetOr("countsScaleFactor", ""))
}

func TestGroup_ListHelpersDeduplicate(t *testing.T) {
	g := &Group{}
	g.SetList("networkModes", []string{"car", "ride"})
	g.AddToList("networkModes", "car", "truck8t")

	assert.Equal(t, "car,ride,truck8t", g.GetOr("networkModes", ""))
}

func TestRemoveSets_MatchesTypeAndPredicate(t *testing.T) {
	c := New()
	c.AddStrategy("ChangeExpBeta", "person", 0.7)
	c.AddStrategy("ReRoute", "person", 0.1)
	c.AddStrategy("ReRoute", "goodsTraffic", 0.1)

	removed := c.Module(ModuleReplanning).RemoveSets(SetStrategySettings, func(s *ParameterSet) bool {
		v, _ := s.Get("strategyName")
		return v == "ReRoute"
	})

	assert.Equal(t, 2, removed)
	assert.Len(t, c.Strategies("person"), 1)
	assert.Empty(t, c.Strategies("goodsTraffic"))
}

func TestWriteRead_ResolvePathAgainstConfigDir(t *testing.T) {
	c := readSample(t)
	plans, _ := c.Module(ModulePlans).Get("inputPlansFile")
	assert.Equal(t, filepath.Join(filepath.Dir(c.Path()), "dresden-v1.0-10pct.plans.xml.gz"), c.ResolvePath(plans))
	assert.Equal(t, "https://svn.example/plans.xml.gz", c.ResolvePath("https://svn.example/plans.xml.gz"))

	out := filepath.Join(t.TempDir(), "config.xml")
	require.NoError(t, Write(out, c))
	again, err := Read(out)
	require.NoError(t, err)
	assert.Len(t, again.Modules, 3)
}
