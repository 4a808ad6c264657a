package vehicles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleVehicles = `<?xml version="1.0" encoding="UTF-8"?>
<vehicleDefinitions xmlns="http://www.matsim.org/files/dtd" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="http://www.matsim.org/files/dtd http://www.matsim.org/files/dtd/vehicleDefinitions_v2.0.xsd">
	<vehicleType id="bike">
		<capacity seats="1" standingRoomInPersons="0"/>
		<length meter="2.0"/>
		<width meter="1.0"/>
		<maximumVelocity meterPerSecond="4.16"/>
		<engineInformation>
		</engineInformation>
		<passengerCarEquivalents pce="0.2"/>
		<networkMode networkMode="bike"/>
		<flowEfficiencyFactor factor="1.0"/>
	</vehicleType>
	<vehicle id="p1_bike" type="bike"/>
</vehicleDefinitions>
`

func TestRead_VehicleTypeFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vehicles.xml")
	require.NoError(t, os.WriteFile(path, []byte(sampleVehicles), 0644))

	v, err := Read(path)
	require.NoError(t, err)

	bike := v.Type("bike")
	require.NotNil(t, bike)
	assert.Equal(t, 2.0, float64(bike.Length.Meter))
	assert.Equal(t, 4.16, float64(bike.MaximumVelocity.MeterPerSecond))
	assert.Equal(t, 0.2, float64(bike.PassengerCarEquivalents.PCE))
	assert.Equal(t, "bike", bike.NetworkMode.NetworkMode)
	assert.Equal(t, 0, bike.EngineAttributes().Len())
	require.Len(t, v.Vehicles, 1)
}

func TestWrite_HbefaAttributesSurviveRoundTrip(t *testing.T) {
	// GIVEN a car type with HBEFA attributes
	v := New()
	car := &VehicleType{ID: "car"}
	car.SetHbefa(CategoryPassengerCar, "average", "average", "average")
	require.NoError(t, v.AddType(car))
	require.NoError(t, v.AddVehicle(&Vehicle{ID: "p1_car", Type: "car"}))

	// WHEN written and read back
	path := filepath.Join(t.TempDir(), "vehicles.xml.gz")
	require.NoError(t, Write(path, v))
	again, err := Read(path)
	require.NoError(t, err)

	// THEN the engine attributes are intact
	cat, ok := again.Type("car").EngineAttributes().Get(AttrHbefaVehicleCategory)
	assert.True(t, ok)
	assert.Equal(t, CategoryPassengerCar, cat)
}

func TestAddVehicle_UnknownTypeIsError(t *testing.T) {
	v := New()
	assert.Error(t, v.AddVehicle(&Vehicle{ID: "x", Type: "ebike"}))
	require.NoError(t, v.AddType(&VehicleType{ID: "ebike"}))
	assert.Error(t, v.AddType(&VehicleType{ID: "ebike"}))
}
