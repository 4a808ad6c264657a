// Package vehicles reads and writes vehicle definition files.
package vehicles

import (
	"encoding/xml"
	"fmt"

	"github.com/dresden-mobility/dresden-scenario/scenario/matsim"
)

// Engine attribute names read by the emissions analysis.
const (
	AttrHbefaVehicleCategory  = "HbefaVehicleCategory"
	AttrHbefaTechnology       = "HbefaTechnology"
	AttrHbefaSizeClass        = "HbefaSizeClass"
	AttrHbefaEmissionsConcept = "HbefaEmissionsConcept"
)

// HBEFA vehicle categories.
const (
	CategoryPassengerCar           = "PASSENGER_CAR"
	CategoryLightCommercialVehicle = "LIGHT_COMMERCIAL_VEHICLE"
	CategoryHeavyGoodsVehicle      = "HEAVY_GOODS_VEHICLE"
	CategoryNonHbefaVehicle        = "NON_HBEFA_VEHICLE"
)

const (
	namespace      = "http://www.matsim.org/files/dtd"
	xsiNamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	schemaLocation = "http://www.matsim.org/files/dtd http://www.matsim.org/files/dtd/vehicleDefinitions_v2.0.xsd"
)

// Vehicles is the root of a vehicle definitions file.
type Vehicles struct {
	XMLName        xml.Name          `xml:"vehicleDefinitions"`
	Xmlns          string            `xml:"xmlns,attr,omitempty"`
	XmlnsXsi       string            `xml:"xmlns:xsi,attr,omitempty"`
	SchemaLocation string            `xml:"xsi:schemaLocation,attr,omitempty"`
	Attributes     matsim.Attributes `xml:"attributes"`
	Types          []*VehicleType    `xml:"vehicleType"`
	Vehicles       []*Vehicle        `xml:"vehicle"`
}

// VehicleType describes a class of vehicles.
type VehicleType struct {
	ID                      string            `xml:"id,attr"`
	Attributes              matsim.Attributes `xml:"attributes"`
	Description             string            `xml:"description,omitempty"`
	Capacity                *Capacity         `xml:"capacity,omitempty"`
	Length                  *Meter            `xml:"length,omitempty"`
	Width                   *Meter            `xml:"width,omitempty"`
	MaximumVelocity         *Velocity         `xml:"maximumVelocity,omitempty"`
	EngineInformation       *Engine           `xml:"engineInformation,omitempty"`
	CostInformation         *CostInformation  `xml:"costInformation,omitempty"`
	PassengerCarEquivalents *PCE              `xml:"passengerCarEquivalents,omitempty"`
	NetworkMode             *NetworkMode      `xml:"networkMode,omitempty"`
	FlowEfficiencyFactor    *Factor           `xml:"flowEfficiencyFactor,omitempty"`
}

// Capacity is the seat and standing room of a vehicle type.
type Capacity struct {
	Seats        *matsim.Float `xml:"seats,attr,omitempty"`
	StandingRoom *matsim.Float `xml:"standingRoomInPersons,attr,omitempty"`
}

// Meter holds a length in metres.
type Meter struct {
	Meter matsim.Float `xml:"meter,attr"`
}

// Velocity holds a speed in metres per second.
type Velocity struct {
	MeterPerSecond matsim.Float `xml:"meterPerSecond,attr"`
}

// Engine carries the engine attributes used by the emissions contrib.
type Engine struct {
	Attributes matsim.Attributes `xml:"attributes"`
}

// CostInformation is kept verbatim.
type CostInformation struct {
	Inner []byte `xml:",innerxml"`
}

// PCE is the passenger car equivalent of a vehicle type.
type PCE struct {
	PCE matsim.Float `xml:"pce,attr"`
}

// NetworkMode names the mode the vehicle type drives on.
type NetworkMode struct {
	NetworkMode string `xml:"networkMode,attr"`
}

// Factor is a single dimensionless attribute.
type Factor struct {
	Factor matsim.Float `xml:"factor,attr"`
}

// Vehicle is a single vehicle instance.
type Vehicle struct {
	ID   string `xml:"id,attr"`
	Type string `xml:"type,attr"`
}

// New returns an empty vehicle container with the v2 namespace set.
func New() *Vehicles {
	return &Vehicles{Xmlns: namespace, XmlnsXsi: xsiNamespace, SchemaLocation: schemaLocation}
}

// Read loads a vehicle definitions file.
func Read(path string) (*Vehicles, error) {
	var v Vehicles
	if err := matsim.ReadXML(path, &v); err != nil {
		return nil, fmt.Errorf("reading vehicles: %w", err)
	}
	v.Xmlns, v.XmlnsXsi, v.SchemaLocation = namespace, xsiNamespace, schemaLocation
	return &v, nil
}

// Write stores the vehicles at path.
func Write(path string, v *Vehicles) error {
	if err := matsim.WriteXML(path, "", v); err != nil {
		return fmt.Errorf("writing vehicles: %w", err)
	}
	return nil
}

// Type returns the vehicle type with the given id, or nil.
func (v *Vehicles) Type(id string) *VehicleType {
	for _, t := range v.Types {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// AddType appends a vehicle type. Duplicate ids are an error.
func (v *Vehicles) AddType(t *VehicleType) error {
	if v.Type(t.ID) != nil {
		return fmt.Errorf("duplicate vehicle type %s", t.ID)
	}
	v.Types = append(v.Types, t)
	return nil
}

// AddVehicle appends a vehicle of a known type.
func (v *Vehicles) AddVehicle(veh *Vehicle) error {
	if v.Type(veh.Type) == nil {
		return fmt.Errorf("vehicle %s references unknown type %s", veh.ID, veh.Type)
	}
	v.Vehicles = append(v.Vehicles, veh)
	return nil
}

// EngineAttributes returns the engine attribute block, creating it when absent.
func (t *VehicleType) EngineAttributes() *matsim.Attributes {
	if t.EngineInformation == nil {
		t.EngineInformation = &Engine{}
	}
	return &t.EngineInformation.Attributes
}

// SetHbefa stores the four HBEFA engine attributes.
func (t *VehicleType) SetHbefa(category, technology, sizeClass, concept string) {
	attrs := t.EngineAttributes()
	attrs.SetString(AttrHbefaVehicleCategory, category)
	attrs.SetString(AttrHbefaTechnology, technology)
	attrs.SetString(AttrHbefaSizeClass, sizeClass)
	attrs.SetString(AttrHbefaEmissionsConcept, concept)
}
