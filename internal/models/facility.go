// internal/models/facility.go
package models

import (
	"fmt"
	"math"
)

// Facility is a pet-friendly location record as returned by the backend. The
// search core treats it as an opaque value beyond display and map placement.
type Facility struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Category1        string   `json:"category1,omitempty"`
	Category2        string   `json:"category2,omitempty"`
	Category3        string   `json:"category3,omitempty"`
	SidoName         string   `json:"sidoName,omitempty"`
	SigunguName      string   `json:"sigunguName,omitempty"`
	RoadAddress      string   `json:"roadAddress,omitempty"`
	JibunAddress     string   `json:"jibunAddress,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	PhoneNumber      string   `json:"phoneNumber,omitempty"`
	OperatingHours   string   `json:"operatingHours,omitempty"`
	ClosedDays       string   `json:"closedDays,omitempty"`
	ParkingAvailable string   `json:"parkingAvailable,omitempty"`
	AllowedPetSize   string   `json:"allowedPetSize,omitempty"`
	PetRestrictions  string   `json:"petRestrictions,omitempty"`
	IndoorFacility   string   `json:"indoorFacility,omitempty"`
	OutdoorFacility  string   `json:"outdoorFacility,omitempty"`
}

// HasCoordinates reports whether the facility can be placed on the map.
func (f Facility) HasCoordinates() bool {
	return f.Latitude != nil && f.Longitude != nil
}

// Address prefers the road address over the lot address.
func (f Facility) Address() string {
	if f.RoadAddress != "" {
		return f.RoadAddress
	}
	return f.JibunAddress
}

// FacilityPage is the paginated search envelope.
type FacilityPage struct {
	Content       []Facility `json:"content"`
	TotalElements int        `json:"totalElements"`
}

// Bounds is a map viewport given by its south-west and north-east corners.
type Bounds struct {
	SouthWestLat float64 `json:"southWestLat"`
	SouthWestLng float64 `json:"southWestLng"`
	NorthEastLat float64 `json:"northEastLat"`
	NorthEastLng float64 `json:"northEastLng"`
}

// Validate rejects inverted, out-of-range or non-finite viewports.
func (b Bounds) Validate() error {
	for _, v := range []float64{b.SouthWestLat, b.SouthWestLng, b.NorthEastLat, b.NorthEastLng} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("bounds not finite: %+v", b)
		}
	}
	if b.SouthWestLat < -90 || b.NorthEastLat > 90 || b.SouthWestLng < -180 || b.NorthEastLng > 180 {
		return fmt.Errorf("bounds out of range: %+v", b)
	}
	if b.SouthWestLat > b.NorthEastLat || b.SouthWestLng > b.NorthEastLng {
		return fmt.Errorf("bounds inverted: %+v", b)
	}
	return nil
}

// Contains reports whether the point lies inside the viewport.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.SouthWestLat && lat <= b.NorthEastLat && lng >= b.SouthWestLng && lng <= b.NorthEastLng
}
