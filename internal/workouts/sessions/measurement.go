package sessions

import (
	"fmt"
)

type WeightUnit string

const (
	WeightUnitKg WeightUnit = "kg"
	WeightUnitLb WeightUnit = "lb"
)

type DistanceUnit string

const (
	DistanceUnitMeters     DistanceUnit = "m"
	DistanceUnitKilometers DistanceUnit = "km"
	DistanceUnitMiles      DistanceUnit = "mi"
)

type BandColor string

const (
	BandYellow BandColor = "yellow"
	BandRed    BandColor = "red"
	BandGreen  BandColor = "green"
	BandBlue   BandColor = "blue"
	BandBlack  BandColor = "black"
	BandPurple BandColor = "purple"
	BandOrange BandColor = "orange"
	BandGray   BandColor = "gray"
)

var bandColors = map[BandColor]bool{
	BandYellow: true,
	BandRed:    true,
	BandGreen:  true,
	BandBlue:   true,
	BandBlack:  true,
	BandPurple: true,
	BandOrange: true,
	BandGray:   true,
}

// Measurement holds what was recorded for one set. Only the fields relevant for the
// exercise type are expected to be set, the rest stay nil. Relevance itself is not enforced.
type Measurement struct {
	Weight          *float64      `json:"weight,omitempty"`
	WeightUnit      *WeightUnit   `json:"weightUnit,omitempty"`
	Reps            *int          `json:"reps,omitempty"`
	DurationSeconds *int          `json:"durationSeconds,omitempty"`
	Distance        *float64      `json:"distance,omitempty"`
	DistanceUnit    *DistanceUnit `json:"distanceUnit,omitempty"`
	Bodyweight      *bool         `json:"bodyweight,omitempty"`
	BandColor       *BandColor    `json:"bandColor,omitempty"`
}

func (m Measurement) IsEmpty() bool {
	return m.Weight == nil &&
		m.Reps == nil &&
		m.DurationSeconds == nil &&
		m.Distance == nil &&
		m.Bodyweight == nil &&
		m.BandColor == nil
}

// Validate returns ErrEmptySet when nothing is measured, and ErrInvalidMeasurement for bad values.
func (m Measurement) Validate() error {
	if m.IsEmpty() {
		return ErrEmptySet
	}

	if m.Weight != nil && *m.Weight < 0 {
		return fmt.Errorf("%w: negative weight", ErrInvalidMeasurement)
	}
	if m.WeightUnit != nil {
		if m.Weight == nil {
			return fmt.Errorf("%w: weight unit without weight", ErrInvalidMeasurement)
		}
		if *m.WeightUnit != WeightUnitKg && *m.WeightUnit != WeightUnitLb {
			return fmt.Errorf("%w: unknown weight unit [%s]", ErrInvalidMeasurement, *m.WeightUnit)
		}
	}
	if m.Reps != nil && *m.Reps < 0 {
		return fmt.Errorf("%w: negative reps", ErrInvalidMeasurement)
	}
	if m.DurationSeconds != nil && *m.DurationSeconds < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidMeasurement)
	}
	if m.Distance != nil && *m.Distance < 0 {
		return fmt.Errorf("%w: negative distance", ErrInvalidMeasurement)
	}
	if m.DistanceUnit != nil {
		if m.Distance == nil {
			return fmt.Errorf("%w: distance unit without distance", ErrInvalidMeasurement)
		}
		switch *m.DistanceUnit {
		case DistanceUnitMeters, DistanceUnitKilometers, DistanceUnitMiles:
		default:
			return fmt.Errorf("%w: unknown distance unit [%s]", ErrInvalidMeasurement, *m.DistanceUnit)
		}
	}
	if m.BandColor != nil && !bandColors[*m.BandColor] {
		return fmt.Errorf("%w: unknown band color [%s]", ErrInvalidMeasurement, *m.BandColor)
	}

	return nil
}
