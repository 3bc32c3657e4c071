package test

import (
	"fmt"

	"github.com/madkins23/go-type/reg"
)

// RegisterQuantities registers concrete Quantity types for testing.
// Uses the github.com/madkins23/go-type library to register structs by name.
func RegisterQuantities() error {
	if err := reg.Register(&Weight{}); err != nil {
		return fmt.Errorf("registering Weight struct: %w", err)
	}
	if err := reg.Register(&Distance{}); err != nil {
		return fmt.Errorf("registering Distance struct: %w", err)
	}
	return nil
}

////////////////////////////////////////////////////////////////////////////////

// Quantity is an interface type whose concrete types are re-created by
// name when read back from storage.
type Quantity interface {
	Units() string
	Magnitude() float64
}

const (
	WeightGrams    = 453.6
	DistanceMeters = 1609.3
)

var _ Quantity = &Weight{}

type Weight struct {
	Grams float64
}

func (w *Weight) Units() string {
	return "g"
}

func (w *Weight) Magnitude() float64 {
	return w.Grams
}

var _ Quantity = &Distance{}

type Distance struct {
	Meters float64
}

func (d *Distance) Units() string {
	return "m"
}

func (d *Distance) Magnitude() float64 {
	return d.Meters
}
