package test

import (
	"errors"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/madkins23/go-mongo-xform/mdbpipe"
)

// Currency is an application type the Mongo driver has no encoding for.
// It is used in tests to exercise both pipeline encoding strategies.
type Currency struct {
	cents int64
}

func NewCurrency(cents int64) Currency {
	return Currency{cents: cents}
}

// Cents returns the amount in the smallest currency unit.
func (c Currency) Cents() int64 {
	return c.cents
}

const (
	// CurrencyTypeName is the discriminator value for the tagged-mapping strategy.
	CurrencyTypeName = "currency"

	// CurrencySubtype is the user-range binary subtype for the tagged-binary strategy.
	CurrencySubtype byte = 0x80
)

var errNoCentsField = errors.New("no cents field")

// CurrencyDocTransformer encodes Currency values as tagged sub-documents.
func CurrencyDocTransformer() *mdbpipe.DocTransformer[Currency] {
	return mdbpipe.NewDocTransformer(CurrencyTypeName,
		func(c Currency) (bson.D, error) {
			return bson.D{{Key: "cents", Value: c.Cents()}}, nil
		},
		func(payload bson.D) (Currency, error) {
			for _, elem := range payload {
				if elem.Key != "cents" {
					continue
				}
				switch cents := elem.Value.(type) {
				case int64:
					return NewCurrency(cents), nil
				case int32:
					return NewCurrency(int64(cents)), nil
				case int:
					return NewCurrency(int64(cents)), nil
				default:
					return Currency{}, fmt.Errorf("cents field not numeric: %v", elem.Value)
				}
			}
			return Currency{}, errNoCentsField
		})
}

// CurrencyBinaryTransformer encodes Currency values as tagged binary blobs.
func CurrencyBinaryTransformer() (*mdbpipe.BinaryTransformer[Currency], error) {
	return mdbpipe.NewBinaryTransformer(CurrencySubtype,
		func(c Currency) ([]byte, error) {
			return strconv.AppendInt(nil, c.Cents(), 10), nil
		},
		func(data []byte) (Currency, error) {
			cents, err := strconv.ParseInt(string(data), 10, 64)
			if err != nil {
				return Currency{}, fmt.Errorf("parse currency data: %w", err)
			}
			return NewCurrency(cents), nil
		})
}
