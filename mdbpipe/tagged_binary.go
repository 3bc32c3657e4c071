package mdbpipe

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MinUserSubtype is the lowest BSON binary subtype reserved for
// user-defined encodings.
// Subtypes below this value belong to the BSON specification.
const MinUserSubtype byte = 0x80

var ErrReservedSubtype = errors.New("binary subtype in reserved range")

// BinaryTransformer encodes values of type T as BSON binary values
// carrying a user-assigned subtype.
// Unlike the tagged-mapping strategy this cannot collide with
// application field-naming conventions and is more compact.
type BinaryTransformer[T any] struct {
	subtype byte
	encode  func(T) ([]byte, error)
	decode  func([]byte) (T, error)
}

// NewBinaryTransformer creates a tagged-binary transformer for type T.
// The subtype must be in the user-defined range (MinUserSubtype and above)
// to avoid collision with standard binary subtypes.
func NewBinaryTransformer[T any](
	subtype byte, encode func(T) ([]byte, error), decode func([]byte) (T, error)) (*BinaryTransformer[T], error) {
	if subtype < MinUserSubtype {
		return nil, fmt.Errorf("subtype %#02x: %w", subtype, ErrReservedSubtype)
	}
	return &BinaryTransformer[T]{
		subtype: subtype,
		encode:  encode,
		decode:  decode,
	}, nil
}

// TransformIncoming replaces each value of type T with a binary value
// tagged with this transformer's subtype.
func (t *BinaryTransformer[T]) TransformIncoming(doc bson.D) (bson.D, error) {
	return MapValues(doc, func(value interface{}) (interface{}, bool, error) {
		item, ok := value.(T)
		if !ok {
			return nil, false, nil
		}
		data, err := t.encode(item)
		if err != nil {
			return nil, false, fmt.Errorf("encode binary %#02x value: %w", t.subtype, err)
		}
		return primitive.Binary{Subtype: t.subtype, Data: data}, true, nil
	})
}

// TransformOutgoing restores values of type T from binary values whose
// subtype matches this transformer's.
// All other values, including tagged sub-documents and binary values of
// other subtypes, are left alone.
func (t *BinaryTransformer[T]) TransformOutgoing(doc bson.D) (bson.D, error) {
	return MapValues(doc, func(value interface{}) (interface{}, bool, error) {
		blob, ok := value.(primitive.Binary)
		if !ok || blob.Subtype != t.subtype {
			return nil, false, nil
		}
		item, err := t.decode(blob.Data)
		if err != nil {
			return nil, false, fmt.Errorf("decode binary %#02x value: %w", t.subtype, err)
		}
		return item, true, nil
	})
}
