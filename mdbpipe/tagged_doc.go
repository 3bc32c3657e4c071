package mdbpipe

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// TypeField is the reserved discriminator key marking a sub-document
// as the encoded form of an application type.
const TypeField = "_type"

// DocTransformer encodes values of type T as sub-documents tagged with
// a discriminator field.
// The encoded form is the payload returned by the encode function with
// {TypeField: <name>} prepended.
type DocTransformer[T any] struct {
	name   string
	encode func(T) (bson.D, error)
	decode func(bson.D) (T, error)
}

// NewDocTransformer creates a tagged-mapping transformer for type T.
// The name becomes the discriminator value and must be unique among
// transformers registered on the same pipeline.
func NewDocTransformer[T any](
	name string, encode func(T) (bson.D, error), decode func(bson.D) (T, error)) *DocTransformer[T] {
	return &DocTransformer[T]{
		name:   name,
		encode: encode,
		decode: decode,
	}
}

// TransformIncoming replaces each value of type T with its tagged sub-document.
func (t *DocTransformer[T]) TransformIncoming(doc bson.D) (bson.D, error) {
	return MapValues(doc, func(value interface{}) (interface{}, bool, error) {
		item, ok := value.(T)
		if !ok {
			return nil, false, nil
		}
		payload, err := t.encode(item)
		if err != nil {
			return nil, false, fmt.Errorf("encode '%s' value: %w", t.name, err)
		}
		tagged := make(bson.D, 0, len(payload)+1)
		tagged = append(tagged, bson.E{Key: TypeField, Value: t.name})
		tagged = append(tagged, payload...)
		return tagged, true, nil
	})
}

// TransformOutgoing restores values of type T from sub-documents whose
// discriminator field matches this transformer's name.
// Untagged sub-documents are recursed into.
// A matching tag with a bad payload fails the pass rather than
// returning a partial value.
func (t *DocTransformer[T]) TransformOutgoing(doc bson.D) (bson.D, error) {
	return MapValues(doc, func(value interface{}) (interface{}, bool, error) {
		sub, ok := value.(bson.D)
		if !ok || !t.tagged(sub) {
			return nil, false, nil
		}
		item, err := t.decode(untag(sub))
		if err != nil {
			return nil, false, fmt.Errorf("decode '%s' value: %w", t.name, err)
		}
		return item, true, nil
	})
}

func (t *DocTransformer[T]) tagged(sub bson.D) bool {
	for _, elem := range sub {
		if elem.Key == TypeField {
			name, ok := elem.Value.(string)
			return ok && name == t.name
		}
	}
	return false
}

// untag returns the sub-document payload without its discriminator field.
func untag(sub bson.D) bson.D {
	payload := make(bson.D, 0, len(sub)-1)
	for _, elem := range sub {
		if elem.Key != TypeField {
			payload = append(payload, elem)
		}
	}
	return payload
}
