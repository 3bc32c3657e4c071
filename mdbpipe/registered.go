package mdbpipe

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/madkins23/go-type/reg"
)

// dataField holds the serialized state in a registered-type envelope.
const dataField = "data"

// RegisteredTransformer encodes values assignable to interface type T
// whose concrete types have been registered with madkins23/go-type/reg.
// The encoded form is a sub-document {TypeField: <registered name>,
// "data": <fields>} so that the correct concrete type can be re-created
// on the way out.
// T should be a specific interface, not the empty interface,
// or the transformer will claim every value in the document.
type RegisteredTransformer[T any] struct{}

// NewRegisteredTransformer creates a registry-backed transformer for
// interface type T.
func NewRegisteredTransformer[T any]() *RegisteredTransformer[T] {
	return &RegisteredTransformer[T]{}
}

// TransformIncoming replaces each value assignable to T with an envelope
// naming its registered concrete type.
func (t *RegisteredTransformer[T]) TransformIncoming(doc bson.D) (bson.D, error) {
	return MapValues(doc, func(value interface{}) (interface{}, bool, error) {
		item, ok := value.(T)
		if !ok {
			return nil, false, nil
		}
		name, err := reg.NameFor(item)
		if err != nil {
			return nil, false, fmt.Errorf("get type name for %#v: %w", item, err)
		}
		marshaled, err := bson.Marshal(item)
		if err != nil {
			return nil, false, fmt.Errorf("marshal %s fields: %w", name, err)
		}
		var payload bson.D
		if err = bson.Unmarshal(marshaled, &payload); err != nil {
			return nil, false, fmt.Errorf("unmarshal %s fields: %w", name, err)
		}
		return bson.D{
			{Key: TypeField, Value: name},
			{Key: dataField, Value: payload},
		}, true, nil
	})
}

// TransformOutgoing re-creates registered concrete types from their
// envelopes.
// An envelope naming an unregistered type, or one whose concrete type
// does not satisfy T, fails the pass.
func (t *RegisteredTransformer[T]) TransformOutgoing(doc bson.D) (bson.D, error) {
	return MapValues(doc, func(value interface{}) (interface{}, bool, error) {
		sub, ok := value.(bson.D)
		if !ok {
			return nil, false, nil
		}
		name, payload, ok := openEnvelope(sub)
		if !ok {
			return nil, false, nil
		}
		temp, err := reg.Make(name)
		if err != nil {
			return nil, false, fmt.Errorf("make instance of type %s: %w", name, err)
		}
		marshaled, err := bson.Marshal(payload)
		if err != nil {
			return nil, false, fmt.Errorf("marshal %s envelope data: %w", name, err)
		}
		if err = bson.Unmarshal(marshaled, temp); err != nil {
			return nil, false, fmt.Errorf("decode envelope contents: %w", err)
		}
		item, ok := temp.(T)
		if !ok {
			return nil, false, fmt.Errorf("type %s not generic type", name)
		}
		return item, true, nil
	})
}

// openEnvelope recognizes the two-field envelope produced by
// TransformIncoming and returns its parts.
func openEnvelope(sub bson.D) (string, bson.D, bool) {
	if len(sub) != 2 || sub[0].Key != TypeField || sub[1].Key != dataField {
		return "", nil, false
	}
	name, ok := sub[0].Value.(string)
	if !ok || name == "" {
		return "", nil, false
	}
	payload, ok := sub[1].Value.(bson.D)
	if !ok {
		return "", nil, false
	}
	return name, payload, true
}
