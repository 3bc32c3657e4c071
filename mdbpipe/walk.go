package mdbpipe

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// MapFunc examines a single document value.
// It returns the replacement value and true if it claims the value,
// or false to leave the value to the default traversal.
type MapFunc func(value interface{}) (interface{}, bool, error)

// MapValues returns a copy of doc with fn applied to every value.
// Values fn does not claim are recursed into when they are sub-documents;
// arrays are not traversed.
// There is no cycle protection: storage-serializable documents are acyclic.
func MapValues(doc bson.D, fn MapFunc) (bson.D, error) {
	result := make(bson.D, len(doc))
	for i, elem := range doc {
		value, claimed, err := fn(elem.Value)
		if err != nil {
			return nil, fmt.Errorf("map value of '%s': %w", elem.Key, err)
		}
		if !claimed {
			if sub, ok := elem.Value.(bson.D); ok {
				if value, err = MapValues(sub, fn); err != nil {
					return nil, err
				}
			} else {
				value = elem.Value
			}
		}
		result[i] = bson.E{Key: elem.Key, Value: value}
	}
	return result, nil
}
