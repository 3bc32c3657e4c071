package mdb

import "github.com/madkins23/go-mongo-xform/test"

var (
	testCollection = &CollectionDefinition{
		Name: "test-collection",
	}
	testCollectionValidation = &CollectionDefinition{
		Name:           "test-collection-validation",
		ValidationJSON: test.SimpleValidatorJSON,
	}
	testCollectionStringValues = &CollectionDefinition{
		Name: "test-collection-string-values",
	}
	testCollectionTransformed = &CollectionDefinition{
		Name: "test-collection-transformed",
	}
)
