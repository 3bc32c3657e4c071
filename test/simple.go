package test

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

var SimpleValidatorJSON = `{
	"$jsonSchema": {
		"bsonType": "object",
		"required": ["alpha", "bravo", "charlie"],
		"properties": {
			"alpha": {
				"bsonType": "string"
			},
			"bravo": {
				"bsonType": "int"
			},
			"charlie": {
				"bsonType": "string"
			}
		}
	}
}`

////////////////////////////////////////////////////////////////////////////////

type SimpleKey struct {
	Alpha string
	Bravo int
}

func (sk *SimpleKey) CacheKey() string {
	return fmt.Sprintf("%s-%d", sk.Alpha, sk.Bravo)
}

func (sk *SimpleKey) Filter() bson.D {
	return bson.D{
		{Key: "alpha", Value: sk.Alpha},
		{Key: "bravo", Value: sk.Bravo},
	}
}

type SimpleItem struct {
	SimpleKey `bson:"inline"`
	Charlie   string
}

func (si *SimpleItem) Filter() bson.D {
	return bson.D{
		{Key: "alpha", Value: si.Alpha},
		{Key: "bravo", Value: si.Bravo},
	}
}

////////////////////////////////////////////////////////////////////////////////

var (
	SimpleItem1 = &SimpleItem{
		SimpleKey: SimpleKey{
			Alpha: "one",
			Bravo: 1,
		},
		Charlie: "First item standing",
	}
	SimpleItem2 = &SimpleItem{
		SimpleKey: SimpleKey{
			Alpha: "two",
			Bravo: 2,
		},
		Charlie: "Second item sitting",
	}
	SimpleItem3 = &SimpleItem{
		SimpleKey: SimpleKey{
			Alpha: "three",
			Bravo: 3,
		},
		Charlie: "Third item sleeping",
	}
	SimpleKeyOfTheBeast = &SimpleKey{
		Alpha: "beast",
		Bravo: 666,
	}
)
