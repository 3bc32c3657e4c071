package mdbpipe

import (
	"fmt"
	"os"
	"strconv"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
)

type DocTransformerTestSuite struct {
	suite.Suite
	showTransformed bool
	pipeline        *Pipeline
}

func (suite *DocTransformerTestSuite) SetupSuite() {
	if showTransformed, found := os.LookupEnv("GO-MONGO-XFORM-SHOW-TRANSFORMED"); found {
		var err error
		suite.showTransformed, err = strconv.ParseBool(showTransformed)
		suite.Require().NoError(err)
	}
	suite.pipeline = NewPipeline(customDocTransformer())
}

func TestDocTransformerSuite(t *testing.T) {
	suite.Run(t, new(DocTransformerTestSuite))
}

//////////////////////////////////////////////////////////////////////////

// TestEncoding checks the storage encoding of a top-level custom value:
// a sub-document carrying the discriminator field followed by the payload.
func (suite *DocTransformerTestSuite) TestEncoding() {
	incoming, err := suite.pipeline.ApplyIncoming(bson.D{{Key: "custom", Value: newCustomValue(5)}})
	suite.Require().NoError(err)
	suite.Equal(bson.D{
		{Key: "custom", Value: bson.D{
			{Key: TypeField, Value: "custom"},
			{Key: "x", Value: 5},
		}},
	}, incoming)
	if suite.showTransformed {
		spew.Dump(incoming)
	}

	outgoing, err := suite.pipeline.ApplyOutgoing(incoming)
	suite.Require().NoError(err)
	suite.Require().Len(outgoing, 1)
	restored, ok := outgoing[0].Value.(customValue)
	suite.Require().True(ok)
	suite.Equal(5, restored.X())
}

// TestRoundTrip checks that documents holding custom values are recovered
// by the outgoing pass, compared through their accessor values.
func (suite *DocTransformerTestSuite) TestRoundTrip() {
	doc := bson.D{
		{Key: "alpha", Value: "text"},
		{Key: "first", Value: newCustomValue(1)},
		{Key: "second", Value: newCustomValue(2)},
	}
	incoming, err := suite.pipeline.ApplyIncoming(doc)
	suite.Require().NoError(err)
	outgoing, err := suite.pipeline.ApplyOutgoing(incoming)
	suite.Require().NoError(err)
	suite.Equal(doc, outgoing)
}

// TestNested checks that a custom value three levels deep inside
// sub-documents is encoded on the way in and decoded on the way out.
func (suite *DocTransformerTestSuite) TestNested() {
	doc := bson.D{
		{Key: "level1", Value: bson.D{
			{Key: "level2", Value: bson.D{
				{Key: "level3", Value: bson.D{
					{Key: "custom", Value: newCustomValue(7)},
				}},
			}},
		}},
	}
	incoming, err := suite.pipeline.ApplyIncoming(doc)
	suite.Require().NoError(err)
	suite.Equal("custom", digToCustom(suite, incoming)[0].Value)

	outgoing, err := suite.pipeline.ApplyOutgoing(incoming)
	suite.Require().NoError(err)
	suite.Equal(doc, outgoing)
}

// TestSequenceNotTraversed checks that custom values inside arrays pass
// through unchanged: traversal recurses into sub-documents only.
func (suite *DocTransformerTestSuite) TestSequenceNotTraversed() {
	doc := bson.D{
		{Key: "list", Value: bson.A{newCustomValue(9)}},
	}
	incoming, err := suite.pipeline.ApplyIncoming(doc)
	suite.Require().NoError(err)
	suite.Equal(doc, incoming)
}

// TestMalformedPayload checks that a sub-document carrying the
// discriminator but a bad payload fails the pass instead of
// returning a partial value.
func (suite *DocTransformerTestSuite) TestMalformedPayload() {
	_, err := suite.pipeline.ApplyOutgoing(bson.D{
		{Key: "custom", Value: bson.D{
			{Key: TypeField, Value: "custom"},
			{Key: "x", Value: "bogus"},
		}},
	})
	suite.Require().Error(err)
	suite.ErrorContains(err, "decode 'custom' value")
}

// TestMissingPayload checks the same for a discriminator with no payload.
func (suite *DocTransformerTestSuite) TestMissingPayload() {
	_, err := suite.pipeline.ApplyOutgoing(bson.D{
		{Key: "custom", Value: bson.D{
			{Key: TypeField, Value: "custom"},
		}},
	})
	suite.Require().Error(err)
}

// TestOtherTag checks that sub-documents tagged for another transformer
// are recursed into but not claimed.
func (suite *DocTransformerTestSuite) TestOtherTag() {
	doc := bson.D{
		{Key: "other", Value: bson.D{
			{Key: TypeField, Value: "alien"},
			{Key: "x", Value: 5},
		}},
	}
	outgoing, err := suite.pipeline.ApplyOutgoing(doc)
	suite.Require().NoError(err)
	suite.Equal(doc, outgoing)
}

//////////////////////////////////////////////////////////////////////////

// digToCustom returns the innermost sub-document of the TestNested shape.
func digToCustom(suite *DocTransformerTestSuite, doc bson.D) bson.D {
	for level := 1; level <= 3; level++ {
		suite.Require().Len(doc, 1)
		sub, ok := doc[0].Value.(bson.D)
		suite.Require().True(ok, fmt.Sprintf("sub-document at level %d", level))
		doc = sub
	}
	suite.Require().Len(doc, 1)
	tagged, ok := doc[0].Value.(bson.D)
	suite.Require().True(ok)
	return tagged
}
