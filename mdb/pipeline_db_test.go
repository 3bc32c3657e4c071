//go:build database

package mdb

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/madkins23/go-mongo-xform/mdbpipe"
	"github.com/madkins23/go-mongo-xform/test"
)

type pipelineDbTestSuite struct {
	AccessTestSuite
	collection *Collection
}

func TestPipelineDbSuite(t *testing.T) {
	suite.Run(t, new(pipelineDbTestSuite))
}

func (suite *pipelineDbTestSuite) SetupSuite() {
	binary, err := test.CurrencyBinaryTransformer()
	suite.Require().NoError(err)
	suite.SetupSuiteTransformers(binary)
	suite.collection = suite.ConnectCollection(testCollectionTransformed)
}

func (suite *pipelineDbTestSuite) TearDownTest() {
	suite.NoError(suite.collection.DeleteAll())
}

// TestRoundTrip stores a document holding a Currency value and reads it
// back, checking that the stored form is a tagged binary and the value
// returned to the application is a Currency again.
func (suite *pipelineDbTestSuite) TestRoundTrip() {
	doc := bson.D{
		{Key: "name", Value: "lunch"},
		{Key: "price", Value: test.NewCurrency(1295)},
	}
	suite.Require().NoError(suite.collection.Create(doc))

	// The storage-level representation is inspectable without the pipeline.
	raw, err := suite.collection.FindRaw(bson.D{{Key: "name", Value: "lunch"}})
	suite.Require().NoError(err)
	rawDoc, ok := raw.(bson.D)
	suite.Require().True(ok)
	suite.Require().Len(rawDoc, 3)
	blob, ok := rawDoc[2].Value.(primitive.Binary)
	suite.Require().True(ok)
	suite.Equal(test.CurrencySubtype, blob.Subtype)
	suite.Equal("1295", string(blob.Data))

	// The outgoing pass restores the application type.
	found, err := suite.collection.Find(bson.D{{Key: "name", Value: "lunch"}})
	suite.Require().NoError(err)
	foundDoc, ok := found.(bson.D)
	suite.Require().True(ok)
	suite.Require().Len(foundDoc, 3)
	price, ok := foundDoc[2].Value.(test.Currency)
	suite.Require().True(ok)
	suite.Equal(int64(1295), price.Cents())
}

// TestNested checks that a custom value inside a sub-document is
// encoded and decoded through the database.
func (suite *pipelineDbTestSuite) TestNested() {
	doc := bson.D{
		{Key: "name", Value: "dinner"},
		{Key: "detail", Value: bson.D{
			{Key: "price", Value: test.NewCurrency(4250)},
		}},
	}
	suite.Require().NoError(suite.collection.Create(doc))
	found, err := suite.collection.Find(bson.D{{Key: "name", Value: "dinner"}})
	suite.Require().NoError(err)
	foundDoc, ok := found.(bson.D)
	suite.Require().True(ok)
	suite.Require().Len(foundDoc, 3)
	detail, ok := foundDoc[2].Value.(bson.D)
	suite.Require().True(ok)
	suite.Require().Len(detail, 1)
	price, ok := detail[0].Value.(test.Currency)
	suite.Require().True(ok)
	suite.Equal(int64(4250), price.Cents())
}

// registeredDbTestSuite runs the registry-backed transformer through a
// real collection: interface-typed values are stored as discriminated
// envelopes and their concrete types re-created on read.
type registeredDbTestSuite struct {
	AccessTestSuite
	collection *Collection
}

func TestRegisteredDbSuite(t *testing.T) {
	suite.Run(t, new(registeredDbTestSuite))
}

func (suite *registeredDbTestSuite) SetupSuite() {
	suite.Require().NoError(test.RegisterQuantities())
	suite.SetupSuiteTransformers(mdbpipe.NewRegisteredTransformer[test.Quantity]())
	suite.collection = suite.ConnectCollection(&CollectionDefinition{Name: "test-collection-registered"})
}

func (suite *registeredDbTestSuite) TearDownTest() {
	suite.NoError(suite.collection.DeleteAll())
}

func (suite *registeredDbTestSuite) TestRoundTrip() {
	doc := bson.D{
		{Key: "name", Value: "mile"},
		{Key: "amount", Value: &test.Distance{Meters: test.DistanceMeters}},
	}
	suite.Require().NoError(suite.collection.Create(doc))
	found, err := suite.collection.Find(bson.D{{Key: "name", Value: "mile"}})
	suite.Require().NoError(err)
	foundDoc, ok := found.(bson.D)
	suite.Require().True(ok)
	suite.Require().Len(foundDoc, 3)
	amount, ok := foundDoc[2].Value.(test.Quantity)
	suite.Require().True(ok)
	suite.Equal("m", amount.Units())
	suite.Equal(test.DistanceMeters, amount.Magnitude())
}

func (suite *registeredDbTestSuite) TestMixedConcreteTypes() {
	doc := bson.D{
		{Key: "name", Value: "pound"},
		{Key: "amount", Value: &test.Weight{Grams: test.WeightGrams}},
	}
	suite.Require().NoError(suite.collection.Create(doc))
	found, err := suite.collection.Find(bson.D{{Key: "name", Value: "pound"}})
	suite.Require().NoError(err)
	foundDoc, ok := found.(bson.D)
	suite.Require().True(ok)
	amount, ok := foundDoc[2].Value.(*test.Weight)
	suite.Require().True(ok)
	suite.Equal(test.WeightGrams, amount.Grams)
}

// TestLateRegistration checks that a transformer added after connect is
// applied to subsequent operations.
func (suite *pipelineDbTestSuite) TestLateRegistration() {
	suite.access.AddTransformer(test.CurrencyDocTransformer())
	defer func() {
		// Rebuild the original pipeline for other tests.
		binary, err := test.CurrencyBinaryTransformer()
		suite.Require().NoError(err)
		suite.access.pipeline = mdbpipe.NewPipeline(binary)
	}()

	doc := bson.D{
		{Key: "name", Value: "tea"},
		{Key: "price", Value: test.NewCurrency(350)},
	}
	suite.Require().NoError(suite.collection.Create(doc))
	found, err := suite.collection.Find(bson.D{{Key: "name", Value: "tea"}})
	suite.Require().NoError(err)
	foundDoc, ok := found.(bson.D)
	suite.Require().True(ok)
	price, ok := foundDoc[2].Value.(test.Currency)
	suite.Require().True(ok)
	suite.Equal(int64(350), price.Cents())
}
