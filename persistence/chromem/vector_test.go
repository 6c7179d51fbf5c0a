package chromem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/flarexio/faqbot/vector"
)

type chromemTestSuite struct {
	suite.Suite
	ctx        context.Context
	collection vector.Collection
}

func (suite *chromemTestSuite) SetupTest() {
	ctx := context.Background()

	db, err := NewChromemVectorDB(vector.Config{Persistent: false}, nil)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	collection, err := db.Collection(ctx, suite.T().Name())
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.ctx = ctx
	suite.collection = collection
}

func (suite *chromemTestSuite) TestQueryEmptyCollection() {
	results, err := suite.collection.Query(suite.ctx, []float32{1, 0}, 3)
	suite.NoError(err)
	suite.Empty(results)
}

func (suite *chromemTestSuite) TestQueryOrdersBySimilarity() {
	docs := []vector.Document{
		{ID: "library", Content: "The library opens at 8 AM.", Embedding: []float32{0, 1, 0}},
		{ID: "hostel", Content: "Hostel fees are ₹45,000 per year.", Embedding: []float32{1, 0, 0}},
		{ID: "mixed", Content: "Hostel and library timings.", Embedding: []float32{0.7, 0.7, 0}},
	}

	err := suite.collection.Upsert(suite.ctx, docs)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	results, err := suite.collection.Query(suite.ctx, []float32{1, 0.1, 0}, 10)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.Len(results, 3, "k is clamped to the collection size")
	suite.Equal("hostel", results[0].ID)
	suite.Equal("mixed", results[1].ID)
	suite.Equal("library", results[2].ID)
	suite.GreaterOrEqual(results[0].Score, results[1].Score)
	suite.GreaterOrEqual(results[1].Score, results[2].Score)
}

func (suite *chromemTestSuite) TestUpsertReplacesSameID() {
	doc := vector.Document{ID: "chunk_1", Content: "first", Embedding: []float32{1, 0}}
	suite.NoError(suite.collection.Upsert(suite.ctx, []vector.Document{doc}))

	doc.Content = "second"
	suite.NoError(suite.collection.Upsert(suite.ctx, []vector.Document{doc}))

	count, err := suite.collection.Count(suite.ctx)
	suite.NoError(err)
	suite.Equal(1, count)

	results, err := suite.collection.Query(suite.ctx, []float32{1, 0}, 1)
	suite.NoError(err)
	suite.Len(results, 1)
	suite.Equal("second", results[0].Content)
}

func TestChromemTestSuite(t *testing.T) {
	suite.Run(t, new(chromemTestSuite))
}
