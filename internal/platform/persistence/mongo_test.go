package persistence

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestMongoDB_Collection(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	// mongo.Connect does not dial, so a client without a server is enough here
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://localhost:27017"))
	require.NoError(t, err)

	mdb := &MongoDB{logger: logger, client: client, database: client.Database("ledger")}

	assert.Equal(t, "ledger", mdb.Database().Name())
	assert.Equal(t, "operations", mdb.Collection("operations").Name())
	assert.NoError(t, mdb.Close(context.Background()))
}
