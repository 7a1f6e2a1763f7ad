package store

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*CardStore, *fakeOpenSearch) {
	t.Helper()

	fake := newFakeOpenSearch()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := opensearch.NewClient(opensearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	return NewCardStore(client), fake
}

func TestWaitForCluster(t *testing.T) {
	s, _ := newTestStore(t)
	assert.NoError(t, s.WaitForCluster())
}

func TestInitIndex_CreatesOnceAndIsIdempotent(t *testing.T) {
	s, fake := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InitIndex(ctx))
	assert.True(t, fake.indexExists)
	assert.Contains(t, fake.properties, "owner_id")
	assert.Equal(t, 1, fake.createCalls)

	// second call must be a no-op
	require.NoError(t, s.InitIndex(ctx))
	assert.Equal(t, 1, fake.createCalls)
	assert.Equal(t, 0, fake.deleteCalls)
}

func TestInitIndex_RecreatesOldUserIdSchema(t *testing.T) {
	s, fake := newTestStore(t)
	fake.seedOldSchema()

	require.NoError(t, s.InitIndex(context.Background()))

	// old index dropped, new schema in place, legacy data gone
	assert.Equal(t, 1, fake.deleteCalls)
	assert.Equal(t, 1, fake.createCalls)
	assert.Contains(t, fake.properties, "owner_id")
	assert.Zero(t, fake.docCount())
}

func TestAddCard_OwnerIsolationAndOrder(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.InitIndex(ctx))

	idA, err := s.AddCard(ctx, 1, "Alpha", "123456789012", "ean13")
	require.NoError(t, err)
	idB, err := s.AddCard(ctx, 1, "Beta", "ABC-123", "code128")
	require.NoError(t, err)
	_, err = s.AddCard(ctx, 2, "Gamma", "https://example.com", "qrcode")
	require.NoError(t, err)

	// read-after-write: the listing directly after the adds sees them,
	// owner 2's card never shows up
	cards, err := s.GetCards(ctx, 1)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, idA, cards[0].Id)
	assert.Equal(t, "Alpha", cards[0].CardName)
	assert.Equal(t, int64(1), cards[0].OwnerId)
	assert.Equal(t, idB, cards[1].Id)
	assert.Equal(t, "ABC-123", cards[1].CardCode)
	assert.Equal(t, "code128", cards[1].BarcodeFormat)
}

func TestGetCard(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.InitIndex(ctx))

	id, err := s.AddCard(ctx, 7, "Gym", "777777777777", "ean13")
	require.NoError(t, err)

	card, err := s.GetCard(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.Equal(t, id, card.Id)
	assert.Equal(t, int64(7), card.OwnerId)
	assert.False(t, card.CreatedAt.IsZero())

	absent, err := s.GetCard(ctx, "no-such-card")
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestDeleteCard_OwnerCheck(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.InitIndex(ctx))

	id, err := s.AddCard(ctx, 1, "Alpha", "123456789012", "ean13")
	require.NoError(t, err)

	// foreign owner: refused, card stays retrievable
	ok, err := s.DeleteCard(ctx, id, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	card, err := s.GetCard(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, card)

	// rightful owner: deleted, subsequent get is absent
	ok, err = s.DeleteCard(ctx, id, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	card, err = s.GetCard(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, card)

	// deleting a missing card is a negative result, not an error
	ok, err = s.DeleteCard(ctx, id, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSearchCards(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.InitIndex(ctx))

	_, err := s.AddCard(ctx, 1, "Supermarket Plus", "111111111111", "ean13")
	require.NoError(t, err)
	_, err = s.AddCard(ctx, 1, "Gym", "222222222222", "ean13")
	require.NoError(t, err)
	_, err = s.AddCard(ctx, 2, "Supermarket", "333333333333", "ean13")
	require.NoError(t, err)

	cards, err := s.SearchCards(ctx, 1, "supermarket")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Supermarket Plus", cards[0].CardName)
	assert.Equal(t, int64(1), cards[0].OwnerId)
}
