package service

import (
	"context"

	"github.com/cardkeeper/card-services/internal/cardsvc/models"
	"github.com/cardkeeper/card-services/internal/cardsvc/store"
)

type CardService struct {
	store *store.CardStore
}

func NewCardService(store *store.CardStore) *CardService {
	return &CardService{store: store}
}

// ResolveOwner maps a chat context to the single owner scope every store
// call is keyed by: group-like chats share cards under the chat id,
// private chats keep them under the user id. Resolving once at the
// boundary keeps the store ignorant of chat semantics.
func ResolveOwner(userId, chatId int64, chatType string) int64 {
	switch chatType {
	case "group", "supergroup", "channel":
		return chatId
	default:
		return userId
	}
}

func (s *CardService) AddCard(ctx context.Context, ownerId int64, cardName, cardCode, barcodeFormat string) (string, error) {
	return s.store.AddCard(ctx, ownerId, cardName, cardCode, barcodeFormat)
}

func (s *CardService) GetCards(ctx context.Context, ownerId int64) ([]models.Card, error) {
	return s.store.GetCards(ctx, ownerId)
}

func (s *CardService) GetCard(ctx context.Context, cardId string) (*models.Card, error) {
	return s.store.GetCard(ctx, cardId)
}

func (s *CardService) DeleteCard(ctx context.Context, cardId string, ownerId int64) (bool, error) {
	return s.store.DeleteCard(ctx, cardId, ownerId)
}

func (s *CardService) SearchCards(ctx context.Context, ownerId int64, queryText string) ([]models.Card, error) {
	return s.store.SearchCards(ctx, ownerId, queryText)
}
