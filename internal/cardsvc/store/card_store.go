package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	log "github.com/sirupsen/logrus"

	"github.com/cardkeeper/card-services/internal/cardsvc/models"
)

const (
	IndexName = "barcode_cards"

	listLimit   = 100 // cap for a personal or group card list, not a paging API
	searchLimit = 20

	clusterRetries    = 30
	clusterRetryDelay = 2 * time.Second
)

// indexBody is the fixed card index schema. Single shard and no replicas
// is the single node deployment assumption, card_name is analyzed for
// full text search and carries a keyword sub-field for exact lookups.
const indexBody = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0
  },
  "mappings": {
    "properties": {
      "owner_id": {"type": "long"},
      "card_name": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "card_code": {"type": "keyword"},
      "barcode_format": {"type": "keyword"},
      "created_at": {"type": "date"}
    }
  }
}`

type CardStore struct {
	client *opensearch.Client
}

func NewCardStore(client *opensearch.Client) *CardStore {
	return &CardStore{client: client}
}

// WaitForCluster blocks until the search cluster answers an info probe,
// with a fixed number of retries. Exhausting the retries is fatal for
// the caller: the service must not start serving without storage.
func (s *CardStore) WaitForCluster() error {
	for attempt := 1; attempt <= clusterRetries; attempt++ {
		res, err := s.client.Info()
		if err == nil && !res.IsError() {
			var info struct {
				Version struct {
					Number string `json:"number"`
				} `json:"version"`
			}
			if decodeErr := json.NewDecoder(res.Body).Decode(&info); decodeErr == nil {
				log.Infof("connected to OpenSearch %s", info.Version.Number)
			}
			res.Body.Close()
			return nil
		}
		if err == nil {
			res.Body.Close()
		}

		log.Warnf("OpenSearch not ready (attempt %d/%d), retrying in %s", attempt, clusterRetries, clusterRetryDelay)
		time.Sleep(clusterRetryDelay)
	}

	return fmt.Errorf("could not connect to OpenSearch after %d attempts", clusterRetries)
}

// InitIndex creates the card index if it does not exist. An index with
// the pre owner-scope schema (user_id only) is deleted and recreated:
// a deliberate lossy one-shot migration, historical card data is
// disposable relative to schema correctness.
func (s *CardStore) InitIndex(ctx context.Context) error {
	res, err := s.client.Indices.Exists(
		[]string{IndexName},
		s.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to check index %q: %w", IndexName, err)
	}
	exists := res.StatusCode == 200
	res.Body.Close()

	if !exists {
		if err := s.createIndex(ctx); err != nil {
			return err
		}
		log.Infof("created index %q", IndexName)
		return nil
	}

	hasOwner, err := s.mappingHasField(ctx, "owner_id")
	if err != nil {
		return err
	}
	if hasOwner {
		log.Infof("index %q already exists", IndexName)
		return nil
	}

	log.Infof("index %q has the old user_id schema, recreating with owner_id", IndexName)
	del, err := s.client.Indices.Delete(
		[]string{IndexName},
		s.client.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to delete index %q: %w", IndexName, err)
	}
	del.Body.Close()

	if err := s.createIndex(ctx); err != nil {
		return err
	}
	log.Infof("recreated index %q with owner_id schema", IndexName)
	return nil
}

func (s *CardStore) createIndex(ctx context.Context) error {
	res, err := s.client.Indices.Create(
		IndexName,
		s.client.Indices.Create.WithBody(strings.NewReader(indexBody)),
		s.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index %q: %w", IndexName, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to create index %q: %s", IndexName, res.String())
	}
	return nil
}

func (s *CardStore) mappingHasField(ctx context.Context, field string) (bool, error) {
	res, err := s.client.Indices.GetMapping(
		s.client.Indices.GetMapping.WithIndex(IndexName),
		s.client.Indices.GetMapping.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("failed to get mapping of %q: %w", IndexName, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return false, fmt.Errorf("failed to get mapping of %q: %s", IndexName, res.String())
	}

	var mapping map[string]struct {
		Mappings struct {
			Properties map[string]json.RawMessage `json:"properties"`
		} `json:"mappings"`
	}
	if err := json.NewDecoder(res.Body).Decode(&mapping); err != nil {
		return false, fmt.Errorf("failed to parse mapping of %q: %w", IndexName, err)
	}

	index, ok := mapping[IndexName]
	if !ok {
		return false, nil
	}
	_, ok = index.Mappings.Properties[field]
	return ok, nil
}

// AddCard stores a card and returns its document id. The write is
// indexed with refresh=wait_for so the interactive add-then-list flow
// observes it immediately. Duplicate names or codes for the same owner
// are permitted.
func (s *CardStore) AddCard(ctx context.Context, ownerId int64, cardName, cardCode, barcodeFormat string) (string, error) {
	doc := map[string]interface{}{
		"owner_id":       ownerId,
		"card_name":      cardName,
		"card_code":      cardCode,
		"barcode_format": barcodeFormat,
		"created_at":     time.Now().UTC().Format(time.RFC3339Nano),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal card: %w", err)
	}

	res, err := s.client.Index(
		IndexName,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithRefresh("wait_for"),
	)
	if err != nil {
		return "", fmt.Errorf("failed to index card: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return "", fmt.Errorf("failed to index card: %s", res.String())
	}

	var out struct {
		Id string `json:"_id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to parse index response: %w", err)
	}

	return out.Id, nil
}

// GetCards returns all cards belonging to ownerId, oldest first.
func (s *CardStore) GetCards(ctx context.Context, ownerId int64) ([]models.Card, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"owner_id": ownerId},
		},
		"sort": []map[string]interface{}{
			{"created_at": map[string]interface{}{"order": "asc"}},
		},
		"size": listLimit,
	}

	return s.searchCards(ctx, query)
}

// GetCard fetches a single card by document id, (nil, nil) when absent.
// It does not filter by owner, callers must re-check ownership before
// exposing or mutating the card.
func (s *CardStore) GetCard(ctx context.Context, cardId string) (*models.Card, error) {
	res, err := s.client.Get(
		IndexName,
		cardId,
		s.client.Get.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", cardId, err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("failed to get card %s: %s", cardId, res.String())
	}

	var out struct {
		Id     string      `json:"_id"`
		Source models.Card `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to parse card %s: %w", cardId, err)
	}

	card := out.Source
	card.Id = out.Id
	return &card, nil
}

// DeleteCard deletes a card only if it belongs to ownerId. A missing or
// foreign card is a routine negative result, not an error.
func (s *CardStore) DeleteCard(ctx context.Context, cardId string, ownerId int64) (bool, error) {
	card, err := s.GetCard(ctx, cardId)
	if err != nil {
		return false, err
	}
	if card == nil || card.OwnerId != ownerId {
		return false, nil
	}

	res, err := s.client.Delete(
		IndexName,
		cardId,
		s.client.Delete.WithContext(ctx),
		s.client.Delete.WithRefresh("wait_for"),
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete card %s: %w", cardId, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return false, fmt.Errorf("failed to delete card %s: %s", cardId, res.String())
	}

	return true, nil
}

// SearchCards runs a full text match over card names within one owner
// scope.
func (s *CardStore) SearchCards(ctx context.Context, ownerId int64, queryText string) ([]models.Card, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{"term": map[string]interface{}{"owner_id": ownerId}},
					{"match": map[string]interface{}{"card_name": queryText}},
				},
			},
		},
		"size": searchLimit,
	}

	return s.searchCards(ctx, query)
}

func (s *CardStore) searchCards(ctx context.Context, query map[string]interface{}) ([]models.Card, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(IndexName),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search cards: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("failed to search cards: %s", res.String())
	}

	var out struct {
		Hits struct {
			Hits []struct {
				Id     string      `json:"_id"`
				Source models.Card `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	cards := make([]models.Card, 0, len(out.Hits.Hits))
	for _, hit := range out.Hits.Hits {
		card := hit.Source
		card.Id = hit.Id
		cards = append(cards, card)
	}

	return cards, nil
}
