package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/cardkeeper/card-services/internal/barcode"
	"github.com/cardkeeper/card-services/internal/cardsvc/service"
	"github.com/cardkeeper/card-services/internal/comm"
)

// ResponseTopic is where scan outcomes are published for the scanner
// gateway to deliver back to the originating socket.
const ResponseTopic = "card.service"

type Broker struct {
	Conn        *nats.Conn
	CardService *service.CardService
}

func NewBroker(nc *nats.Conn, cardService *service.CardService) *Broker {
	return &Broker{
		Conn:        nc,
		CardService: cardService,
	}
}

// SubscribeScanService consumes scan events coming from the scanner
// gateway.
func (b *Broker) SubscribeScanService(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessage)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// handleMessage receives messages from the scanner gateway
func (b *Broker) handleMessage(msgNat *nats.Msg) {
	msg := &comm.WSMessage{}
	err := json.Unmarshal(msgNat.Data, &msg)
	if err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	switch msg.Type {
	case "scan":
		b.handleScan(msg)
	default:
		log.Warnf("unknown message type received: %s", msg.Type)
	}
}

// handleScan validates a scanned code and stores it as a card under the
// resolved owner scope.
func (b *Broker) handleScan(msg *comm.WSMessage) {
	scan := comm.ScanData{}
	if err := json.Unmarshal(msg.Data, &scan); err != nil {
		log.Errorf("Error [broker.handleScan] malformed scan payload %s", err)
		b.PublishScanResponse(comm.ScanResponse{Status: "error", Error: "invalid scan payload"}, msg.SocketId)
		return
	}

	// scanner symbology names are translated at this boundary
	format := barcode.MapScannerFormat(scan.Format)

	if ok, reason := barcode.Validate(scan.Code, format); !ok {
		b.PublishScanResponse(comm.ScanResponse{Status: "error", Error: reason}, msg.SocketId)
		return
	}

	cardName := scan.CardName
	if cardName == "" {
		cardName = "Scanned card"
	}

	ownerId := service.ResolveOwner(scan.UserId, scan.ChatId, scan.ChatType)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	id, err := b.CardService.AddCard(ctx, ownerId, cardName, scan.Code, string(format))
	if err != nil {
		log.Errorf("Error [CardService.AddCard] %s", err)
		b.PublishScanResponse(comm.ScanResponse{Status: "error", Error: "failed to save card"}, msg.SocketId)
		return
	}

	b.PublishScanResponse(comm.ScanResponse{
		Status: "saved",
		Card: &comm.CardData{
			Id:            id,
			OwnerId:       ownerId,
			CardName:      cardName,
			CardCode:      scan.Code,
			BarcodeFormat: string(format),
			CreatedAt:     time.Now().UTC(),
		},
	}, msg.SocketId)
}

// PublishScanResponse sends the scan outcome to the scanner gateway,
// addressed to the originating socket.
func (b *Broker) PublishScanResponse(resp comm.ScanResponse, socketId string) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	msg := comm.WSMessage{
		Type:     "scan-response",
		Data:     data,
		SocketId: socketId,
	}

	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	if err := b.Conn.Publish(ResponseTopic, bytes); err != nil {
		log.Errorf("Error publishing to topic %s: %s", ResponseTopic, err)
	}
}
