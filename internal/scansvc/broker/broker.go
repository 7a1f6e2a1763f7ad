package broker

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/cardkeeper/card-services/internal/comm"
)

type Broker struct {
	Conn          *nats.Conn
	GetConnection func(string) (*websocket.Conn, bool)
}

func NewBroker(conn *nats.Conn, fncGetConnection func(string) (*websocket.Conn, bool)) *Broker {
	return &Broker{
		Conn:          conn,
		GetConnection: fncGetConnection,
	}
}

// Subscribe consumes responses from the card service
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// Publish forwards a message to the card service
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

// handleMessages receives messages from the card service
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	message := &comm.WSMessage{}
	err := json.Unmarshal(msgNats.Data, &message)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	switch message.Type {
	case "scan-response":
		b.sendMessage(message)
	default:
		log.Warnf("unknown message type received: %s", message.Type)
	}
}

// sendMessage delivers a message to the originating web client
func (b *Broker) sendMessage(m *comm.WSMessage) {
	socketId := m.SocketId
	conn, ok := b.GetConnection(socketId)
	if !ok {
		log.Warnf("no websocket connection for socket %s, dropping response", socketId)
		return
	}

	if err := conn.WriteJSON(m); err != nil {
		log.Errorf("Error writing to socket %s: %s", socketId, err)
	}
}
