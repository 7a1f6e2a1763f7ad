package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/cardkeeper/card-services/internal/comm"
	"github.com/cardkeeper/card-services/internal/scansvc/broker"
)

type Ws struct {
	connMap sync.Map // socketId -> *websocket.Conn
	Broker  *broker.Broker
}

func NewWs() *Ws {
	return &Ws{}
}

// SocketMessage handles a message from a scanner webapp client
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "scan":
		s.handleScan(socketId, message)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

// handleScan forwards a camera read to the card service. The payload is
// only sanity checked here, format translation and code validation
// happen at the card service boundary.
func (s *Ws) handleScan(socketId string, msg *comm.WSMessage) {
	scan := comm.ScanData{}
	if err := json.Unmarshal(msg.Data, &scan); err != nil {
		log.Errorf("Error: invalid_scan_data malformed scan payload %s", err)
		return
	}

	if scan.UserId == 0 && scan.ChatId == 0 {
		log.Error("Invalid scan payload: missing chat context fields")
		return
	}
	if scan.Code == "" {
		log.Error("Invalid scan payload: empty code")
		return
	}

	// stamp the socket id so the response finds its way back
	msg.SocketId = socketId

	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Failed to marshal WSMessage for NATS: %v", err)
		return
	}

	topic := "scan.service"
	if err := s.Broker.Publish(topic, bytes); err != nil {
		log.Errorf("Failed to publish to NATS topic %s: %v", topic, err)
		return
	}

	log.Infof("Published scan from user %d to topic %s", scan.UserId, topic)
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
}
