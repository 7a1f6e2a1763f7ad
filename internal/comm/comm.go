package comm

import (
	"encoding/json"
	"time"
)

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "scan", "scan-response"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

// ScanData is what the webapp scanner sends after a successful camera
// read. Format carries the scanner library symbology name (e.g. EAN_13),
// it is translated to the internal key at the card service boundary.
type ScanData struct {
	UserId   int64  `json:"user_id"`
	ChatId   int64  `json:"chat_id"`
	ChatType string `json:"chat_type"` // "private", "group", "supergroup", "channel"
	CardName string `json:"card_name"`
	Code     string `json:"code"`
	Format   string `json:"format"`
}

type CardData struct {
	Id            string    `json:"id"`
	OwnerId       int64     `json:"owner_id"`
	CardName      string    `json:"card_name"`
	CardCode      string    `json:"card_code"`
	BarcodeFormat string    `json:"barcode_format"`
	CreatedAt     time.Time `json:"created_at"`
}

type ScanResponse struct {
	Status string    `json:"status"` // "saved" or "error"
	Error  string    `json:"error,omitempty"`
	Card   *CardData `json:"card,omitempty"`
}
