package models

import "time"

// Card is a stored loyalty card. OwnerId is the user id in private
// chats or the chat id in group chats; every read and write is scoped
// by it. OwnerId, CardCode and BarcodeFormat never change after
// creation, edits are modeled by the caller as delete plus recreate.
type Card struct {
	Id            string    `json:"id"`
	OwnerId       int64     `json:"owner_id"`
	CardName      string    `json:"card_name"`
	CardCode      string    `json:"card_code"`
	BarcodeFormat string    `json:"barcode_format"` // "ean13", "code128" or "qrcode"
	CreatedAt     time.Time `json:"created_at"`
}
