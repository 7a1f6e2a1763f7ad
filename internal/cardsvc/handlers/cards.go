package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi"
	log "github.com/sirupsen/logrus"

	"github.com/cardkeeper/card-services/internal/barcode"
)

// maxScanUpload bounds the photo size accepted by the scan endpoint
const maxScanUpload = 10 << 20

type AddCardRequest struct {
	CardName      string `json:"card_name"`
	CardCode      string `json:"card_code"`
	BarcodeFormat string `json:"barcode_format"`
}

func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	ownerId, err := h.ownerFromRequest(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: 401, Error: "unauthorized"})
		return
	}

	cards, err := h.cardService.GetCards(r.Context(), ownerId)
	if err != nil {
		log.Errorf("Error [CardService.GetCards] %s", err)
		h.CreateResponse(w, Response{Code: 500, Error: "operation failed"})
		return
	}

	h.CreateResponse(w, Response{Code: 200, Data: cards})
}

func (h *Handler) AddCard(w http.ResponseWriter, r *http.Request) {
	ownerId, err := h.ownerFromRequest(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: 401, Error: "unauthorized"})
		return
	}

	var req AddCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, Response{Code: 400, Error: "invalid request body"})
		return
	}

	if req.CardName == "" {
		h.CreateResponse(w, Response{Code: 400, Error: "card_name is required"})
		return
	}

	// validation happens here, before the card ever reaches the store
	format := barcode.Format(req.BarcodeFormat)
	if ok, reason := barcode.Validate(req.CardCode, format); !ok {
		h.CreateResponse(w, Response{Code: 400, Error: reason})
		return
	}

	id, err := h.cardService.AddCard(r.Context(), ownerId, req.CardName, req.CardCode, req.BarcodeFormat)
	if err != nil {
		log.Errorf("Error [CardService.AddCard] %s", err)
		h.CreateResponse(w, Response{Code: 500, Error: "operation failed"})
		return
	}

	h.CreateResponse(w, Response{Code: 201, Message: "card saved", Data: map[string]string{"id": id}})
}

func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	ownerId, err := h.ownerFromRequest(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: 401, Error: "unauthorized"})
		return
	}

	card, err := h.cardService.GetCard(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		log.Errorf("Error [CardService.GetCard] %s", err)
		h.CreateResponse(w, Response{Code: 500, Error: "operation failed"})
		return
	}

	// a foreign card is reported exactly like a missing one
	if card == nil || card.OwnerId != ownerId {
		h.CreateResponse(w, Response{Code: 404, Error: "card not found"})
		return
	}

	h.CreateResponse(w, Response{Code: 200, Data: card})
}

// CardImage renders the stored card as a PNG barcode, regenerated on
// every request.
func (h *Handler) CardImage(w http.ResponseWriter, r *http.Request) {
	ownerId, err := h.ownerFromRequest(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: 401, Error: "unauthorized"})
		return
	}

	card, err := h.cardService.GetCard(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		log.Errorf("Error [CardService.GetCard] %s", err)
		h.CreateResponse(w, Response{Code: 500, Error: "operation failed"})
		return
	}
	if card == nil || card.OwnerId != ownerId {
		h.CreateResponse(w, Response{Code: 404, Error: "card not found"})
		return
	}

	img, err := barcode.Encode(card.CardCode, barcode.Format(card.BarcodeFormat))
	if err != nil {
		log.Errorf("Error [barcode.Encode] card %s: %s", card.Id, err)
		h.CreateResponse(w, Response{Code: 500, Error: "failed to generate barcode"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(img)
}

func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	ownerId, err := h.ownerFromRequest(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: 401, Error: "unauthorized"})
		return
	}

	ok, err := h.cardService.DeleteCard(r.Context(), chi.URLParam(r, "cardID"), ownerId)
	if err != nil {
		log.Errorf("Error [CardService.DeleteCard] %s", err)
		h.CreateResponse(w, Response{Code: 500, Error: "operation failed"})
		return
	}
	if !ok {
		h.CreateResponse(w, Response{Code: 404, Error: "card not found"})
		return
	}

	h.CreateResponse(w, Response{Code: 200, Message: "card deleted"})
}

func (h *Handler) SearchCards(w http.ResponseWriter, r *http.Request) {
	ownerId, err := h.ownerFromRequest(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: 401, Error: "unauthorized"})
		return
	}

	queryText := r.URL.Query().Get("q")
	if queryText == "" {
		h.CreateResponse(w, Response{Code: 400, Error: "q parameter is required"})
		return
	}

	cards, err := h.cardService.SearchCards(r.Context(), ownerId, queryText)
	if err != nil {
		log.Errorf("Error [CardService.SearchCards] %s", err)
		h.CreateResponse(w, Response{Code: 500, Error: "operation failed"})
		return
	}

	h.CreateResponse(w, Response{Code: 200, Data: cards})
}

// Scan decodes every barcode found in an uploaded photo. A photo with
// no detectable barcode is a 200 with an empty list, not an error.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	if _, err := h.ownerFromRequest(r); err != nil {
		h.CreateResponse(w, Response{Code: 401, Error: "unauthorized"})
		return
	}

	imageBytes, err := readScanPhoto(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: 400, Error: "could not read photo"})
		return
	}

	readings := barcode.Decode(imageBytes)
	h.CreateResponse(w, Response{Code: 200, Data: readings})
}

// readScanPhoto accepts either a multipart upload with a "photo" field
// or a raw image body.
func readScanPhoto(r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxScanUpload)

	if err := r.ParseMultipartForm(maxScanUpload); err == nil {
		file, _, err := r.FormFile("photo")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(file)
	}

	return io.ReadAll(r.Body)
}
