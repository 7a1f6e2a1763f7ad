package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/jwtauth"

	"github.com/cardkeeper/card-services/internal/cardsvc/service"
)

type Handler struct {
	tokenAuth   *jwtauth.JWTAuth
	cardService *service.CardService
}

func NewHandler(cardService *service.CardService) *Handler {
	return &Handler{cardService: cardService}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	json.NewEncoder(w).Encode(rsp)
}

// ownerFromRequest resolves the owner scope once from the JWT claims.
// Every card operation below threads the result as an opaque scalar.
func (h *Handler) ownerFromRequest(r *http.Request) (int64, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return 0, err
	}

	userId := claimInt64(claims, "user_id")
	chatId := claimInt64(claims, "chat_id")
	chatType, _ := claims["chat_type"].(string)

	if userId == 0 && chatId == 0 {
		return 0, fmt.Errorf("token carries no owner claims")
	}

	return service.ResolveOwner(userId, chatId, chatType), nil
}

// claim numbers arrive as different concrete types depending on whether
// the token was parsed from the wire or built in-process
func claimInt64(claims map[string]interface{}, key string) int64 {
	switch v := claims[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	default:
		return 0
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "card service is running at port " + os.Getenv("CARD_SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	json.NewEncoder(w).Encode(rsp)
}
