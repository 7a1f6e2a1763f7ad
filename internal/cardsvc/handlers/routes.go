package handlers

import (
	"os"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		r.Get("/health", h.HealthHandler)

		// Secure routes: the orchestrator (bot or scanner webapp)
		// authenticates with a JWT carrying the chat context claims
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/cards", h.ListCards)
			r.Post("/cards", h.AddCard)
			r.Get("/cards/search", h.SearchCards)
			r.Get("/cards/{cardID}", h.GetCard)
			r.Get("/cards/{cardID}/image", h.CardImage)
			r.Delete("/cards/{cardID}", h.DeleteCard)

			r.Post("/scan", h.Scan)
		})
	})
}

func (h *Handler) InitAuth() {
	var jwtKey = os.Getenv("JWT_SECRET_KEY")
	h.tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)

	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()

	_, tokenString, _ := h.tokenAuth.Encode(map[string]interface{}{
		"user_id":   8003022,
		"chat_type": "private",
		"exp":       expirationTime,
	})

	// For debugging only, comment it out in production
	log.Infof("DEBUG: JWT for testing expires soon : %s", tokenString)
}
