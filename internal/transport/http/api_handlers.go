package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-peer/internal/core"
)

// APIHandlers provides HTTP handlers for REST API endpoints.
type APIHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(hub *core.Hub, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{hub: hub, log: logger}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PeersResponse lists connected peers.
type PeersResponse struct {
	Peers []core.PeerInfo `json:"peers"`
}

// ListPeers returns the peers currently connected to the relay.
// GET /api/peers
func (h *APIHandlers) ListPeers(c *gin.Context) {
	peers, err := h.hub.Peers(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list peers")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "relay unavailable"})
		return
	}
	if peers == nil {
		peers = []core.PeerInfo{}
	}
	c.JSON(http.StatusOK, PeersResponse{Peers: peers})
}
