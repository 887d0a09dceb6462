package handlers

import (
	"net/http"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/lendborrow/lendborrow-api/internal/middleware"
	"github.com/lendborrow/lendborrow-api/internal/services"
	"github.com/lendborrow/lendborrow-api/internal/walletgate"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// SessionHandler exposes wallet gate sessions to the browser
type SessionHandler struct {
	sessions *services.SessionService
	upgrader websocket.Upgrader
}

// NewSessionHandler creates a session handler. Websocket upgrades are
// accepted from allowedOrigins and from clients that send no Origin.
func NewSessionHandler(sessions *services.SessionService, allowedOrigins []string) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// CreateSession godoc
// @Summary Create a wallet session
// @Description Starts a new session with no wallet connected
// @Tags sessions
// @Accept json
// @Produce json
// @Success 201 {object} services.SessionSnapshot
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	sendSuccess(c, http.StatusCreated, h.sessions.CreateSession())
}

// GetSession godoc
// @Summary Get a wallet session
// @Description Returns the connection, classification and navigation state of a session
// @Tags sessions
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} services.SessionSnapshot
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{session_id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	snap, err := h.sessions.GetSession(id)
	if err != nil {
		handleSessionError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, snap)
}

// ConnectWallet godoc
// @Summary Connect a wallet
// @Description Records the wallet connected in the browser and starts classifying it. An empty address disconnects.
// @Tags sessions
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Param body body ConnectWalletRequest true "Connected wallet"
// @Success 200 {object} services.SessionSnapshot
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{session_id}/connection [put]
func (h *SessionHandler) ConnectWallet(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	var req ConnectWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	address := walletgate.ConnectionAddress("")
	if req.Address != "" {
		if !common.IsHexAddress(req.Address) {
			sendError(c, http.StatusBadRequest, "Invalid wallet address", nil)
			return
		}
		address = walletgate.ConnectionAddress(common.HexToAddress(req.Address).Hex())
	}

	snap, err := h.sessions.Connect(id, address)
	if err != nil {
		handleSessionError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, snap)
}

// DisconnectWallet godoc
// @Summary Disconnect the wallet
// @Description Clears the session's wallet without writing the shared wallet type
// @Tags sessions
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} services.SessionSnapshot
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{session_id}/connection [delete]
func (h *SessionHandler) DisconnectWallet(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	snap, err := h.sessions.Disconnect(id)
	if err != nil {
		handleSessionError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, snap)
}

// CloseSession godoc
// @Summary Close a wallet session
// @Description Stops the session and ends its navigation streams
// @Tags sessions
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{session_id} [delete]
func (h *SessionHandler) CloseSession(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	if err := h.sessions.CloseSession(id); err != nil {
		handleSessionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StreamNavigation godoc
// @Summary Stream navigation decisions
// @Description Upgrades to a websocket and pushes a NavigationEvent for every navigation made in the session until the session or the client goes away
// @Tags sessions
// @Param session_id path string true "Session ID"
// @Success 101 {object} services.NavigationEvent "Switching Protocols"
// @Failure 400 {object} ErrorResponse
// @Failure 403 "Origin not allowed"
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{session_id}/navigation [get]
func (h *SessionHandler) StreamNavigation(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	events, unsubscribe, err := h.sessions.SubscribeNavigation(id)
	if err != nil {
		handleSessionError(c, err)
		return
	}
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already replied
		return
	}
	defer conn.Close()

	log := middleware.LogWithCorrelationID(c.Request.Context()).With(zap.String("session_id", id.String()))
	log.Debug("Navigation stream opened")

	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, open := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !open {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Debug("Navigation stream write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-clientGone:
			log.Debug("Navigation stream closed by client")
			return
		}
	}
}
