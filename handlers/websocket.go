package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chattu/chattu-backend/logger"
	"github.com/chattu/chattu-backend/realtime"
	"github.com/chattu/chattu-backend/responses"
	"github.com/chattu/chattu-backend/utils"
)

const admissionTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
	HandshakeTimeout: 10 * time.Second,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket admits a realtime session. The session cookie is
// validated and the user loaded BEFORE the upgrade, so a bad credential
// gets a plain 401 instead of a connection that dies after handshake.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	tokenStr, err := utils.SessionTokenFromRequest(r)
	if err != nil {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Please login to access this resource."})
		return
	}
	claims, err := utils.ValidateToken(h.cfg.JWTSecret, tokenStr)
	if err != nil {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Your token is invalid or expired. Please log in again."})
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Your token is invalid or expired. Please log in again."})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), admissionTimeout)
	defer cancel()
	user, err := h.stores.Users.FindByID(ctx, userID)
	if err != nil {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Please login to access this resource."})
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := realtime.NewConnection(h.hub, ws, user)
	conn.Serve()
}
