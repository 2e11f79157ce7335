// Package handlers contains the REST controllers, the websocket
// admission handler, and the router wiring them together.
package handlers

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/chattu/chattu-backend/config"
	"github.com/chattu/chattu-backend/middleware"
	"github.com/chattu/chattu-backend/models"
	"github.com/chattu/chattu-backend/realtime"
	"github.com/chattu/chattu-backend/repository"
	"github.com/chattu/chattu-backend/responses"
	"github.com/chattu/chattu-backend/uploads"
	"github.com/chattu/chattu-backend/utils"
)

// Handler carries the shared collaborators by reference: the realtime
// hub (so REST actions can emit events), the document stores, and the
// upload service.
type Handler struct {
	cfg     *config.Config
	hub     *realtime.Hub
	stores  *repository.Stores
	uploads uploads.Service
}

func New(cfg *config.Config, hub *realtime.Hub, stores *repository.Stores, up uploads.Service) *Handler {
	return &Handler{cfg: cfg, hub: hub, stores: stores, uploads: up}
}

func (h *Handler) sessionTTL() time.Duration {
	return time.Duration(h.cfg.CookieDays) * 24 * time.Hour
}

// requestUser returns the user the auth middleware attached.
func (h *Handler) requestUser(r *http.Request) (*models.User, error) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return nil, responses.UnauthorizedError{Msg: "Please login to access this resource."}
	}
	return user, nil
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return responses.BadRequestError{Msg: "Invalid request."}
	}
	return nil
}

// setSession issues the session cookie and responds with the user, the
// way both register and login answer.
func (h *Handler) setSession(w http.ResponseWriter, user *models.User, status int, message string) {
	token, err := utils.SignSessionToken(h.cfg.JWTSecret, user, h.sessionTTL())
	if err != nil {
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to generate token."})
		return
	}
	http.SetCookie(w, utils.SessionCookie(token, h.sessionTTL()))

	resp := models.SuccessResponse(map[string]interface{}{
		"user":    user,
		"message": message,
	})
	if status == http.StatusCreated {
		utils.HandleCreated(w, resp)
		return
	}
	utils.HandleSuccess(w, resp)
}
