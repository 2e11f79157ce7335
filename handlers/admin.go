package handlers

import (
	"net/http"

	"github.com/chattu/chattu-backend/logger"
	"github.com/chattu/chattu-backend/models"
	"github.com/chattu/chattu-backend/responses"
	"github.com/chattu/chattu-backend/utils"
)

// AdminVerify exchanges the dashboard secret key for a short-lived
// admin cookie.
func (h *Handler) AdminVerify(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SecretKey string `json:"secretKey"`
	}
	if err := decodeBody(r, &body); err != nil {
		utils.HandleError(w, err)
		return
	}

	if body.SecretKey != h.cfg.AdminSecretKey {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Invalid Admin Key."})
		return
	}

	token, err := utils.SignAdminToken(h.cfg.JWTSecret, body.SecretKey)
	if err != nil {
		logger.Error().Err(err).Msg("signing admin token failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	http.SetCookie(w, utils.AdminCookie(token))
	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"message": "Authenticated Successfully, Welcome BOSS"}))
}

func (h *Handler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, utils.ExpiredCookie(utils.AdminCookieName))
	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"message": "Logged Out Successfully"}))
}

// GetAdminData confirms the admin cookie is still valid; the middleware
// has already done the checking by the time this runs.
func (h *Handler) GetAdminData(w http.ResponseWriter, r *http.Request) {
	utils.HandleSuccess(w, models.SuccessResponse(map[string]bool{"admin": true}))
}

// AdminStats reports entity counts for the dashboard.
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	usersCount, err := h.stores.Users.Count(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("counting users failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}
	chatsCount, err := h.stores.Chats.Count(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("counting chats failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}
	messagesCount, err := h.stores.Messages.Count(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("counting messages failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}
	requestsCount, err := h.stores.Requests.Count(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("counting requests failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(map[string]interface{}{"stats": map[string]int64{
		"usersCount":    usersCount,
		"chatsCount":    chatsCount,
		"messagesCount": messagesCount,
		"requestsCount": requestsCount,
	}}))
}
