package handlers

import (
	"net/http"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/chattu/chattu-backend/logger"
	"github.com/chattu/chattu-backend/models"
	"github.com/chattu/chattu-backend/realtime"
	"github.com/chattu/chattu-backend/repository"
	"github.com/chattu/chattu-backend/responses"
	"github.com/chattu/chattu-backend/utils"
)

const maxAvatarMemory = 10 << 20

// Register creates a user from a multipart form carrying the profile
// fields plus an avatar file, then logs the user in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAvatarMemory); err != nil {
		utils.HandleError(w, responses.BadRequestError{Msg: "Invalid request."})
		return
	}

	name := r.FormValue("name")
	username := r.FormValue("username")
	password := r.FormValue("password")
	bio := r.FormValue("bio")

	if name == "" || username == "" || password == "" || bio == "" {
		utils.HandleError(w, responses.BadRequestError{Msg: "All fields are required."})
		return
	}
	if !validateName(name) {
		utils.HandleError(w, responses.BadRequestError{Msg: "Name cannot exceed 20 characters."})
		return
	}
	if !validateUsername(username) {
		utils.HandleError(w, responses.BadRequestError{Msg: "Username should be lowercase, contain only numbers, underscores, and no spaces, and cannot exceed 20 characters."})
		return
	}
	if !validateBio(bio) {
		utils.HandleError(w, responses.BadRequestError{Msg: "Bio cannot exceed 50 characters."})
		return
	}
	if !validatePassword(password) {
		utils.HandleError(w, responses.BadRequestError{Msg: "Password must be at least 8 characters long and contain at least one digit."})
		return
	}

	if r.MultipartForm == nil || len(r.MultipartForm.File["avatar"]) == 0 {
		utils.HandleError(w, responses.BadRequestError{Msg: "Please upload avatar."})
		return
	}

	if _, err := h.stores.Users.FindByUsername(r.Context(), username); err == nil {
		utils.HandleError(w, responses.BadRequestError{Msg: "Username already exists."})
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		logger.Error().Err(err).Msg("looking up username failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	uploaded, err := h.uploads.Upload(r.Context(), r.MultipartForm.File["avatar"][:1])
	if err != nil {
		logger.Error().Err(err).Msg("avatar upload failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "File upload failed."})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to hash password."})
		return
	}

	user := &models.User{
		Name:     name,
		Username: username,
		Bio:      bio,
		Password: string(hashedPassword),
		Avatar:   uploaded[0],
	}
	if err := h.stores.Users.Create(r.Context(), user); err != nil {
		logger.Error().Err(err).Msg("creating user failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to create user."})
		return
	}

	h.setSession(w, user, http.StatusCreated, "User Created")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		utils.HandleError(w, err)
		return
	}

	user, err := h.stores.Users.FindByUsername(r.Context(), body.Username)
	if errors.Is(err, repository.ErrNotFound) {
		utils.HandleError(w, responses.NotFoundError{Msg: "User not found."})
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("looking up user failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Invalid Password."})
		return
	}

	h.setSession(w, user, http.StatusOK, "Welcome back, "+user.Name)
}

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	user, err := h.requestUser(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.HandleSuccess(w, models.SuccessResponse(user))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, utils.ExpiredCookie(utils.SessionCookieName))
	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"message": "Logged Out"}))
}

// SearchUsers lists users matching the name query, excluding the caller
// and everyone they already share a direct chat with.
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	user, err := h.requestUser(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	name := r.URL.Query().Get("name")

	myChats, err := h.stores.Chats.FindByMember(r.Context(), user.ID, false)
	if err != nil {
		logger.Error().Err(err).Msg("listing chats failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	exclude := []primitive.ObjectID{user.ID}
	for _, chat := range myChats {
		if chat.GroupChat {
			continue
		}
		exclude = append(exclude, chat.Members...)
	}

	found, err := h.stores.Users.Search(r.Context(), name, exclude)
	if err != nil {
		logger.Error().Err(err).Msg("searching users failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	users := make([]models.UserPreview, 0, len(found))
	for i := range found {
		users = append(users, found[i].Preview())
	}
	utils.HandleSuccess(w, models.SuccessResponse(map[string]interface{}{"users": users}))
}

// SendFriendRequest stores the request and notifies the receiver's live
// connection through the hub; an offline receiver just sees it on the
// next notifications fetch.
func (h *Handler) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	user, err := h.requestUser(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	var body struct {
		UserID string `json:"userId"`
	}
	if err := decodeBody(r, &body); err != nil {
		utils.HandleError(w, err)
		return
	}
	receiverID, err := primitive.ObjectIDFromHex(body.UserID)
	if err != nil {
		utils.HandleError(w, responses.BadRequestError{Msg: "User Id is required."})
		return
	}

	if _, err := h.stores.Requests.FindBetween(r.Context(), user.ID, receiverID); err == nil {
		utils.HandleError(w, responses.BadRequestError{Msg: "Request Already Sent."})
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		logger.Error().Err(err).Msg("looking up request failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	request := &models.Request{Sender: user.ID, Receiver: receiverID}
	if err := h.stores.Requests.Create(r.Context(), request); err != nil {
		logger.Error().Err(err).Msg("creating request failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	h.hub.Emit(realtime.EventNewRequest, []string{body.UserID}, map[string]interface{}{
		"_id": request.ID.Hex(),
		"sender": models.MessageSender{
			ID:     user.ID.Hex(),
			Name:   user.Name,
			Avatar: user.Avatar.URL,
		},
	})

	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"message": "Friend Request Sent"}))
}

// AcceptFriendRequest resolves a pending request: rejecting deletes it,
// accepting additionally creates the direct chat and tells both sides
// to refetch their chat lists.
func (h *Handler) AcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	user, err := h.requestUser(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	var body struct {
		RequestID string `json:"requestId"`
		Accept    bool   `json:"accept"`
	}
	if err := decodeBody(r, &body); err != nil {
		utils.HandleError(w, err)
		return
	}
	requestID, err := primitive.ObjectIDFromHex(body.RequestID)
	if err != nil {
		utils.HandleError(w, responses.BadRequestError{Msg: "Request Id is required."})
		return
	}

	request, err := h.stores.Requests.FindByID(r.Context(), requestID)
	if errors.Is(err, repository.ErrNotFound) {
		utils.HandleError(w, responses.NotFoundError{Msg: "Request Not Found."})
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("looking up request failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	if request.Receiver != user.ID {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "You are not authorized to accept this request."})
		return
	}

	if !body.Accept {
		if err := h.stores.Requests.Delete(r.Context(), request.ID); err != nil {
			logger.Error().Err(err).Msg("deleting request failed")
			utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
			return
		}
		utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"message": "Friend Request Rejected"}))
		return
	}

	sender, err := h.stores.Users.FindByID(r.Context(), request.Sender)
	if err != nil {
		logger.Error().Err(err).Msg("looking up sender failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	members := []primitive.ObjectID{request.Sender, request.Receiver}
	chat := &models.Chat{
		Name:    sender.Name + " - " + user.Name,
		Members: members,
	}
	if err := h.stores.Chats.Create(r.Context(), chat); err != nil {
		logger.Error().Err(err).Msg("creating chat failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}
	if err := h.stores.Requests.Delete(r.Context(), request.ID); err != nil {
		logger.Error().Err(err).Msg("deleting request failed")
	}

	h.hub.Emit(realtime.EventRefetchChats, models.HexIDs(members), struct{}{})

	utils.HandleSuccess(w, models.SuccessResponse(map[string]interface{}{
		"message":  "Friend Request Accepted",
		"senderId": request.Sender.Hex(),
	}))
}

func (h *Handler) GetMyNotifications(w http.ResponseWriter, r *http.Request) {
	user, err := h.requestUser(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	requests, err := h.stores.Requests.FindByReceiver(r.Context(), user.ID)
	if err != nil {
		logger.Error().Err(err).Msg("listing requests failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	senderIDs := make([]primitive.ObjectID, 0, len(requests))
	for _, req := range requests {
		senderIDs = append(senderIDs, req.Sender)
	}
	senders, err := h.stores.Users.FindMany(r.Context(), senderIDs)
	if err != nil {
		logger.Error().Err(err).Msg("loading senders failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}
	byID := make(map[primitive.ObjectID]models.User, len(senders))
	for _, s := range senders {
		byID[s.ID] = s
	}

	allRequests := make([]models.NotificationView, 0, len(requests))
	for _, req := range requests {
		sender := byID[req.Sender]
		allRequests = append(allRequests, models.NotificationView{
			ID: req.ID.Hex(),
			Sender: models.MessageSender{
				ID:     sender.ID.Hex(),
				Name:   sender.Name,
				Avatar: sender.Avatar.URL,
			},
		})
	}
	utils.HandleSuccess(w, models.SuccessResponse(map[string]interface{}{"allRequests": allRequests}))
}

// GetMyFriends lists the other member of each direct chat; with chatId
// set, only those not already in that chat.
func (h *Handler) GetMyFriends(w http.ResponseWriter, r *http.Request) {
	user, err := h.requestUser(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	chats, err := h.stores.Chats.FindByMember(r.Context(), user.ID, false)
	if err != nil {
		logger.Error().Err(err).Msg("listing chats failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	friendIDs := make([]primitive.ObjectID, 0, len(chats))
	for _, chat := range chats {
		if chat.GroupChat {
			continue
		}
		for _, m := range chat.Members {
			if m != user.ID {
				friendIDs = append(friendIDs, m)
			}
		}
	}
	profiles, err := h.stores.Users.FindMany(r.Context(), friendIDs)
	if err != nil {
		logger.Error().Err(err).Msg("loading friends failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	friends := make([]models.UserPreview, 0, len(profiles))
	for _, p := range profiles {
		friends = append(friends, models.UserPreview{ID: p.ID.Hex(), Name: p.Name, Avatar: p.Avatar.URL})
	}

	if chatIDStr := r.URL.Query().Get("chatId"); chatIDStr != "" {
		chatID, err := primitive.ObjectIDFromHex(chatIDStr)
		if err != nil {
			utils.HandleError(w, responses.BadRequestError{Msg: "Invalid chatId."})
			return
		}
		chat, err := h.stores.Chats.FindByID(r.Context(), chatID)
		if errors.Is(err, repository.ErrNotFound) {
			utils.HandleError(w, responses.NotFoundError{Msg: "Chat not found."})
			return
		}
		if err != nil {
			logger.Error().Err(err).Msg("looking up chat failed")
			utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
			return
		}
		available := make([]models.UserPreview, 0, len(friends))
		for _, f := range friends {
			oid, err := primitive.ObjectIDFromHex(f.ID)
			if err != nil || chat.HasMember(oid) {
				continue
			}
			available = append(available, f)
		}
		friends = available
	}

	utils.HandleSuccess(w, models.SuccessResponse(map[string]interface{}{"friends": friends}))
}
