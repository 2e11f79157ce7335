package handlers

import (
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chattu/chattu-backend/logger"
	"github.com/chattu/chattu-backend/models"
	"github.com/chattu/chattu-backend/realtime"
	"github.com/chattu/chattu-backend/repository"
	"github.com/chattu/chattu-backend/responses"
	"github.com/chattu/chattu-backend/utils"
)

const (
	maxGroupMembers = 100
	maxAttachments  = 5
	messagesPerPage = 20
)

func (h *Handler) NewGroupChat(w http.ResponseWriter, r *http.Request) {
	user, err := h.requestUser(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	var body struct {
		Name    string   `json:"name"`
		Members []string `json:"members"`
	}
	if err := decodeBody(r, &body); err != nil {
		utils.HandleError(w, err)
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		utils.HandleError(w, responses.BadRequestError{Msg: "Name is required."})
		return
	}
	if len(body.Members) < 2 {
		utils.HandleError(w, responses.BadRequestError{Msg: "Group chat must have at least 3 members."})
		return
	}

	members := models.ObjectIDsFromHex(body.Members)
	if len(members) != len(body.Members) {
		utils.HandleError(w, responses.BadRequestError{Msg: "Invalid member id."})
		return
	}
	allMembers := append(members, user.ID)

	chat := &models.Chat{
		Name:      body.Name,
		GroupChat: true,
		Creator:   user.ID,
		Members:   allMembers,
	}
	if err := h.stores.Chats.Create(r.Context(), chat); err != nil {
		logger.Error().Err(err).Msg("creating group failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	h.hub.Emit(realtime.EventAlert, models.HexIDs(allMembers), realtime.ChatAlertData{
		ChatID:  chat.ID.Hex(),
		Message: fmt.Sprintf("Welcome to %s group chat", chat.Name),
	})
	h.hub.Emit(realtime.EventRefetchChats, models.HexIDs(members), struct{}{})

	utils.HandleCreated(w, models.SuccessResponse(map[string]string{"message": "Group Created"}))
}

// GetMyChats lists the caller's chats, shaping each entry for the chat
// list: direct chats take the other member's name and avatar.
func (h *Handler) GetMyChats(w http.ResponseWriter, r *http.Request) {
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

	profiles, err := h.memberProfiles(r, chats)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	previews := make([]models.ChatPreview, 0, len(chats))
	for _, chat := range chats {
		preview := models.ChatPreview{
			ID:        chat.ID.Hex(),
			Name:      chat.Name,
			GroupChat: chat.GroupChat,
			Avatar:    []string{},
			Members:   []string{},
		}
		for _, m := range chat.Members {
			if m == user.ID {
				continue
			}
			preview.Members = append(preview.Members, m.Hex())
			other := profiles[m]
			if chat.GroupChat {
				if len(preview.Avatar) < 3 {
					preview.Avatar = append(preview.Avatar, other.Avatar.URL)
				}
			} else {
				preview.Name = other.Name
				preview.Avatar = []string{other.Avatar.URL}
			}
		}
		previews = append(previews, preview)
	}

	utils.HandleSuccess(w, models.SuccessResponse(map[string]interface{}{"chats": previews}))
}

// GetMyGroups lists only the groups the caller created.
func (h *Handler) GetMyGroups(w http.ResponseWriter, r *http.Request) {
	user, err := h.requestUser(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	chats, err := h.stores.Chats.FindByMember(r.Context(), user.ID, true)
	if err != nil {
		logger.Error().Err(err).Msg("listing groups failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	mine := make([]models.Chat, 0, len(chats))
	for _, chat := range chats {
		if chat.Creator == user.ID {
			mine = append(mine, chat)
		}
	}
	profiles, err := h.memberProfiles(r, mine)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	groups := make([]models.GroupPreview, 0, len(mine))
	for _, chat := range mine {
		group := models.GroupPreview{ID: chat.ID.Hex(), Name: chat.Name, Avatar: []string{}}
		for _, m := range chat.Members {
			if len(group.Avatar) == 3 {
				break
			}
			group.Avatar = append(group.Avatar, profiles[m].Avatar.URL)
		}
		groups = append(groups, group)
	}

	utils.HandleSuccess(w, models.SuccessResponse(map[string]interface{}{"groups": groups}))
}

// SearchChats matches the caller's chats by name.
func (h *Handler) SearchChats(w http.ResponseWriter, r *http.Request) {
	user, err := h.requestUser(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	chats, err := h.stores.Chats.Search(r.Context(), user.ID, r.URL.Query().Get("name"))
	if err != nil {
		logger.Error().Err(err).Msg("searching chats failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	previews := make([]models.ChatPreview, 0, len(chats))
	for _, chat := range chats {
		previews = append(previews, models.ChatPreview{
			ID:        chat.ID.Hex(),
			Name:      chat.Name,
			GroupChat: chat.GroupChat,
			Avatar:    []string{},
			Members:   chat.MemberIDs(),
		})
	}
	utils.HandleSuccess(w, models.SuccessResponse(map[string]interface{}{"chats": previews}))
}

func (h *Handler) AddMembers(w http.ResponseWriter, r *http.Request) {
	user, err := h.requestUser(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	var body struct {
		ChatID  string   `json:"chatId"`
		Members []string `json:"members"`
	}
	if err := decodeBody(r, &body); err != nil {
		utils.HandleError(w, err)
		return
	}
	if len(body.Members) < 1 {
		utils.HandleError(w, responses.BadRequestError{Msg: "Please provide members."})
		return
	}

	chat, err := h.loadGroup(r, body.ChatID, user.ID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	added := make([]string, 0, len(body.Members))
	for _, id := range body.Members {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil || chat.HasMember(oid) {
			continue
		}
		chat.Members = append(chat.Members, oid)
		added = append(added, id)
	}
	if len(chat.Members) > maxGroupMembers {
		utils.HandleError(w, responses.BadRequestError{Msg: "Group members limit reached."})
		return
	}
	if err := h.stores.Chats.Update(r.Context(), chat); err != nil {
		logger.Error().Err(err).Msg("updating chat failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	newMembers, err := h.stores.Users.FindMany(r.Context(), models.ObjectIDsFromHex(added))
	if err == nil && len(newMembers) > 0 {
		names := make([]string, 0, len(newMembers))
		for _, m := range newMembers {
			names = append(names, m.Name)
		}
		h.hub.Emit(realtime.EventAlert, chat.MemberIDs(), realtime.ChatAlertData{
			ChatID:  chat.ID.Hex(),
			Message: fmt.Sprintf("%s has been added in the group", strings.Join(names, ", ")),
		})
	}
	h.hub.Emit(realtime.EventRefetchChats, chat.MemberIDs(), struct{}{})

	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"message": "Members added successfully"}))
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user, err := h.requestUser(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	var body struct {
		UserID string `json:"userId"`
		ChatID string `json:"chatId"`
	}
	if err := decodeBody(r, &body); err != nil {
		utils.HandleError(w, err)
		return
	}
	removeID, err := primitive.ObjectIDFromHex(body.UserID)
	if err != nil {
		utils.HandleError(w, responses.BadRequestError{Msg: "User Id is required."})
		return
	}

	chat, err := h.loadGroup(r, body.ChatID, user.ID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	if len(chat.Members) <= 3 {
		utils.HandleError(w, responses.BadRequestError{Msg: "Group must have at least 3 members."})
		return
	}

	notified := chat.MemberIDs()
	remaining := chat.Members[:0]
	for _, m := range chat.Members {
		if m != removeID {
			remaining = append(remaining, m)
		}
	}
	chat.Members = remaining
	if err := h.stores.Chats.Update(r.Context(), chat); err != nil {
		logger.Error().Err(err).Msg("updating chat failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	removed, err := h.stores.Users.FindByID(r.Context(), removeID)
	if err == nil {
		h.hub.Emit(realtime.EventAlert, notified, realtime.ChatAlertData{
			ChatID:  chat.ID.Hex(),
			Message: fmt.Sprintf("%s has been removed from the group", removed.Name),
		})
	}
	h.hub.Emit(realtime.EventRefetchChats, notified, struct{}{})

	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"message": "Member removed successfully"}))
}

// LeaveGroup removes the caller from a group. If the creator leaves,
// another remaining member inherits the group.
func (h *Handler) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	user, err := h.requestUser(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	chat, err := h.loadChat(r, mux.Vars(r)["id"])
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	if !chat.GroupChat {
		utils.HandleError(w, responses.BadRequestError{Msg: "This is not a group chat."})
		return
	}

	remaining := make([]primitive.ObjectID, 0, len(chat.Members))
	for _, m := range chat.Members {
		if m != user.ID {
			remaining = append(remaining, m)
		}
	}
	if len(remaining) < 3 {
		utils.HandleError(w, responses.BadRequestError{Msg: "Group must have at least 3 members."})
		return
	}

	chat.Members = remaining
	if chat.Creator == user.ID {
		chat.Creator = remaining[rand.Intn(len(remaining))]
	}
	if err := h.stores.Chats.Update(r.Context(), chat); err != nil {
		logger.Error().Err(err).Msg("updating chat failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	h.hub.Emit(realtime.EventAlert, chat.MemberIDs(), realtime.ChatAlertData{
		ChatID:  chat.ID.Hex(),
		Message: fmt.Sprintf("User %s has left the group", user.Name),
	})

	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"message": "Leave Group Successfully"}))
}

// SendAttachments uploads the files, persists them as a message, and
// emits the realtime view to the chat's members.
func (h *Handler) SendAttachments(w http.ResponseWriter, r *http.Request) {
	user, err := h.requestUser(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	if err := r.ParseMultipartForm(maxAvatarMemory); err != nil {
		utils.HandleError(w, responses.BadRequestError{Msg: "Invalid request."})
		return
	}

	chat, err := h.loadChat(r, r.FormValue("chatId"))
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) < 1 {
		utils.HandleError(w, responses.BadRequestError{Msg: "Please Upload Attachments."})
		return
	}
	if len(files) > maxAttachments {
		utils.HandleError(w, responses.BadRequestError{Msg: "Files Can't be more than 5."})
		return
	}

	attachments, err := h.uploads.Upload(r.Context(), files)
	if err != nil {
		logger.Error().Err(err).Msg("uploading attachments failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "File upload failed."})
		return
	}

	message := &models.Message{
		Chat:        chat.ID,
		Sender:      user.ID,
		Attachments: attachments,
	}
	if err := h.stores.Messages.Create(r.Context(), message); err != nil {
		logger.Error().Err(err).Msg("persisting attachment message failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	view := models.RealtimeMessage{
		ID:   uuid.NewString(),
		Chat: chat.ID.Hex(),
		Sender: models.MessageSender{
			ID:   user.ID.Hex(),
			Name: user.Name,
		},
		Attachments: attachments,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	h.hub.Emit(realtime.EventNewAttachment, chat.MemberIDs(), realtime.NewMessageData{ChatID: chat.ID.Hex(), Message: view})
	h.hub.Emit(realtime.EventNewMessageAlert, chat.MemberIDs(), realtime.NewMessageAlertData{ChatID: chat.ID.Hex()})

	utils.HandleSuccess(w, models.SuccessResponse(map[string]interface{}{"message": message}))
}

// GetMessages returns one page of a chat's history, newest first in
// storage but oldest first on the wire.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	user, err := h.requestUser(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	chat, err := h.loadChat(r, mux.Vars(r)["id"])
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	if !chat.HasMember(user.ID) {
		utils.HandleError(w, responses.ForbiddenError{Msg: "You are not allowed to access this chat."})
		return
	}

	page, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}
	skip := (page - 1) * messagesPerPage

	stored, total, err := h.stores.Messages.FindByChat(r.Context(), chat.ID, skip, messagesPerPage)
	if err != nil {
		logger.Error().Err(err).Msg("loading messages failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	senderIDs := make([]primitive.ObjectID, 0, len(stored))
	for _, m := range stored {
		senderIDs = append(senderIDs, m.Sender)
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

	messages := make([]models.HistoryMessage, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		m := stored[i]
		sender := byID[m.Sender]
		messages = append(messages, models.HistoryMessage{
			ID:   m.ID.Hex(),
			Chat: m.Chat.Hex(),
			Sender: models.MessageSender{
				ID:     sender.ID.Hex(),
				Name:   sender.Name,
				Avatar: sender.Avatar.URL,
			},
			Content:     m.Content,
			Attachments: m.Attachments,
			CreatedAt:   m.CreatedAt,
		})
	}

	totalPages := (total + messagesPerPage - 1) / messagesPerPage
	utils.HandleSuccess(w, models.SuccessResponse(map[string]interface{}{
		"messages":   messages,
		"totalPages": totalPages,
	}))
}

// GetChatDetails returns a chat; with ?populate=true the member ids are
// expanded into name and avatar previews.
func (h *Handler) GetChatDetails(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requestUser(r); err != nil {
		utils.HandleError(w, err)
		return
	}

	chat, err := h.loadChat(r, mux.Vars(r)["id"])
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	if r.URL.Query().Get("populate") != "true" {
		utils.HandleSuccess(w, models.SuccessResponse(map[string]interface{}{"chat": chat}))
		return
	}

	profiles, err := h.stores.Users.FindMany(r.Context(), chat.Members)
	if err != nil {
		logger.Error().Err(err).Msg("loading members failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}
	members := make([]models.UserPreview, 0, len(profiles))
	for _, p := range profiles {
		members = append(members, models.UserPreview{ID: p.ID.Hex(), Name: p.Name, Avatar: p.Avatar.URL})
	}

	utils.HandleSuccess(w, models.SuccessResponse(map[string]interface{}{"chat": map[string]interface{}{
		"_id":        chat.ID.Hex(),
		"name":       chat.Name,
		"groupChat":  chat.GroupChat,
		"creator":    chat.Creator.Hex(),
		"members":    members,
		"created_at": chat.CreatedAt,
		"updated_at": chat.UpdatedAt,
	}}))
}

func (h *Handler) RenameGroup(w http.ResponseWriter, r *http.Request) {
	user, err := h.requestUser(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		utils.HandleError(w, err)
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		utils.HandleError(w, responses.BadRequestError{Msg: "Name is required."})
		return
	}

	chat, err := h.loadGroup(r, mux.Vars(r)["id"], user.ID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	chat.Name = body.Name
	if err := h.stores.Chats.Update(r.Context(), chat); err != nil {
		logger.Error().Err(err).Msg("updating chat failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	h.hub.Emit(realtime.EventRefetchChats, chat.MemberIDs(), struct{}{})
	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"message": "Group renamed successfully"}))
}

// DeleteChat removes the chat, its messages, and any uploaded
// attachments they reference.
func (h *Handler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	user, err := h.requestUser(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	chat, err := h.loadChat(r, mux.Vars(r)["id"])
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	if chat.GroupChat && chat.Creator != user.ID {
		utils.HandleError(w, responses.ForbiddenError{Msg: "You are not allowed to delete the group."})
		return
	}
	if !chat.GroupChat && !chat.HasMember(user.ID) {
		utils.HandleError(w, responses.ForbiddenError{Msg: "You are not allowed to delete the chat."})
		return
	}

	withAttachments, err := h.stores.Messages.FindWithAttachments(r.Context(), chat.ID)
	if err != nil {
		logger.Error().Err(err).Msg("loading attachments failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}
	publicIDs := make([]string, 0, len(withAttachments))
	for _, m := range withAttachments {
		for _, a := range m.Attachments {
			publicIDs = append(publicIDs, a.PublicID)
		}
	}
	if err := h.uploads.Delete(r.Context(), publicIDs); err != nil {
		logger.Warn().Err(err).Msg("deleting attachments failed")
	}

	notified := chat.MemberIDs()
	if err := h.stores.Chats.Delete(r.Context(), chat.ID); err != nil {
		logger.Error().Err(err).Msg("deleting chat failed")
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}
	if err := h.stores.Messages.DeleteByChat(r.Context(), chat.ID); err != nil {
		logger.Error().Err(err).Msg("deleting messages failed")
	}

	h.hub.Emit(realtime.EventRefetchChats, notified, struct{}{})
	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"message": "Chat deleted successfully"}))
}

// loadChat resolves a chat id from its wire form, mapping a bad id to a
// 400 and a missing chat to a 404.
func (h *Handler) loadChat(r *http.Request, id string) (*models.Chat, error) {
	chatID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, responses.BadRequestError{Msg: "Chat Id is required."}
	}
	chat, err := h.stores.Chats.FindByID(r.Context(), chatID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, responses.NotFoundError{Msg: "Chat not found."}
	}
	if err != nil {
		logger.Error().Err(err).Msg("looking up chat failed")
		return nil, responses.InternalServerError{Msg: "An error occurred while processing your request."}
	}
	return chat, nil
}

// loadGroup is loadChat plus the group-admin checks shared by member
// management and rename.
func (h *Handler) loadGroup(r *http.Request, id string, creator primitive.ObjectID) (*models.Chat, error) {
	chat, err := h.loadChat(r, id)
	if err != nil {
		return nil, err
	}
	if !chat.GroupChat {
		return nil, responses.BadRequestError{Msg: "This is not a group chat."}
	}
	if chat.Creator != creator {
		return nil, responses.ForbiddenError{Msg: "You are not allowed to manage the group."}
	}
	return chat, nil
}

// memberProfiles loads every distinct member of the given chats in one
// query.
func (h *Handler) memberProfiles(r *http.Request, chats []models.Chat) (map[primitive.ObjectID]models.User, error) {
	seen := make(map[primitive.ObjectID]struct{})
	ids := make([]primitive.ObjectID, 0)
	for _, chat := range chats {
		for _, m := range chat.Members {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			ids = append(ids, m)
		}
	}
	users, err := h.stores.Users.FindMany(r.Context(), ids)
	if err != nil {
		logger.Error().Err(err).Msg("loading members failed")
		return nil, responses.InternalServerError{Msg: "An error occurred while processing your request."}
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}
