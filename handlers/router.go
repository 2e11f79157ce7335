package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/chattu/chattu-backend/middleware"
	"github.com/chattu/chattu-backend/models"
	"github.com/chattu/chattu-backend/utils"
)

// NewRouter wires every route: the REST surface under /api/v1, the
// realtime endpoint, and static serving for uploaded files. CORS wraps
// the router from the outside so preflights are answered even when no
// route matches the OPTIONS method.
func (h *Handler) NewRouter() http.Handler {
	r := mux.NewRouter()

	authed := middleware.Authenticated(h.cfg.JWTSecret, h.stores.Users)
	adminOnly := middleware.AdminOnly(h.cfg.JWTSecret, h.cfg.AdminSecretKey)

	api := r.PathPrefix("/api/v1").Subrouter()

	user := api.PathPrefix("/user").Subrouter()
	user.HandleFunc("/new", h.Register).Methods(http.MethodPost)
	user.HandleFunc("/login", h.Login).Methods(http.MethodPost)

	userAuth := api.PathPrefix("/user").Subrouter()
	userAuth.Use(authed)
	userAuth.HandleFunc("/me", h.GetMyInfo).Methods(http.MethodGet)
	userAuth.HandleFunc("/logout", h.Logout).Methods(http.MethodGet)
	userAuth.HandleFunc("/search", h.SearchUsers).Methods(http.MethodGet)
	userAuth.HandleFunc("/sendrequest", h.SendFriendRequest).Methods(http.MethodPut)
	userAuth.HandleFunc("/acceptrequest", h.AcceptFriendRequest).Methods(http.MethodPut)
	userAuth.HandleFunc("/notifications", h.GetMyNotifications).Methods(http.MethodGet)
	userAuth.HandleFunc("/friends", h.GetMyFriends).Methods(http.MethodGet)

	chat := api.PathPrefix("/chat").Subrouter()
	chat.Use(authed)
	chat.HandleFunc("/new", h.NewGroupChat).Methods(http.MethodPost)
	chat.HandleFunc("/my", h.GetMyChats).Methods(http.MethodGet)
	chat.HandleFunc("/my/groups", h.GetMyGroups).Methods(http.MethodGet)
	chat.HandleFunc("/search", h.SearchChats).Methods(http.MethodGet)
	chat.HandleFunc("/addmembers", h.AddMembers).Methods(http.MethodPut)
	chat.HandleFunc("/removemember", h.RemoveMember).Methods(http.MethodPut)
	chat.HandleFunc("/leave/{id}", h.LeaveGroup).Methods(http.MethodDelete)
	chat.HandleFunc("/message", h.SendAttachments).Methods(http.MethodPost)
	chat.HandleFunc("/message/{id}", h.GetMessages).Methods(http.MethodGet)
	chat.HandleFunc("/{id}", h.GetChatDetails).Methods(http.MethodGet)
	chat.HandleFunc("/{id}", h.RenameGroup).Methods(http.MethodPut)
	chat.HandleFunc("/{id}", h.DeleteChat).Methods(http.MethodDelete)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/verify", h.AdminVerify).Methods(http.MethodPost)
	admin.HandleFunc("/logout", h.AdminLogout).Methods(http.MethodGet)

	adminAuth := api.PathPrefix("/admin").Subrouter()
	adminAuth.Use(adminOnly)
	adminAuth.HandleFunc("", h.GetAdminData).Methods(http.MethodGet)
	adminAuth.HandleFunc("/stats", h.AdminStats).Methods(http.MethodGet)

	r.HandleFunc("/ws", h.HandleWebSocket)

	fileServer := http.FileServer(http.Dir(h.cfg.UploadDir))
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", fileServer))

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"message": "Hello World!"}))
	}).Methods(http.MethodGet)

	return middleware.CORS(h.cfg.FrontendURL)(r)
}
