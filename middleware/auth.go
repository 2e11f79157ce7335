package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chattu/chattu-backend/models"
	"github.com/chattu/chattu-backend/repository"
	"github.com/chattu/chattu-backend/responses"
	"github.com/chattu/chattu-backend/utils"
)

type contextKey string

const authUserKey contextKey = "authUser"

// Authenticated validates the session cookie and loads the user it
// names, attaching it to the request context.
func Authenticated(secret string, users repository.UserStore) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := utils.SessionTokenFromRequest(r)
			if err != nil {
				utils.HandleError(w, responses.UnauthorizedError{Msg: "Please login to access this resource."})
				return
			}

			claims, err := utils.ValidateToken(secret, tokenStr)
			if err != nil {
				utils.HandleError(w, responses.UnauthorizedError{Msg: "Your token is invalid or expired. Please log in again."})
				return
			}

			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				utils.HandleError(w, responses.UnauthorizedError{Msg: "Your token is invalid or expired. Please log in again."})
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				utils.HandleError(w, responses.UnauthorizedError{Msg: "Please login to access this resource."})
				return
			}

			ctx := context.WithValue(r.Context(), authUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user the Authenticated middleware loaded.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(authUserKey).(*models.User)
	return user, ok
}

// AdminOnly gates a route on the admin cookie.
func AdminOnly(secret, adminKey string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(utils.AdminCookieName)
			if err != nil {
				utils.HandleError(w, responses.UnauthorizedError{Msg: "Only admin can access this route."})
				return
			}

			key, err := utils.ValidateAdminToken(secret, cookie.Value)
			if err != nil || key != adminKey {
				utils.HandleError(w, responses.UnauthorizedError{Msg: "Only admin can access this route."})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
