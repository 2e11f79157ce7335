package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chattu/chattu-backend/models"
	"github.com/chattu/chattu-backend/repository"
	"github.com/chattu/chattu-backend/utils"
)

const testSecret = "test-secret"

type fakeUserStore struct {
	users map[primitive.ObjectID]*models.User
}

func (s *fakeUserStore) Create(ctx context.Context, user *models.User) error { return nil }

func (s *fakeUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, repository.ErrNotFound
}

func (s *fakeUserStore) FindMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	return nil, nil
}

func (s *fakeUserStore) Search(ctx context.Context, name string, exclude []primitive.ObjectID) ([]models.User, error) {
	return nil, nil
}

func (s *fakeUserStore) Count(ctx context.Context) (int64, error) { return 0, nil }

func authedRequest(t *testing.T, user *models.User) *http.Request {
	t.Helper()
	token, err := utils.SignSessionToken(testSecret, user, time.Hour)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: utils.SessionCookieName, Value: token})
	return r
}

func TestAuthenticatedLoadsUser(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Name: "alice"}
	store := &fakeUserStore{users: map[primitive.ObjectID]*models.User{user.ID: user}}

	var got *models.User
	handler := Authenticated(testSecret, store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = UserFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest(t, user))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
}

func TestAuthenticatedMissingCookie(t *testing.T) {
	handler := Authenticated(testSecret, &fakeUserStore{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticatedUnknownUser(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Name: "ghost"}
	handler := Authenticated(testSecret, &fakeUserStore{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest(t, user))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticatedBadToken(t *testing.T) {
	handler := Authenticated(testSecret, &fakeUserStore{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: utils.SessionCookieName, Value: "not-a-token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOnly(t *testing.T) {
	token, err := utils.SignAdminToken(testSecret, "iamadmin")
	require.NoError(t, err)

	handler := AdminOnly(testSecret, "iamadmin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: utils.AdminCookieName, Value: token})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOnlyWrongKey(t *testing.T) {
	token, err := utils.SignAdminToken(testSecret, "wrong")
	require.NoError(t, err)

	handler := AdminOnly(testSecret, "iamadmin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: utils.AdminCookieName, Value: token})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
