package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashs79/wishlist-app/db"
	"github.com/yashs79/wishlist-app/internal/auth"
	"github.com/yashs79/wishlist-app/internal/broadcast"
	"github.com/yashs79/wishlist-app/internal/models"
	"github.com/yashs79/wishlist-app/internal/router"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// setupTest wires a fresh in-memory database and a router around a new hub.
func setupTest(t *testing.T) (*gin.Engine, *broadcast.Hub) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	t.Setenv("JWT_SECRET", "test-secret")
	require.NoError(t, auth.InitJWTSecret())

	dsn := fmt.Sprintf("file:handlers%d?mode=memory&cache=shared", dbSeq.Add(1))

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	require.NoError(t, conn.AutoMigrate(
		&models.User{},
		&models.Wishlist{},
		&models.WishlistCollaborator{},
		&models.Product{},
		&models.Comment{},
		&models.Reaction{},
	))

	db.DB = conn

	hub := broadcast.NewHub()

	return router.NewRouter(hub), hub
}

func createUser(t *testing.T, name string, email string) (models.User, string) {
	t.Helper()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{Name: name, Email: email, PasswordHash: string(passwordHash)}
	require.NoError(t, db.DB.Create(&user).Error)

	token, err := auth.GenerateJWT(user.ID, user.Email)
	require.NoError(t, err)

	return user, token
}

func doRequest(t *testing.T, r *gin.Engine, method string, path string, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// fakeConn stands in for a live websocket connection in broadcast tests.
type fakeConn struct {
	mu     sync.Mutex
	events []broadcast.Event
	delay  time.Duration
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, v.(broadcast.Event))
	return nil
}

func (f *fakeConn) Close() error { return nil }

func (f *fakeConn) received() []broadcast.Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]broadcast.Event(nil), f.events...)
}

// waitForEvents blocks until the hub's write loop has delivered at least
// want events to the connection. Delivery is asynchronous, so tests cannot
// read the events straight after the request returns.
func waitForEvents(t *testing.T, conn *fakeConn, want int) []broadcast.Event {
	t.Helper()

	require.Eventually(t, func() bool {
		return len(conn.received()) >= want
	}, 2*time.Second, 5*time.Millisecond)

	return conn.received()
}

// assertNoEvents gives the write loop time to run, then checks nothing
// arrived.
func assertNoEvents(t *testing.T, conn *fakeConn, msgAndArgs ...interface{}) {
	t.Helper()

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, conn.received(), msgAndArgs...)
}

func createWishlist(t *testing.T, r *gin.Engine, token string, name string, isPrivate bool) wishlistBody {
	t.Helper()

	w := doRequest(t, r, http.MethodPost, "/api/wishlists", token, gin.H{"name": name, "isPrivate": isPrivate})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created wishlistBody
	decodeBody(t, w, &created)

	return created
}

// Response shapes the tests assert against.

type userBody struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type wishlistBody struct {
	ID            uint          `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	IsPrivate     bool          `json:"isPrivate"`
	InviteCode    string        `json:"inviteCode"`
	Owner         userBody      `json:"owner"`
	Collaborators []userBody    `json:"collaborators"`
	Products      []productBody `json:"products"`
}

type productBody struct {
	ID           uint           `json:"id"`
	WishlistID   uint           `json:"wishlistId"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Price        float64        `json:"price"`
	ImageURL     string         `json:"imageUrl"`
	AddedBy      userBody       `json:"addedBy"`
	LastEditedBy userBody       `json:"lastEditedBy"`
	Comments     []commentBody  `json:"comments"`
	Reactions    []reactionBody `json:"reactions"`
}

type commentBody struct {
	ID   uint     `json:"id"`
	Text string   `json:"text"`
	User userBody `json:"user"`
}

type reactionBody struct {
	ID    uint     `json:"id"`
	Emoji string   `json:"emoji"`
	User  userBody `json:"user"`
}

type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}
