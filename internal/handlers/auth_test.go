package handlers_test

import (
	"net/http"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashs79/wishlist-app/db"
	"github.com/yashs79/wishlist-app/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	r, _ := setupTest(t)

	w := doRequest(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Alice", "email": "Alice@Example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var registered struct {
		Token string   `json:"token"`
		User  userBody `json:"user"`
	}
	decodeBody(t, w, &registered)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "alice@example.com", registered.User.Email, "email is normalized")

	// Duplicate email is rejected.
	w = doRequest(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Alice Again", "email": "alice@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var loggedIn struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &loggedIn)

	w = doRequest(t, r, http.MethodGet, "/api/auth/me", loggedIn.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		User userBody `json:"user"`
	}
	decodeBody(t, w, &me)
	assert.Equal(t, "Alice", me.User.Name)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	r, _ := setupTest(t)
	createUser(t, "Alice", "alice@example.com")

	w := doRequest(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrongpassword",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeRequiresToken(t *testing.T) {
	r, _ := setupTest(t)

	w := doRequest(t, r, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// Two registrations for the same email can both pass the existence check;
// exactly one may win and the loser gets the same conflict as a plain
// duplicate.
func TestSimultaneousRegistrationsSameEmail(t *testing.T) {
	r, _ := setupTest(t)

	// One connection serializes the database without serializing the
	// handlers, so both requests race past the existence check.
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	codes := make(chan int, 2)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := doRequest(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
				"name": "Bob", "email": "bob@example.com", "password": "password123",
			})
			codes <- w.Code
		}()
	}
	wg.Wait()
	close(codes)

	var got []int
	for code := range codes {
		got = append(got, code)
	}
	assert.ElementsMatch(t, []int{http.StatusCreated, http.StatusBadRequest}, got)

	var users int64
	require.NoError(t, db.DB.Model(&models.User{}).Where("email = ?", "bob@example.com").Count(&users).Error)
	assert.EqualValues(t, 1, users)
}
