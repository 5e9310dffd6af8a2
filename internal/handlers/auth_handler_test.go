package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newAuthRouter() *gin.Engine {
	r := gin.New()
	r.POST("/api/register", Register)
	r.POST("/api/login", Login)
	return r
}

func TestRegister_SuccessAndDuplicateEmail(t *testing.T) {
	setupHandlerTest(t)
	r := newAuthRouter()

	payload := map[string]any{
		"fullname": "Alice",
		"email":    "Alice@Example.com",
		"password": "secret123",
	}
	body := requireStatus(t, doJSON(t, r, http.MethodPost, "/api/register", "", payload), http.StatusCreated)
	require.Equal(t, true, body["success"])
	require.NotEmpty(t, body["token"])

	user := body["user"].(map[string]any)
	require.Equal(t, "Alice", user["fullname"])
	_, leaked := user["password"]
	require.False(t, leaked)

	// Same email again, case-insensitive.
	payload["email"] = "alice@example.com"
	body = requireStatus(t, doJSON(t, r, http.MethodPost, "/api/register", "", payload), http.StatusConflict)
	require.Equal(t, "Email is already registered", body["message"])
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	setupHandlerTest(t)
	r := newAuthRouter()

	payload := map[string]any{
		"fullname": "Alice",
		"email":    "alice@example.com",
		"password": "abc",
	}
	requireStatus(t, doJSON(t, r, http.MethodPost, "/api/register", "", payload), http.StatusBadRequest)
}

func TestLogin_WrongPasswordAndSuccess(t *testing.T) {
	setupHandlerTest(t)
	r := newAuthRouter()

	register := map[string]any{
		"fullname": "Bob",
		"email":    "bob@example.com",
		"password": "secret123",
	}
	requireStatus(t, doJSON(t, r, http.MethodPost, "/api/register", "", register), http.StatusCreated)

	login := map[string]any{"email": "bob@example.com", "password": "wrong-one"}
	body := requireStatus(t, doJSON(t, r, http.MethodPost, "/api/login", "", login), http.StatusUnauthorized)
	require.Equal(t, "Invalid email or password", body["message"])

	login["password"] = "secret123"
	body = requireStatus(t, doJSON(t, r, http.MethodPost, "/api/login", "", login), http.StatusOK)
	require.Equal(t, true, body["success"])
	require.NotEmpty(t, body["token"])
}

func TestLogin_UnknownEmail(t *testing.T) {
	setupHandlerTest(t)
	r := newAuthRouter()

	login := map[string]any{"email": "ghost@example.com", "password": "whatever"}
	body := requireStatus(t, doJSON(t, r, http.MethodPost, "/api/login", "", login), http.StatusUnauthorized)
	require.Equal(t, "Invalid email or password", body["message"])
}
