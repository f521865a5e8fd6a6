package user

import (
	"fmt"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

// mockUserRepository for testing
type mockUserRepository struct {
	users map[string]*User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*User)}
}

func (m *mockUserRepository) CreateUser(user *User) error {
	if _, exists := m.users[user.Email]; exists {
		return fmt.Errorf("user already exists")
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) GetUserByEmail(email string) (*User, error) {
	return m.users[email], nil
}

func postCtx(body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod("POST")
	ctx.Request.Header.SetContentType("application/json")
	ctx.Request.SetBodyString(body)
	return ctx
}

func decodeBody(t *testing.T, ctx *fasthttp.RequestCtx) map[string]interface{} {
	t.Helper()

	var payload map[string]interface{}
	assert.NoError(t, json.Unmarshal(ctx.Response.Body(), &payload))
	return payload
}

func TestSignup_ShouldCreateUser(t *testing.T) {
	// given
	repo := newMockUserRepository()
	endpoints := NewEndpoints(repo)
	ctx := postCtx(`{"email":"alice@example.com","password":"secret"}`)

	// when
	endpoints.Signup(ctx)

	// then
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "Signup successful", decodeBody(t, ctx)["message"])
	assert.Len(t, repo.users, 1)
	assert.Equal(t, "secret", repo.users["alice@example.com"].Password)
}

func TestSignup_DuplicateEmailShouldNotCreateSecondRecord(t *testing.T) {
	// given
	repo := newMockUserRepository()
	endpoints := NewEndpoints(repo)
	endpoints.Signup(postCtx(`{"email":"alice@example.com","password":"secret"}`))

	// when
	ctx := postCtx(`{"email":"alice@example.com","password":"other"}`)
	endpoints.Signup(ctx)

	// then
	assert.Equal(t, fasthttp.StatusConflict, ctx.Response.StatusCode())
	assert.Equal(t, "User already exists", decodeBody(t, ctx)["error"])
	assert.Len(t, repo.users, 1)
	assert.Equal(t, "secret", repo.users["alice@example.com"].Password)
}

func TestSignup_InvalidBodyShouldBeRejected(t *testing.T) {
	// given
	endpoints := NewEndpoints(newMockUserRepository())
	ctx := postCtx(`not json`)

	// when
	endpoints.Signup(ctx)

	// then
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestLogin_ShouldReturnUserEmail(t *testing.T) {
	// given
	repo := newMockUserRepository()
	endpoints := NewEndpoints(repo)
	endpoints.Signup(postCtx(`{"email":"alice@example.com","password":"secret"}`))

	// when
	ctx := postCtx(`{"email":"alice@example.com","password":"secret"}`)
	endpoints.Login(ctx)

	// then
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	payload := decodeBody(t, ctx)
	assert.Equal(t, "Login successful", payload["message"])
	assert.Equal(t, map[string]interface{}{"email": "alice@example.com"}, payload["user"])
}

func TestLogin_UnknownEmailShouldFail(t *testing.T) {
	// given
	endpoints := NewEndpoints(newMockUserRepository())
	ctx := postCtx(`{"email":"nobody@example.com","password":"secret"}`)

	// when
	endpoints.Login(ctx)

	// then
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	assert.Equal(t, "User not found", decodeBody(t, ctx)["error"])
}

func TestLogin_WrongPasswordShouldFail(t *testing.T) {
	// given
	repo := newMockUserRepository()
	endpoints := NewEndpoints(repo)
	endpoints.Signup(postCtx(`{"email":"alice@example.com","password":"secret"}`))

	// when
	ctx := postCtx(`{"email":"alice@example.com","password":"wrong"}`)
	endpoints.Login(ctx)

	// then
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	assert.Equal(t, "Invalid password", decodeBody(t, ctx)["error"])
}
