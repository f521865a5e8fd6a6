package user

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

// User is a dashboard account. Passwords are stored and compared in
// plaintext; this mirrors the demo auth flow, which issues no tokens and
// performs no hashing.
type User struct {
	Email     string `json:"email"`
	Password  string `json:"-"`
	CreatedAt int64  `json:"createdAt"`
}

type UserRepository interface {
	CreateUser(user *User) error
	GetUserByEmail(email string) (*User, error)
}

type Endpoints struct {
	userRepository UserRepository
}

func NewEndpoints(userRepository UserRepository) *Endpoints {
	return &Endpoints{userRepository: userRepository}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string     `json:"message"`
	User    *userEmail `json:"user,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type userEmail struct {
	Email string `json:"email"`
}

// Signup handles POST /api/signup. A duplicate email is rejected; there is
// no other validation of the submitted credentials.
func (e *Endpoints) Signup(ctx *fasthttp.RequestCtx) {
	var creds credentials
	if err := json.Unmarshal(ctx.PostBody(), &creds); err != nil {
		writeJSON(ctx, fasthttp.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	existing, err := e.userRepository.GetUserByEmail(creds.Email)
	if err != nil {
		log.Error().Err(err).Msg("Failed to look up user")
		writeJSON(ctx, fasthttp.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		return
	}
	if existing != nil {
		writeJSON(ctx, fasthttp.StatusConflict, errorResponse{Error: "User already exists"})
		return
	}

	newUser := &User{
		Email:     creds.Email,
		Password:  creds.Password,
		CreatedAt: time.Now().Unix(),
	}

	if err := e.userRepository.CreateUser(newUser); err != nil {
		log.Error().Err(err).Msg("Failed to create user")
		writeJSON(ctx, fasthttp.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		return
	}

	log.Info().Str("email", newUser.Email).Msg("User signed up")
	writeJSON(ctx, fasthttp.StatusOK, messageResponse{Message: "Signup successful"})
}

// Login handles POST /api/login with a plaintext credential comparison.
func (e *Endpoints) Login(ctx *fasthttp.RequestCtx) {
	var creds credentials
	if err := json.Unmarshal(ctx.PostBody(), &creds); err != nil {
		writeJSON(ctx, fasthttp.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	existing, err := e.userRepository.GetUserByEmail(creds.Email)
	if err != nil {
		log.Error().Err(err).Msg("Failed to look up user")
		writeJSON(ctx, fasthttp.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		return
	}
	if existing == nil {
		writeJSON(ctx, fasthttp.StatusUnauthorized, errorResponse{Error: "User not found"})
		return
	}

	if creds.Password != existing.Password {
		writeJSON(ctx, fasthttp.StatusUnauthorized, errorResponse{Error: "Invalid password"})
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, messageResponse{
		Message: "Login successful",
		User:    &userEmail{Email: existing.Email},
	})
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		ctx.Error("Internal Server Error", fasthttp.StatusInternalServerError)
		return
	}

	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}
