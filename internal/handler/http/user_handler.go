package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vasiliy-maslov/garage-platform/internal/auth"
	"github.com/vasiliy-maslov/garage-platform/internal/user"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

type UserHandler struct {
	service  user.Service
	validate *validator.Validate
}

func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *UserHandler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/register", h.handleRegister)
	router.Post("/auth/login", h.handleLogin)
	router.With(auth.RequireAuth).Get("/users/me", h.handleGetCurrentUser)
	router.With(auth.RequireAdmin).Get("/users", h.handleListUsers)
	router.With(auth.RequireAdmin).Get("/users/{id}", h.handleGetUserByID)
}

func (h *UserHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	created, err := h.service.Register(r.Context(), user.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to register user")
		return
	}

	respondWithData(w, http.StatusCreated, "User registered successfully", toUserResponse(created))
}

func (h *UserHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, err, "Failed to login")
		return
	}

	respondWithData(w, http.StatusOK, "", LoginResponse{Token: session.Token, User: toUserResponse(session.User)})
}

func (h *UserHandler) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	found, err := h.service.GetUserByID(r.Context(), id.UserID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get user")
		return
	}

	respondWithData(w, http.StatusOK, "", toUserResponse(found))
}

func (h *UserHandler) handleGetUserByID(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to get user by id")
		return
	}

	respondWithData(w, http.StatusOK, "", toUserResponse(found))
}

func (h *UserHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list users")
		return
	}

	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	respondWithData(w, http.StatusOK, "", out)
}
