package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/jinzhu/copier"
	"github.com/tendant/simple-verify/pkg/login"
	"github.com/tendant/simple-verify/pkg/verr"
)

// Handler exposes the login flow over HTTP
type Handler struct {
	service *login.LoginService
}

// NewHandler creates a new login API handler
func NewHandler(service *login.LoginService) *Handler {
	return &Handler{
		service: service,
	}
}

// Login handles POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request body", "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	var params login.LoginRequest
	if err := copier.Copy(&params, req); err != nil {
		slog.Error("Failed to map request params", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "An unexpected error occurred"})
		return
	}

	result, err := h.service.Login(r.Context(), params)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, LoginResponse{
		AccountID:   result.AccountID,
		Email:       result.Email,
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt.Format(time.RFC3339),
	})
}

// renderError writes a structured error response using the error's code
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	code := verr.GetCode(err)
	status := verr.MapErrorCodeToHTTPStatus(code)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "code", code, "error", err)
	}

	message := "An unexpected error occurred"
	var e *verr.Error
	if errors.As(err, &e) {
		message = e.Message
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{
		Error:   message,
		Code:    string(code),
		Details: verr.GetDetails(err),
	})
}
