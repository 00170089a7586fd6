package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"
	"github.com/tendant/simple-verify/pkg/verification"
	"github.com/tendant/simple-verify/pkg/verr"
)

// Handler exposes the guest verification flow over HTTP
type Handler struct {
	service *verification.VerificationService
}

// NewHandler creates a new verification API handler
func NewHandler(service *verification.VerificationService) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterGuest handles POST /register/guest
func (h *Handler) RegisterGuest(w http.ResponseWriter, r *http.Request) {
	var req RegisterGuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request body", "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	var params verification.RegisterGuestRequest
	if err := copier.Copy(&params, req); err != nil {
		slog.Error("Failed to map request params", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "An unexpected error occurred"})
		return
	}

	result, err := h.service.RegisterGuest(r.Context(), params)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, RegisterGuestResponse{
		ID:                   result.ID,
		Email:                result.Email,
		VerificationRequired: result.VerificationRequired,
		Message:              "Registration successful. Please check your email to verify your account.",
	})
}

// VerifyGuest handles GET /verify/guest
func (h *Handler) VerifyGuest(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Token is required"})
		return
	}

	result, err := h.service.Redeem(r.Context(), token)
	if err != nil {
		renderError(w, r, err)
		return
	}

	resp := VerifyResponse{Code: result.Code}
	switch result.Code {
	case verification.CodeAlreadyVerified:
		resp.Message = "Email is already verified"
	default:
		resp.Message = "Email verified successfully"
	}
	if result.VerifiedAt != nil {
		verifiedAt := result.VerifiedAt.Format(time.RFC3339)
		resp.VerifiedAt = &verifiedAt
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// ResendVerification handles POST /verify/guest/resend
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req ResendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request body", "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	result, err := h.service.Resend(r.Context(), req.Email)
	if err != nil {
		renderError(w, r, err)
		return
	}

	resp := ResendVerificationResponse{Code: result.Code}
	switch result.Code {
	case verification.CodeResent:
		resp.Message = "Verification email sent successfully"
	case verification.CodeAlreadyVerified:
		resp.Message = "Email is already verified"
	case verification.CodeUnknownEmail:
		resp.Message = "If this email is registered, a verification link has been sent"
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// GetVerificationStatus handles GET /verify/guest/status
func (h *Handler) GetVerificationStatus(w http.ResponseWriter, r *http.Request) {
	email, err := getEmailFromContext(r)
	if err != nil {
		slog.Error("Failed to get email from token context", "error", err)
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "Unauthorized"})
		return
	}

	verified, verifiedAt, err := h.service.GetVerificationStatus(r.Context(), email)
	if err != nil {
		renderError(w, r, err)
		return
	}

	resp := VerificationStatusResponse{EmailVerified: verified}
	if verifiedAt != nil {
		verifiedAtStr := verifiedAt.Format(time.RFC3339)
		resp.VerifiedAt = &verifiedAtStr
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// getEmailFromContext extracts the email claim from the JWT in the
// request context, set by the jwtauth middleware.
func getEmailFromContext(r *http.Request) (string, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", err
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", jwtauth.ErrNoTokenFound
	}
	return email, nil
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
