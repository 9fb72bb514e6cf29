package http_handlers

import (
	"errors"
	"net/http"

	"github.com/fieldcrew/marketplace-api/internal/application/auth"
	"github.com/fieldcrew/marketplace-api/internal/domain"
	"github.com/fieldcrew/marketplace-api/internal/logger"
	"github.com/fieldcrew/marketplace-api/internal/transport/http/dto"
	"github.com/fieldcrew/marketplace-api/internal/transport/http/middleware"
	"github.com/fieldcrew/marketplace-api/internal/transport/http/response"
)

type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Register(r.Context(), req.ToInput())
	if err != nil {
		middleware.RegistrationsTotal.WithLabelValues(errCode(err)).Inc()
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("account_id", res.Account.ID).
		Str("email", res.Account.Email).
		Bool("is_business", res.Account.IsBusiness).
		Msg("account_registered")

	middleware.RegistrationsTotal.WithLabelValues("success").Inc()

	w.Header().Set(middleware.AuthTokenHeader, res.Token)
	response.Created(w, dto.AuthData{
		Token: res.Token,
		User:  dto.AccountViewFrom(res.Account),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		middleware.LoginAttemptsTotal.WithLabelValues(errCode(err)).Inc()
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("account_id", res.Account.ID).
		Msg("account_logged_in")

	middleware.LoginAttemptsTotal.WithLabelValues("success").Inc()

	w.Header().Set(middleware.AuthTokenHeader, res.Token)
	response.OK(w, dto.AuthData{
		Token: res.Token,
		User:  dto.AccountViewFrom(res.Account),
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenRejected())
		return
	}

	a, err := h.svc.GetAccount(r.Context(), id.AccountID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.MeData{User: dto.AccountViewFrom(a)})
}

func errCode(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "internal_error"
}
