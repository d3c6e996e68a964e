package account

import (
	"encoding/json"
	"net/http"
	"strings"

	"bookcatalog/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/users", h.CreateUser)
	mux.HandleFunc("POST /v1/login", h.Login)
	mux.HandleFunc("GET /v1/me", h.Me)
}

type createUserReq struct {
	Username      string `json:"username"`
	FavoriteGenre string `json:"favoriteGenre"`
}

// CreateUser handles POST /v1/users
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body createUserReq true "Registration request"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/users [post]
func (h *HTTPHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	u, err := h.service.CreateUser(r.Context(), strings.TrimSpace(req.Username), strings.TrimSpace(req.FavoriteGenre))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, u)
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /v1/login
// @Summary User login
// @Description Exchange credentials for a bearer token
// @Tags users
// @Accept json
// @Produce json
// @Param request body loginReq true "Login request"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /v1/login [post]
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	token, err := h.service.Login(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]string{"value": token}, nil)
}

// Me handles GET /v1/me
// @Summary Current user
// @Description The authenticated user, or null for anonymous requests
// @Tags users
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/me [get]
func (h *HTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	httpx.JSONSuccess(w, r, httpx.PrincipalFrom(r), nil)
}
