package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"cafe-agent/internal/auth"
	"cafe-agent/internal/domain"
	"cafe-agent/internal/menu"
	"cafe-agent/internal/repository"
	"cafe-agent/internal/usecase"
)

// OrderProcessor is the engine surface consumed by the handler.
type OrderProcessor interface {
	Process(ctx context.Context, in usecase.ProcessInput) (usecase.ProcessOutput, error)
	Welcome(ctx context.Context, userName string) string
}

// Authenticator resolves and manages customer sessions.
type Authenticator interface {
	Signup(ctx context.Context, name, email, phone, password string) (domain.Customer, error)
	Login(ctx context.Context, email, password string) (string, auth.Identity, error)
	Logout(token string)
	FromToken(token string) (auth.Identity, bool)
}

// OrderHistory reads past orders for account-scoped lookups.
type OrderHistory interface {
	QueryOrders(ctx context.Context, customerID string) ([]domain.Order, error)
}

// Synthesizer renders reply text as audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Config wires the handler. Orders, Auth and Catalog are required; History
// and TTS degrade to informative errors or empty results when absent.
type Config struct {
	Orders     OrderProcessor
	Auth       Authenticator
	Catalog    *menu.Catalog
	History    OrderHistory
	TTS        Synthesizer
	Restaurant string
	Assistant  string

	CompletionConfigured bool
	RecordStoreConnected bool
}

type Handler struct {
	cfg Config
}

func NewHandler(cfg Config) (*Handler, error) {
	if cfg.Orders == nil {
		return nil, errors.New("handler: order processor must not be nil")
	}
	if cfg.Auth == nil {
		return nil, errors.New("handler: authenticator must not be nil")
	}
	if cfg.Catalog == nil {
		return nil, errors.New("handler: catalog must not be nil")
	}
	return &Handler{cfg: cfg}, nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type statusResponse struct {
	Status               string `json:"status"`
	Restaurant           string `json:"restaurant"`
	Assistant            string `json:"assistant"`
	CompletionConfigured bool   `json:"completion_configured"`
	RecordStoreConnected bool   `json:"record_store_connected"`
	MultiUserEnabled     bool   `json:"multi_user_enabled"`
}

type processOrderRequest struct {
	Text         string `json:"text"`
	SessionID    string `json:"session_id"`
	SessionToken string `json:"session_token,omitempty"`
}

type processOrderResponse struct {
	Success    bool                   `json:"success"`
	Cart       []domain.CartLine      `json:"cart"`
	Total      float64                `json:"total"`
	Response   string                 `json:"response"`
	ItemsAdded []domain.ExtractedItem `json:"items_added,omitempty"`
	Checkout   bool                   `json:"checkout,omitempty"`
	OrderID    string                 `json:"order_id,omitempty"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message"`
	SessionToken string        `json:"session_token"`
	User         auth.Identity `json:"user"`
}

type logoutRequest struct {
	SessionToken string `json:"session_token"`
}

type ttsRequest struct {
	Text string `json:"text"`
}

type ttsResponse struct {
	Success bool   `json:"success"`
	Audio   string `json:"audio"`
}

// Handle routes one API Gateway event.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(event.Headers)

	route := event.HTTPMethod + " " + strings.TrimRight(event.Path, "/")
	if route == http.MethodGet+" " {
		route = http.MethodGet + " /"
	}

	switch route {
	case "GET /":
		return h.respond(http.StatusOK, statusResponse{
			Status:               "running",
			Restaurant:           h.cfg.Restaurant,
			Assistant:            h.cfg.Assistant,
			CompletionConfigured: h.cfg.CompletionConfigured,
			RecordStoreConnected: h.cfg.RecordStoreConnected,
			MultiUserEnabled:     true,
		}, corrID), nil
	case "GET /api/menu":
		return h.respond(http.StatusOK, map[string]any{"menu": h.cfg.Catalog.Items()}, corrID), nil
	case "GET /api/config":
		return h.respond(http.StatusOK, map[string]string{
			"restaurant_name": h.cfg.Restaurant,
			"assistant_name":  h.cfg.Assistant,
		}, corrID), nil
	case "GET /api/welcome":
		return h.welcome(ctx, event, corrID), nil
	case "POST /api/process-order":
		return h.processOrder(ctx, event, corrID), nil
	case "POST /api/auth/signup":
		return h.signup(ctx, event, corrID), nil
	case "POST /api/auth/login":
		return h.login(ctx, event, corrID), nil
	case "POST /api/auth/logout":
		return h.logout(event, corrID), nil
	case "GET /api/auth/me":
		return h.me(event, corrID), nil
	case "GET /api/orders/history":
		return h.history(ctx, event, corrID), nil
	case "POST /api/text-to-speech":
		return h.textToSpeech(ctx, event, corrID), nil
	}
	return h.respond(http.StatusNotFound, errorResponse{Error: "NOT_FOUND"}, corrID), nil
}

func (h *Handler) processOrder(ctx context.Context, event events.APIGatewayProxyRequest, corrID string) events.APIGatewayProxyResponse {
	var req processOrderRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		return h.respond(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput)}, corrID)
	}
	if strings.TrimSpace(req.SessionID) == "" {
		req.SessionID = "default"
	}

	var customer *usecase.CustomerRef
	if id, ok := h.cfg.Auth.FromToken(req.SessionToken); ok {
		customer = &usecase.CustomerRef{ID: id.CustomerID, Name: id.Name}
	}

	out, err := h.cfg.Orders.Process(ctx, usecase.ProcessInput{
		Text:      req.Text,
		SessionID: req.SessionID,
		Customer:  customer,
	})
	if err != nil {
		return h.respondError(err, corrID)
	}

	return h.respond(http.StatusOK, processOrderResponse{
		Success:    out.Success,
		Cart:       out.Cart,
		Total:      out.Total,
		Response:   out.Response,
		ItemsAdded: out.ItemsAdded,
		Checkout:   out.Checkout,
		OrderID:    out.OrderID,
	}, corrID)
}

func (h *Handler) welcome(ctx context.Context, event events.APIGatewayProxyRequest, corrID string) events.APIGatewayProxyResponse {
	userName := ""
	if id, ok := h.cfg.Auth.FromToken(bearerToken(event.Headers)); ok {
		userName = id.Name
	}
	return h.respond(http.StatusOK, map[string]string{"response": h.cfg.Orders.Welcome(ctx, userName)}, corrID)
}

func (h *Handler) signup(ctx context.Context, event events.APIGatewayProxyRequest, corrID string) events.APIGatewayProxyResponse {
	var req signupRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		return h.respond(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput)}, corrID)
	}

	cust, err := h.cfg.Auth.Signup(ctx, req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		return h.respondError(err, corrID)
	}
	return h.respond(http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Account created successfully!",
		"customer": cust,
	}, corrID)
}

func (h *Handler) login(ctx context.Context, event events.APIGatewayProxyRequest, corrID string) events.APIGatewayProxyResponse {
	var req loginRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		return h.respond(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput)}, corrID)
	}

	token, id, err := h.cfg.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return h.respondError(err, corrID)
	}
	return h.respond(http.StatusOK, loginResponse{
		Success:      true,
		Message:      "Login successful!",
		SessionToken: token,
		User:         id,
	}, corrID)
}

func (h *Handler) logout(event events.APIGatewayProxyRequest, corrID string) events.APIGatewayProxyResponse {
	var req logoutRequest
	_ = json.Unmarshal([]byte(event.Body), &req)
	h.cfg.Auth.Logout(req.SessionToken)
	return h.respond(http.StatusOK, map[string]any{"success": true, "message": "Logged out successfully"}, corrID)
}

func (h *Handler) me(event events.APIGatewayProxyRequest, corrID string) events.APIGatewayProxyResponse {
	id, ok := h.cfg.Auth.FromToken(bearerToken(event.Headers))
	if !ok {
		return h.respond(http.StatusUnauthorized, errorResponse{Error: string(usecase.ErrorUnauthorized), Message: "Not authenticated"}, corrID)
	}
	return h.respond(http.StatusOK, map[string]any{"user": id}, corrID)
}

func (h *Handler) history(ctx context.Context, event events.APIGatewayProxyRequest, corrID string) events.APIGatewayProxyResponse {
	id, ok := h.cfg.Auth.FromToken(bearerToken(event.Headers))
	if !ok {
		return h.respond(http.StatusUnauthorized, errorResponse{Error: string(usecase.ErrorUnauthorized), Message: "Not authenticated"}, corrID)
	}
	if h.cfg.History == nil {
		return h.respond(http.StatusOK, map[string]any{"orders": []domain.Order{}}, corrID)
	}

	orders, err := h.cfg.History.QueryOrders(ctx, id.CustomerID)
	if err != nil {
		return h.respond(http.StatusInternalServerError, errorResponse{Error: string(usecase.ErrorInternal)}, corrID)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return h.respond(http.StatusOK, map[string]any{"orders": orders}, corrID)
}

func (h *Handler) textToSpeech(ctx context.Context, event events.APIGatewayProxyRequest, corrID string) events.APIGatewayProxyResponse {
	if h.cfg.TTS == nil {
		return h.respond(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput), Message: "speech synthesis not configured"}, corrID)
	}
	var req ttsRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil || strings.TrimSpace(req.Text) == "" {
		return h.respond(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput)}, corrID)
	}

	audio, err := h.cfg.TTS.Synthesize(ctx, req.Text)
	if err != nil {
		return h.respond(http.StatusBadGateway, errorResponse{Error: string(usecase.ErrorUpstream)}, corrID)
	}
	return h.respond(http.StatusOK, ttsResponse{
		Success: true,
		Audio:   base64.StdEncoding.EncodeToString(audio),
	}, corrID)
}

func (h *Handler) respondError(err error, corrID string) events.APIGatewayProxyResponse {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return h.respond(http.StatusUnauthorized, errorResponse{Error: string(usecase.ErrorUnauthorized), Message: "Invalid email or password"}, corrID)
	case errors.Is(err, auth.ErrMissingFields):
		return h.respond(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput), Message: "Missing required fields"}, corrID)
	case errors.Is(err, repository.ErrCustomerExists):
		return h.respond(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput), Message: "User already exists"}, corrID)
	case errors.Is(err, auth.ErrUnavailable):
		return h.respond(http.StatusServiceUnavailable, errorResponse{Error: string(usecase.ErrorInternal), Message: "accounts not configured"}, corrID)
	}

	var ucErr *usecase.Error
	if errors.As(err, &ucErr) {
		status := http.StatusInternalServerError
		switch ucErr.Code {
		case usecase.ErrorInvalidInput:
			status = http.StatusBadRequest
		case usecase.ErrorUnauthorized:
			status = http.StatusUnauthorized
		case usecase.ErrorUpstream:
			status = http.StatusBadGateway
		}
		return h.respond(status, errorResponse{Error: string(ucErr.Code), Message: ucErr.Reason}, corrID)
	}
	return h.respond(http.StatusInternalServerError, errorResponse{Error: string(usecase.ErrorInternal)}, corrID)
}

func (h *Handler) respond(status int, body any, corrID string) events.APIGatewayProxyResponse {
	raw, err := json.Marshal(body)
	if err != nil {
		raw = []byte(`{"error":"INTERNAL_ERROR"}`)
		status = http.StatusInternalServerError
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":     "application/json",
			"X-Correlation-Id": corrID,
		},
		Body: string(raw),
	}
}

func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, "X-Correlation-Id") && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

func bearerToken(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, "Authorization") {
			return strings.TrimSpace(strings.TrimPrefix(v, "Bearer "))
		}
	}
	return ""
}
