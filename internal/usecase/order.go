package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"cafe-agent/internal/domain"
	"cafe-agent/internal/menu"
)

const (
	orderStatusCompleted = "Completed"
	recordTimeout        = 5 * time.Second
)

// OrderRecorder is the CRM-like record store, used only at checkout.
// Failures are logged and swallowed; they never block the user response.
type OrderRecorder interface {
	CreateOrder(ctx context.Context, customerID, sessionID string, lines []domain.OrderLine, total float64, status string) (string, error)
}

// Extractor is the engine-facing extraction policy.
type Extractor interface {
	Extract(ctx context.Context, utterance string) []domain.ExtractedItem
}

// Composer is the engine-facing response composer.
type Composer interface {
	Compose(ctx context.Context, action Action, p ResponsePayload) string
}

// CustomerRef identifies the authenticated customer for a turn, when any.
type CustomerRef struct {
	ID   string
	Name string
}

type ProcessInput struct {
	Text      string
	SessionID string
	Customer  *CustomerRef
}

type ProcessOutput struct {
	Success    bool
	Cart       []domain.CartLine
	Total      float64
	Response   string
	ItemsAdded []domain.ExtractedItem
	Checkout   bool
	OrderID    string
}

// OrderService runs one utterance through classify, extract, merge and
// compose, mutating the session under its per-session lock.
type OrderService struct {
	catalog   *menu.Catalog
	extractor Extractor
	composer  Composer
	sessions  *SessionStore
	recorder  OrderRecorder
	logger    *slog.Logger
}

// NewOrderService wires the engine. The recorder is optional: without one
// (or without an authenticated customer) checkout simply skips persistence.
func NewOrderService(catalog *menu.Catalog, extractor Extractor, composer Composer, sessions *SessionStore, recorder OrderRecorder, logger *slog.Logger) (*OrderService, error) {
	if catalog == nil {
		return nil, errors.New("usecase: catalog must not be nil")
	}
	if extractor == nil {
		return nil, errors.New("usecase: extractor must not be nil")
	}
	if composer == nil {
		return nil, errors.New("usecase: composer must not be nil")
	}
	if sessions == nil {
		return nil, errors.New("usecase: session store must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{
		catalog:   catalog,
		extractor: extractor,
		composer:  composer,
		sessions:  sessions,
		recorder:  recorder,
		logger:    logger,
	}, nil
}

func (s *OrderService) Process(ctx context.Context, in ProcessInput) (ProcessOutput, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return ProcessOutput{}, newError(ErrorInvalidInput, "empty_session_id", nil)
	}
	userName := ""
	if in.Customer != nil {
		userName = in.Customer.Name
	}

	var out ProcessOutput
	err := s.sessions.Do(sessionID, func(sess *Session) error {
		sess.Log = append(sess.Log, "Customer: "+in.Text)

		switch Classify(in.Text) {
		case IntentCasual:
			out = ProcessOutput{
				Success:  true,
				Cart:     snapshotCart(sess.Cart),
				Total:    domain.CartTotal(sess.Cart),
				Response: s.composer.Compose(ctx, ActionWelcome, ResponsePayload{UserName: userName}),
			}

		case IntentCartClear:
			// Immediate reset; the completed flag stays as-is.
			sess.Cart = nil
			out = ProcessOutput{
				Success:  true,
				Cart:     []domain.CartLine{},
				Response: "Cart cleared! What would you like to order?",
			}

		case IntentCheckout:
			out = s.checkout(ctx, sess, in.Customer, userName)

		default:
			out = s.addItems(ctx, sess, userName, in.Text)
		}
		return nil
	})
	if err != nil {
		return ProcessOutput{}, err
	}
	return out, nil
}

func (s *OrderService) checkout(ctx context.Context, sess *Session, customer *CustomerRef, userName string) ProcessOutput {
	if len(sess.Cart) == 0 {
		return ProcessOutput{
			Success:  false,
			Cart:     []domain.CartLine{},
			Response: "Your cart is empty! What would you like to order?",
		}
	}

	total := domain.CartTotal(sess.Cart)
	response := s.composer.Compose(ctx, ActionCheckout, ResponsePayload{Total: total, UserName: userName})
	orderID := s.recordOrder(ctx, customer, sess.ID, sess.Cart, total)

	// The cart is kept frozen for the receipt; the next successful order
	// in this session starts from empty.
	sess.Completed = true

	return ProcessOutput{
		Success:  true,
		Cart:     snapshotCart(sess.Cart),
		Total:    total,
		Response: response,
		Checkout: true,
		OrderID:  orderID,
	}
}

func (s *OrderService) addItems(ctx context.Context, sess *Session, userName, text string) ProcessOutput {
	items := s.extractor.Extract(ctx, text)
	if len(items) == 0 {
		return ProcessOutput{
			Success:  false,
			Cart:     snapshotCart(sess.Cart),
			Total:    domain.CartTotal(sess.Cart),
			Response: s.composer.Compose(ctx, ActionNoItems, ResponsePayload{}),
		}
	}

	if sess.Completed {
		sess.Cart = nil
		sess.Completed = false
	}
	sess.Cart = MergeItems(sess.Cart, items)
	total := domain.CartTotal(sess.Cart)

	return ProcessOutput{
		Success:    true,
		Cart:       snapshotCart(sess.Cart),
		Total:      total,
		Response:   s.composer.Compose(ctx, ActionItemsAdded, ResponsePayload{AddedItems: items, Total: total, UserName: userName}),
		ItemsAdded: items,
	}
}

// recordOrder writes the completed order best-effort. Anonymous sessions
// and missing recorders skip the write; failures only cost the order id.
func (s *OrderService) recordOrder(ctx context.Context, customer *CustomerRef, sessionID string, cart []domain.CartLine, total float64) string {
	if s.recorder == nil || customer == nil || customer.ID == "" {
		return ""
	}

	lines := make([]domain.OrderLine, 0, len(cart))
	for _, l := range cart {
		lines = append(lines, domain.OrderLine{Name: l.DisplayName, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}

	recordCtx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()

	orderID, err := s.recorder.CreateOrder(recordCtx, customer.ID, sessionID, lines, total, orderStatusCompleted)
	if err != nil {
		s.logger.Warn("order record write failed", "session_id", sessionID, "err", err)
		return ""
	}
	return orderID
}

// Welcome composes the greeting used by the welcome endpoint.
func (s *OrderService) Welcome(ctx context.Context, userName string) string {
	return s.composer.Compose(ctx, ActionWelcome, ResponsePayload{UserName: userName})
}
