package usecase

import (
	"context"
	"fmt"
	"strings"

	"cafe-agent/internal/domain"
)

// Action keys the response template used for a processed turn.
type Action string

const (
	ActionWelcome    Action = "welcome"
	ActionItemsAdded Action = "items_added"
	ActionCheckout   Action = "checkout"
	ActionNoItems    Action = "no_items"
	ActionIdle       Action = "idle"
)

// ResponsePayload carries whatever the selected action interpolates.
type ResponsePayload struct {
	AddedItems []domain.ExtractedItem
	Total      float64
	UserName   string
}

// ResponseComposer produces the user-facing reply for an action. It tries a
// generative phrasing first and falls back to fixed templates; the fallback
// is byte-for-byte deterministic for identical inputs so the engine stays
// testable without the collaborator.
type ResponseComposer struct {
	completer  Completer
	restaurant string
	assistant  string
}

func NewResponseComposer(completer Completer, restaurant, assistant string) *ResponseComposer {
	return &ResponseComposer{completer: completer, restaurant: restaurant, assistant: assistant}
}

func (c *ResponseComposer) Compose(ctx context.Context, action Action, p ResponsePayload) string {
	prompt := ""
	switch action {
	case ActionWelcome:
		prompt = buildWelcomePrompt(c.restaurant, c.assistant, p.UserName)
	case ActionItemsAdded:
		if len(p.AddedItems) > 0 {
			prompt = buildItemsAddedPrompt(c.restaurant, c.assistant, p.AddedItems, p.Total)
		}
	case ActionCheckout:
		prompt = buildCheckoutPrompt(c.restaurant, c.assistant, p.Total)
	}
	// no_items and idle are always templated.
	if prompt == "" || c.completer == nil {
		return c.fallback(action, p)
	}

	raw, err := c.completer.Complete(ctx, prompt)
	if err != nil {
		return c.fallback(action, p)
	}
	result := polishReply(raw)
	if result == "" {
		return c.fallback(action, p)
	}
	return result
}

func (c *ResponseComposer) fallback(action Action, p ResponsePayload) string {
	switch action {
	case ActionWelcome:
		return fmt.Sprintf("Hey%s! Welcome to %s! I'm %s, and I'll be taking care of you today. What can I get started for you?",
			nameGreeting(p.UserName), c.restaurant, c.assistant)
	case ActionItemsAdded:
		if len(p.AddedItems) == 0 {
			break
		}
		return fmt.Sprintf("Perfect! I've added %s to your order. Your new total is $%.2f. Would you like anything else?",
			itemsText(p.AddedItems), p.Total)
	case ActionCheckout:
		return fmt.Sprintf("Awesome! Thanks so much for your order. Your total comes to $%.2f. We'll have that ready for you in just a few minutes!", p.Total)
	case ActionNoItems:
		return "Sorry, I didn't quite catch that! Could you tell me what you'd like to order?"
	}
	return "What can I get for you today?"
}

// polishReply trims surrounding quotes and guarantees terminal punctuation.
func polishReply(raw string) string {
	result := strings.TrimSpace(raw)
	result = strings.Trim(result, `"'`)
	result = strings.TrimSpace(result)
	if result == "" {
		return ""
	}
	last := result[len(result)-1]
	if last != '.' && last != '!' && last != '?' {
		result += "."
	}
	return result
}
