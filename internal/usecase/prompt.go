package usecase

import (
	"fmt"
	"strings"

	"cafe-agent/internal/domain"
)

func buildExtractionPrompt(menuKeys []string, utterance string) string {
	return strings.Join([]string{
		"Extract food items and quantities.",
		"",
		"Menu: " + strings.Join(menuKeys, ", "),
		"",
		fmt.Sprintf("User: %q", utterance),
		"",
		"IMPORTANT Rules:",
		`- "a burger" = burger, quantity 1`,
		`- "two burgers" = burger, quantity 2`,
		`- "three more coffees" = coffee, quantity 3`,
		`- If user says "more", still count the quantity correctly`,
		"- Return [] if no items found",
		"",
		"Return ONLY a valid JSON array:",
		`[{"item": "exact_menu_item", "quantity": number}]`,
		"",
		"Examples:",
		`"I want three coffees" -> [{"item": "coffee", "quantity": 3}]`,
		`"add two more burgers" -> [{"item": "burger", "quantity": 2}]`,
		`"five fries please" -> [{"item": "fries", "quantity": 5}]`,
		"",
		"JSON response:",
	}, "\n")
}

func buildWelcomePrompt(restaurant, assistant, userName string) string {
	return strings.Join([]string{
		fmt.Sprintf("You are %s, a friendly server at %s.", assistant, restaurant),
		"Greet the customer" + nameGreeting(userName) + " warmly and ask what they would like to order.",
		"Keep it to 2-3 sentences maximum.",
		"Be natural and conversational.",
	}, "\n")
}

func buildItemsAddedPrompt(restaurant, assistant string, added []domain.ExtractedItem, total float64) string {
	return strings.Join([]string{
		fmt.Sprintf("You are %s, a friendly server at %s.", assistant, restaurant),
		"",
		"Customer just ordered: " + itemsText(added),
		fmt.Sprintf("Their new cart total is: $%.2f", total),
		"",
		"Respond in EXACTLY 2-3 complete sentences:",
		"1. Enthusiastically confirm what was added",
		"2. State the new total clearly",
		"3. Ask if they want anything else",
		"",
		"Be conversational and natural. Complete all sentences.",
	}, "\n")
}

func buildCheckoutPrompt(restaurant, assistant string, total float64) string {
	return strings.Join([]string{
		fmt.Sprintf("You are %s, a friendly server at %s.", assistant, restaurant),
		"",
		"The customer is completing their order.",
		fmt.Sprintf("Final total: $%.2f", total),
		"",
		"Respond in EXACTLY 2-3 complete sentences:",
		"1. Thank them for their order",
		"2. Confirm the total amount",
		"3. Let them know the food will be ready soon",
		"",
		"Be warm and appreciative. Complete all sentences.",
	}, "\n")
}

func itemsText(items []domain.ExtractedItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%d %s", it.Quantity, it.DisplayName))
	}
	return strings.Join(parts, ", ")
}

func nameGreeting(userName string) string {
	if userName == "" {
		return ""
	}
	return " " + userName
}
