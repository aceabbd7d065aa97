package usecase

import "strings"

// Intent is the classified purpose of an utterance.
type Intent int

const (
	IntentCasual Intent = iota
	IntentCartClear
	IntentCheckout
	IntentOrderExtraction
)

func (i Intent) String() string {
	switch i {
	case IntentCasual:
		return "casual"
	case IntentCartClear:
		return "cart_clear"
	case IntentCheckout:
		return "checkout"
	default:
		return "order_extraction"
	}
}

// casualPhrases match the whole trimmed utterance, not substrings, so a
// bare "ok" never turns into a checkout or order attempt while "ok one
// burger" still reaches extraction.
var casualPhrases = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {},
	"good morning": {}, "good afternoon": {}, "good evening": {},
	"how are you": {}, "thanks": {}, "thank you": {},
	"okay": {}, "ok": {}, "yes": {}, "no": {}, "sure": {},
	"alright": {}, "please": {},
}

var checkoutPhrases = []string{
	"checkout", "check out", "complete order", "complete my order",
	"finish order", "finish my order", "place order", "place my order",
	"that's all", "that is all", "i'm done", "im done", "done ordering",
	"finish", "complete", "thats it", "that's it",
}

// Classify decides what an utterance is asking for. Precedence is fixed:
// casual, then cart-clear, then checkout, else order extraction.
func Classify(utterance string) Intent {
	text := strings.ToLower(strings.TrimSpace(utterance))

	if isCasual(text) {
		return IntentCasual
	}
	if strings.Contains(text, "clear") && strings.Contains(text, "cart") {
		return IntentCartClear
	}
	if isCheckout(text) {
		return IntentCheckout
	}
	return IntentOrderExtraction
}

func isCasual(text string) bool {
	// Repeated trailing letters still count ("hiii", "heyyy").
	trimmed := strings.TrimRight(text, "!.?")
	if _, ok := casualPhrases[trimmed]; ok {
		return true
	}
	for _, base := range []string{"hi", "hello", "hey"} {
		if strings.HasPrefix(trimmed, base) && strings.TrimLeft(trimmed[len(base):], string(base[len(base)-1])) == "" {
			return true
		}
	}
	return false
}

func isCheckout(text string) bool {
	for _, phrase := range checkoutPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
