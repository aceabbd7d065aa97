package usecase

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"cafe-agent/internal/domain"
	"cafe-agent/internal/menu"
)

// Completer is the text-completion collaborator. Timeouts, auth failures
// and quota errors all surface as a plain error: the engine treats every
// failure mode uniformly as "unavailable".
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ItemExtractor is one extraction strategy. An error means this strategy
// could not produce a result, not that the utterance was bad; callers fall
// back rather than propagate.
type ItemExtractor interface {
	TryExtract(ctx context.Context, utterance string) ([]domain.ExtractedItem, error)
}

// GenerativeExtractor asks the completion collaborator for a JSON array of
// {item, quantity} tuples restricted to exact menu keys.
type GenerativeExtractor struct {
	completer Completer
	catalog   *menu.Catalog
}

func NewGenerativeExtractor(completer Completer, catalog *menu.Catalog) *GenerativeExtractor {
	return &GenerativeExtractor{completer: completer, catalog: catalog}
}

type extractedTuple struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

var (
	codeFenceRe = regexp.MustCompile("```(?:json)?\\s*")
	jsonArrayRe = regexp.MustCompile(`(?s)\[.*?\]`)
)

func (g *GenerativeExtractor) TryExtract(ctx context.Context, utterance string) ([]domain.ExtractedItem, error) {
	raw, err := g.completer.Complete(ctx, buildExtractionPrompt(g.catalog.Keys(), utterance))
	if err != nil {
		return nil, err
	}

	tuples, err := parseExtractedTuples(raw)
	if err != nil {
		return nil, err
	}

	// Entries that are not exact menu keys are discarded, never
	// fuzzy-matched.
	items := make([]domain.ExtractedItem, 0, len(tuples))
	for _, tu := range tuples {
		it, ok := g.catalog.Lookup(tu.Item)
		if !ok {
			continue
		}
		qty := tu.Quantity
		if qty < 1 {
			qty = 1
		}
		items = append(items, domain.ExtractedItem{
			Key:         it.Key,
			DisplayName: it.DisplayName,
			UnitPrice:   it.UnitPrice,
			Quantity:    qty,
		})
	}
	return items, nil
}

// parseExtractedTuples sanitizes a completion response (code fences, prose
// around the array) and decodes the first JSON array it contains.
func parseExtractedTuples(raw string) ([]extractedTuple, error) {
	text := codeFenceRe.ReplaceAllString(strings.TrimSpace(raw), "")
	if match := jsonArrayRe.FindString(text); match != "" {
		text = match
	}
	var tuples []extractedTuple
	if err := json.Unmarshal([]byte(text), &tuples); err != nil {
		return nil, err
	}
	return tuples, nil
}

// FallbackExtractor is the deterministic rule-based parser used when the
// completion collaborator is unconfigured or fails. Menu keys are checked
// as substrings in declared catalog order; quantity comes from the token
// immediately before the item word (quantity word or bare integer), with a
// one-token lookback through "more".
type FallbackExtractor struct {
	catalog *menu.Catalog
}

func NewFallbackExtractor(catalog *menu.Catalog) *FallbackExtractor {
	return &FallbackExtractor{catalog: catalog}
}

var quantityWords = map[string]int{
	"a": 1, "an": 1, "one": 1,
	"two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

func (f *FallbackExtractor) TryExtract(_ context.Context, utterance string) ([]domain.ExtractedItem, error) {
	text := strings.ToLower(utterance)
	words := strings.Fields(text)

	var items []domain.ExtractedItem
	for _, key := range f.catalog.Keys() {
		if !strings.Contains(text, key) {
			continue
		}
		it, _ := f.catalog.Lookup(key)
		items = append(items, domain.ExtractedItem{
			Key:         it.Key,
			DisplayName: it.DisplayName,
			UnitPrice:   it.UnitPrice,
			Quantity:    inferQuantity(words, key),
		})
	}
	return items, nil
}

// inferQuantity finds the first token containing the menu key's first word
// and reads the quantity from the preceding token. "more" defers one token
// further back: "three more coffees" is quantity 3.
func inferQuantity(words []string, menuKey string) int {
	firstWord := strings.Fields(menuKey)[0]
	for i, w := range words {
		if !strings.Contains(w, firstWord) {
			continue
		}
		if i == 0 {
			return 1
		}
		prev := words[i-1]
		if qty, ok := quantityWords[prev]; ok {
			return qty
		}
		if n, err := strconv.Atoi(prev); err == nil && n >= 1 {
			return n
		}
		if prev == "more" && i > 1 {
			before := words[i-2]
			if qty, ok := quantityWords[before]; ok {
				return qty
			}
			if n, err := strconv.Atoi(before); err == nil && n >= 1 {
				return n
			}
		}
		return 1
	}
	return 1
}

// ExtractionPolicy prefers the primary strategy and transparently retries
// with the fallback on any primary failure. It never returns an error.
type ExtractionPolicy struct {
	primary  ItemExtractor
	fallback ItemExtractor
}

func NewExtractionPolicy(primary, fallback ItemExtractor) *ExtractionPolicy {
	return &ExtractionPolicy{primary: primary, fallback: fallback}
}

func (p *ExtractionPolicy) Extract(ctx context.Context, utterance string) []domain.ExtractedItem {
	if p.primary != nil {
		items, err := p.primary.TryExtract(ctx, utterance)
		if err == nil {
			return items
		}
	}
	if p.fallback == nil {
		return nil
	}
	items, err := p.fallback.TryExtract(ctx, utterance)
	if err != nil {
		return nil
	}
	return items
}
