package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"cafe-agent/internal/domain"
	"cafe-agent/internal/menu"
)

type stubCompleter struct {
	resp    string
	err     error
	prompts []string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.resp, s.err
}

func TestFallbackExtract_QuantityWords(t *testing.T) {
	f := NewFallbackExtractor(menu.Default())

	items, err := f.TryExtract(context.Background(), "two burgers and a coffee")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "burger", items[0].Key)
	require.Equal(t, 2, items[0].Quantity)
	require.Equal(t, "coffee", items[1].Key)
	require.Equal(t, 1, items[1].Quantity)
}

func TestFallbackExtract_MoreChaining(t *testing.T) {
	f := NewFallbackExtractor(menu.Default())

	items, err := f.TryExtract(context.Background(), "three more coffees")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "coffee", items[0].Key)
	require.Equal(t, 3, items[0].Quantity)
}

func TestFallbackExtract_BareIntegers(t *testing.T) {
	f := NewFallbackExtractor(menu.Default())

	items, err := f.TryExtract(context.Background(), "add 5 fries")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "fries", items[0].Key)
	require.Equal(t, 5, items[0].Quantity)
}

func TestFallbackExtract_DefaultsToOne(t *testing.T) {
	f := NewFallbackExtractor(menu.Default())

	items, err := f.TryExtract(context.Background(), "pizza please")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 1, items[0].Quantity)
}

func TestFallbackExtract_MultiWordKey(t *testing.T) {
	f := NewFallbackExtractor(menu.Default())

	items, err := f.TryExtract(context.Background(), "two chicken wings")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "chicken wings", items[0].Key)
	require.Equal(t, 2, items[0].Quantity)
}

func TestFallbackExtract_NoItems(t *testing.T) {
	f := NewFallbackExtractor(menu.Default())

	items, err := f.TryExtract(context.Background(), "tell me a joke")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestGenerativeExtract_HappyPath(t *testing.T) {
	c := &stubCompleter{resp: `[{"item":"coffee","quantity":3},{"item":"burger","quantity":1}]`}
	g := NewGenerativeExtractor(c, menu.Default())

	items, err := g.TryExtract(context.Background(), "three coffees and a burger")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "coffee", items[0].Key)
	require.Equal(t, 3, items[0].Quantity)
	require.Equal(t, "Burger", items[1].DisplayName)
	require.InDelta(t, 8.99, items[1].UnitPrice, 1e-9)

	require.Len(t, c.prompts, 1)
	require.Contains(t, c.prompts[0], "burger, cheeseburger, pizza")
	require.Contains(t, c.prompts[0], `"three coffees and a burger"`)
}

func TestGenerativeExtract_SanitizesFencedResponse(t *testing.T) {
	c := &stubCompleter{resp: "```json\n[{\"item\": \"pizza\", \"quantity\": 2}]\n```"}
	g := NewGenerativeExtractor(c, menu.Default())

	items, err := g.TryExtract(context.Background(), "two pizzas")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "pizza", items[0].Key)
	require.Equal(t, 2, items[0].Quantity)
}

func TestGenerativeExtract_IsolatesFirstArray(t *testing.T) {
	c := &stubCompleter{resp: `Here you go: [{"item":"soda","quantity":1}] anything else?`}
	g := NewGenerativeExtractor(c, menu.Default())

	items, err := g.TryExtract(context.Background(), "a soda")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "soda", items[0].Key)
}

func TestGenerativeExtract_DiscardsUnknownItems(t *testing.T) {
	c := &stubCompleter{resp: `[{"item":"sushi","quantity":2},{"item":"water"}]`}
	g := NewGenerativeExtractor(c, menu.Default())

	items, err := g.TryExtract(context.Background(), "sushi and water")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "water", items[0].Key)
	// Omitted quantity defaults to 1.
	require.Equal(t, 1, items[0].Quantity)
}

func TestGenerativeExtract_MalformedJSON(t *testing.T) {
	g := NewGenerativeExtractor(&stubCompleter{resp: "no items today"}, menu.Default())
	_, err := g.TryExtract(context.Background(), "a burger")
	require.Error(t, err)
}

func TestGenerativeExtract_CompleterFailure(t *testing.T) {
	g := NewGenerativeExtractor(&stubCompleter{err: errors.New("quota exceeded")}, menu.Default())
	_, err := g.TryExtract(context.Background(), "a burger")
	require.Error(t, err)
}

type failingExtractor struct{ calls int }

func (f *failingExtractor) TryExtract(context.Context, string) ([]domain.ExtractedItem, error) {
	f.calls++
	return nil, errors.New("primary down")
}

func TestExtractionPolicy_PrimaryWins(t *testing.T) {
	catalog := menu.Default()
	primary := NewGenerativeExtractor(&stubCompleter{resp: `[{"item":"pasta","quantity":4}]`}, catalog)
	policy := NewExtractionPolicy(primary, NewFallbackExtractor(catalog))

	items := policy.Extract(context.Background(), "four pastas")
	require.Len(t, items, 1)
	require.Equal(t, 4, items[0].Quantity)
}

func TestExtractionPolicy_FallsBackOnPrimaryFailure(t *testing.T) {
	primary := &failingExtractor{}
	policy := NewExtractionPolicy(primary, NewFallbackExtractor(menu.Default()))

	items := policy.Extract(context.Background(), "two burgers and a coffee")
	require.Equal(t, 1, primary.calls)
	require.Len(t, items, 2)
	require.Equal(t, "burger", items[0].Key)
	require.Equal(t, 2, items[0].Quantity)
}

func TestExtractionPolicy_NoPrimaryUsesFallback(t *testing.T) {
	policy := NewExtractionPolicy(nil, NewFallbackExtractor(menu.Default()))

	items := policy.Extract(context.Background(), "a milkshake")
	require.Len(t, items, 1)
	require.Equal(t, "milkshake", items[0].Key)
}
