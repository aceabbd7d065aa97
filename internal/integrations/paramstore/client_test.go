package paramstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a simple fake implementing ssmAPI for tests.
type fakeAPI struct {
	getOut *ssm.GetParameterOutput
	getErr error
}

func (f *fakeAPI) GetParameter(_ context.Context, _ *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return f.getOut, f.getErr
}

type fakeGetter struct {
	vals map[string]string
	err  error
}

func (g *fakeGetter) GetParameter(_ context.Context, name string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	v, ok := g.vals[name]
	if !ok {
		return "", fmt.Errorf("param not found: %s", name)
	}
	return v, nil
}

func strPtr(s string) *string { return &s }

func TestGetParameter_HappyPath(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{
		Name: strPtr("p"), Value: strPtr(`{"token":"v"}`),
	}}}
	client, err := New(api)
	require.NoError(t, err)
	v, err := client.GetParameter(context.Background(), "p")
	require.NoError(t, err)
	require.Equal(t, `{"token":"v"}`, v)
}

func TestGetParameter_MissingValue(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: strPtr("p"), Value: nil}}}
	client, err := New(api)
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "p")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing value")
}

func TestGetParameter_ApiError(t *testing.T) {
	api := &fakeAPI{getErr: errors.New("boom")}
	client, err := New(api)
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "boom")
}

func TestGetParameter_ClientNotInitialized(t *testing.T) {
	_, err := (&Client{}).GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "not initialized")
}

func TestGetParameter_EmptyName(t *testing.T) {
	client, err := New(&fakeAPI{})
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "  ")
	require.ErrorContains(t, err, "required")
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil)
	require.ErrorContains(t, err, "must not be nil")
}

func TestSecretToken_HappyPath(t *testing.T) {
	g := &fakeGetter{vals: map[string]string{"/cafe-agent/gemini-token": `{"token":"sk-123"}`}}
	token, err := SecretToken(context.Background(), g, "/cafe-agent/gemini-token")
	require.NoError(t, err)
	require.Equal(t, "sk-123", token)
}

func TestSecretToken_Errors(t *testing.T) {
	_, err := SecretToken(context.Background(), nil, "p")
	require.Error(t, err)

	_, err = SecretToken(context.Background(), &fakeGetter{}, " ")
	require.Error(t, err)

	_, err = SecretToken(context.Background(), &fakeGetter{err: errors.New("ssm down")}, "p")
	require.ErrorContains(t, err, "ssm down")

	g := &fakeGetter{vals: map[string]string{"p": `not-json`}}
	_, err = SecretToken(context.Background(), g, "p")
	require.Error(t, err)

	g = &fakeGetter{vals: map[string]string{"p": `{"token":""}`}}
	_, err = SecretToken(context.Background(), g, "p")
	require.ErrorContains(t, err, "empty")
}
