package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"cafe-agent/handler"
	"cafe-agent/internal/auth"
	"cafe-agent/internal/integrations/elevenlabs"
	"cafe-agent/internal/integrations/gemini"
	"cafe-agent/internal/integrations/paramstore"
	"cafe-agent/internal/menu"
	"cafe-agent/internal/repository"
	"cafe-agent/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	paramPrefix := mustEnv("PARAM_PREFIX")
	stateTable := os.Getenv("STATE_TABLE")
	restaurant := env("RESTAURANT_NAME", "Twilight Cafe")
	assistant := env("ASSISTANT_NAME", "Plato")
	geminiModel := os.Getenv("GEMINI_MODEL")
	voiceID := os.Getenv("ELEVENLABS_VOICE_ID")
	ttsEnabled := os.Getenv("TTS_DISABLED") == ""

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}

	var geminiOpts []gemini.Option
	if geminiModel != "" {
		geminiOpts = append(geminiOpts, gemini.WithModel(geminiModel))
	}
	geminiClient, err := gemini.NewClient(ssmClient, paramPrefix, geminiOpts...)
	if err != nil {
		slog.Error("failed to create Gemini client", "err", err)
		os.Exit(1)
	}

	// The record store is optional: without a table the engine still takes
	// orders, it just never persists them.
	var store *repository.Client
	if stateTable != "" {
		store, err = repository.New(awsdynamodb.NewFromConfig(cfg), stateTable)
		if err != nil {
			slog.Error("failed to create record store", "err", err)
			os.Exit(1)
		}
	}

	// ---- Engine ----
	catalog := menu.Default()
	extractor := usecase.NewExtractionPolicy(
		usecase.NewGenerativeExtractor(geminiClient, catalog),
		usecase.NewFallbackExtractor(catalog),
	)
	composer := usecase.NewResponseComposer(geminiClient, restaurant, assistant)

	var recorder usecase.OrderRecorder
	if store != nil {
		recorder = store
	}
	orders, err := usecase.NewOrderService(catalog, extractor, composer, usecase.NewSessionStore(), recorder, slog.Default())
	if err != nil {
		slog.Error("failed to create order service", "err", err)
		os.Exit(1)
	}

	var customers repository.CustomerStore
	if store != nil {
		customers = store
	}
	accounts := auth.NewService(customers)

	// ---- Handler ----
	handlerCfg := handler.Config{
		Orders:               orders,
		Auth:                 accounts,
		Catalog:              catalog,
		Restaurant:           restaurant,
		Assistant:            assistant,
		CompletionConfigured: true,
		RecordStoreConnected: store != nil,
	}
	if store != nil {
		handlerCfg.History = store
	}
	if ttsEnabled {
		var ttsOpts []elevenlabs.Option
		if voiceID != "" {
			ttsOpts = append(ttsOpts, elevenlabs.WithVoiceID(voiceID))
		}
		ttsClient, err := elevenlabs.NewClient(ssmClient, paramPrefix, ttsOpts...)
		if err != nil {
			slog.Error("failed to create speech client", "err", err)
			os.Exit(1)
		}
		handlerCfg.TTS = ttsClient
	}

	h, err := handler.NewHandler(handlerCfg)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func env(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
