package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/rpupo63/oneword-blog-backend/config"
	"github.com/rpupo63/oneword-blog-backend/errs"
)

const (
	providerName = "completion provider"

	// Upstream error bodies beyond this are cut before logging.
	maxProviderBody = 4 << 10
)

// ContentGenerator produces raw markdown for a word. It never persists.
type ContentGenerator interface {
	Generate(ctx context.Context, word string) (string, error)
}

// Generator calls an OpenAI compatible chat completion endpoint.
type Generator struct {
	cfg        config.LLMConfig
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewGenerator(cfg config.LLMConfig) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errs.NewEnvironmentVariableError("LLM_API_KEY")
	}
	return &Generator{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     log.With().Str("service", "generator").Logger(),
	}, nil
}

// Generate returns the model's text for word. Failures are one of
// errs.ErrGenerationProvider, errs.ErrGenerationMalformed or
// errs.ErrGenerationTimeout.
func (g *Generator) Generate(ctx context.Context, word string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	doer := &recordingDoer{client: g.httpClient}
	llm, err := openai.New(
		openai.WithToken(g.cfg.APIKey),
		openai.WithModel(g.cfg.Model),
		openai.WithBaseURL(g.cfg.BaseURL),
		openai.WithHTTPClient(doer),
	)
	if err != nil {
		return "", errs.NewConfigError("LLM client", err)
	}

	start := time.Now()
	resp, err := llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
			llms.TextParts(llms.ChatMessageTypeHuman, userPrompt(word)),
		},
		llms.WithTemperature(g.cfg.Temperature),
		llms.WithMaxTokens(g.cfg.MaxTokens),
	)
	logger := g.logger.With().Str("word", word).Dur("elapsed", time.Since(start)).Logger()

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			logger.Warn().Dur("timeout", g.cfg.Timeout).Msg("Generation timed out")
			return "", errs.NewGenerationTimeoutError(providerName, g.cfg.Timeout)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			logger.Debug().Msg("Generation canceled by caller")
			return "", ctx.Err()
		}
		if doer.status != 0 && !isSuccess(doer.status) {
			logger.Error().Int("status", doer.status).Str("body", doer.body).Msg("Provider rejected generation request")
			return "", errs.NewGenerationProviderError(providerName, doer.status, doer.body)
		}
		if doer.status == 0 {
			// The request never got an answer.
			logger.Error().Err(err).Msg("Provider unreachable")
			return "", errs.NewGenerationProviderError(providerName, http.StatusBadGateway, err.Error())
		}
		logger.Error().Err(err).Msg("Provider returned an unusable response")
		return "", errs.NewGenerationMalformedError(providerName, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		logger.Error().Msg("Provider returned no content")
		return "", errs.NewGenerationMalformedError(providerName, openai.ErrEmptyResponse)
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	logger.Info().Int("length", len(text)).Msg("Generated content")
	return text, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// recordingDoer remembers the upstream status and, for failures, the body,
// which the completion client otherwise reduces to an error string.
type recordingDoer struct {
	client *http.Client
	status int
	body   string
}

func (d *recordingDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	d.status = resp.StatusCode
	if isSuccess(resp.StatusCode) {
		return resp, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))
	resp.Body.Close()
	d.body = string(body)
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}
