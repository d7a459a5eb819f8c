package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"law-rag-platform/internal/config"
	"law-rag-platform/internal/logger"
	"law-rag-platform/models"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

// systemPrompt steers the model toward grounded answers with article
// citations. Answers must come from the supplied excerpts only.
const systemPrompt = `أنت مساعد قانوني متخصص في الإجابة على الأسئلة القانونية اعتماداً على نصوص المواد القانونية المرفقة فقط.

التعليمات:
- أجب باللغة العربية الفصحى بأسلوب واضح ودقيق.
- استند في إجابتك حصرياً إلى النصوص القانونية المرفقة أدناه.
- استشهد دائماً برقم المادة واسم القانون الذي اعتمدت عليه في الإجابة.
- إذا لم تكن النصوص المرفقة كافية للإجابة على السؤال، قل ذلك صراحة ولا تجتهد.
- لا تخترع مواد أو أحكاماً قانونية غير موجودة في النصوص المرفقة.`

// Generator answers legal questions with a Gemini model, guarded by a
// circuit breaker and a client-side rate limiter.
type Generator struct {
	client      *genai.Client
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
	model       string
	temperature float32
	maxTokens   int32
}

func NewGenerator(ctx context.Context, cfg *config.Config) (*Generator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	// Free-tier Gemini allows 10 RPM; keep a small buffer below it.
	rateLimiter := rate.NewLimiter(rate.Limit(9.0/60.0), 2)

	return &Generator{
		client:      client,
		breaker:     breaker,
		rateLimiter: rateLimiter,
		model:       cfg.LLMModel,
		temperature: float32(cfg.LLMTemperature),
		maxTokens:   int32(cfg.LLMMaxTokens),
	}, nil
}

// Answer generates a grounded answer for the question from the given
// chunks. Retrieval short-circuits before calling this on an empty
// candidate set, so chunks is expected to be non-empty here.
func (g *Generator) Answer(ctx context.Context, question string, chunks []models.RetrievedChunk) (string, error) {
	tracer := otel.Tracer("gemini-generator")
	ctx, span := tracer.Start(ctx, "gemini.answer")
	defer span.End()

	span.SetAttributes(
		attribute.String("gemini.model", g.model),
		attribute.Int("gemini.context_chunks", len(chunks)),
	)

	if err := g.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", err
	}

	prompt := buildPrompt(question, chunks)

	result, err := g.breaker.Execute(func() (interface{}, error) {
		model := g.client.GenerativeModel(g.model)
		model.SetTemperature(g.temperature)
		model.SetMaxOutputTokens(g.maxTokens)
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			span.SetAttributes(attribute.Bool("gemini.error", true))
			return nil, err
		}
		return resp, nil
	})

	if err != nil {
		if err == gobreaker.ErrOpenState {
			span.SetAttributes(attribute.Bool("gemini.circuit_breaker_open", true))
			return "النظام يواجه ضغطاً مرتفعاً حالياً، يرجى المحاولة مرة أخرى بعد قليل.", nil
		}
		return "", err
	}

	resp := result.(*genai.GenerateContentResponse)
	answer := extractText(resp)
	if answer == "" {
		return "", fmt.Errorf("empty response from model %s", g.model)
	}

	if resp.UsageMetadata != nil {
		span.SetAttributes(attribute.Int("gemini.total_tokens", int(resp.UsageMetadata.TotalTokenCount)))
	}

	return answer, nil
}

// buildPrompt numbers each excerpt so the model can cite it, matching
// the [i] indices exposed to the client as sources.
func buildPrompt(question string, chunks []models.RetrievedChunk) string {
	blocks := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		blocks = append(blocks, fmt.Sprintf("[%d] %s - مادة %d:\n%s",
			i+1, chunk.LawName, chunk.ArticleNumber, chunk.Content))
	}

	var sb strings.Builder
	sb.WriteString("النصوص القانونية:\n\n")
	sb.WriteString(strings.Join(blocks, "\n\n---\n\n"))
	sb.WriteString("\n\nالسؤال: ")
	sb.WriteString(question)
	return sb.String()
}

func extractText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

func (g *Generator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
