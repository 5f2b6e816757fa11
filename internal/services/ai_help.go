package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/journey-backend/internal/domain/journeyerr"
	"github.com/yungbote/journey-backend/internal/platform/ctxutil"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

// RemediationRequest asks the AI service for targeted review material after
// a failed quiz. WrongAnswers maps question id to the chosen option index.
type RemediationRequest struct {
	JourneyID    uuid.UUID      `json:"journey_id"`
	BlockID      string         `json:"block_id"`
	WeakTopics   []string       `json:"weak_topics"`
	WrongAnswers map[string]int `json:"wrong_answers,omitempty"`
}

// TopicRemediation is the generated review content for one weak topic.
type TopicRemediation struct {
	Topic   string `json:"topic"`
	Content string `json:"content"`
}

type RemediationResult struct {
	Topics []TopicRemediation `json:"topics"`
}

type ExplainTermRequest struct {
	Term    string `json:"term"`
	Context string `json:"context,omitempty"`
}

type ExplainTermResult struct {
	Term        string `json:"term"`
	Explanation string `json:"explanation"`
}

// AIHelpService is the boundary to the external AI backend. Both calls are
// opaque POST JSON exchanges; the engine never interprets the content it
// gets back.
type AIHelpService interface {
	// Remediation requests review content for each weak topic, one upstream
	// call per topic, and returns them in the request's topic order.
	Remediation(ctx context.Context, req RemediationRequest) (*RemediationResult, error)
	ExplainTerm(ctx context.Context, req ExplainTermRequest) (*ExplainTermResult, error)
}

type aiHelpService struct {
	log        *logger.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
}

func NewAIHelpService(baseLog *logger.Logger, baseURL, apiKey string) AIHelpService {
	return &aiHelpService{
		log:        baseLog.With("service", "AIHelpService"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		maxRetries: 2,
	}
}

func (s *aiHelpService) Remediation(ctx context.Context, req RemediationRequest) (*RemediationResult, error) {
	const op = "ai_help.remediation"
	if s.baseURL == "" {
		return nil, journeyerr.New(journeyerr.CodeInitialization, op, "ai help base url not configured", nil)
	}
	topics := dedupeTopics(req.WeakTopics)
	if len(topics) == 0 {
		return nil, journeyerr.New(journeyerr.CodeValidation, op, "at least one weak topic required", nil)
	}

	out := make([]TopicRemediation, len(topics))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, topic := range topics {
		g.Go(func() error {
			payload := remediationTopicRequest{
				Topic:        topic,
				JourneyID:    req.JourneyID,
				BlockID:      req.BlockID,
				WrongAnswers: req.WrongAnswers,
			}
			var resp remediationTopicResponse
			if err := s.postJSON(gctx, "/remediation", payload, &resp); err != nil {
				return fmt.Errorf("topic %q: %w", topic, err)
			}
			out[i] = TopicRemediation{Topic: topic, Content: resp.Content}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, journeyerr.New(journeyerr.CodeInternal, op, "remediation request failed", err)
	}
	return &RemediationResult{Topics: out}, nil
}

func (s *aiHelpService) ExplainTerm(ctx context.Context, req ExplainTermRequest) (*ExplainTermResult, error) {
	const op = "ai_help.explain_term"
	if s.baseURL == "" {
		return nil, journeyerr.New(journeyerr.CodeInitialization, op, "ai help base url not configured", nil)
	}
	req.Term = strings.TrimSpace(req.Term)
	if req.Term == "" {
		return nil, journeyerr.New(journeyerr.CodeValidation, op, "term required", nil)
	}

	var resp ExplainTermResult
	if err := s.postJSON(ctx, "/explain-term", req, &resp); err != nil {
		return nil, journeyerr.New(journeyerr.CodeInternal, op, "explain term request failed", err)
	}
	if resp.Term == "" {
		resp.Term = req.Term
	}
	return &resp, nil
}

type remediationTopicRequest struct {
	Topic        string         `json:"topic"`
	JourneyID    uuid.UUID      `json:"journey_id"`
	BlockID      string         `json:"block_id,omitempty"`
	WrongAnswers map[string]int `json:"wrong_answers,omitempty"`
}

type remediationTopicResponse struct {
	Content string `json:"content"`
}

type aiHTTPError struct {
	StatusCode int
	Body       string
}

func (e *aiHTTPError) Error() string {
	return fmt.Sprintf("ai help http %d: %s", e.StatusCode, e.Body)
}

func retryableAIStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

func retryableAIError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	var httpErr *aiHTTPError
	if errors.As(err, &httpErr) {
		return retryableAIStatus(httpErr.StatusCode)
	}
	return false
}

func (s *aiHelpService) postJSON(ctx context.Context, path string, body, out any) error {
	backoff := 500 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = s.postOnce(ctx, path, body, out)
		if lastErr == nil {
			return nil
		}
		if !retryableAIError(lastErr) || attempt == s.maxRetries {
			return lastErr
		}
		s.log.Warn("ai help request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", s.maxRetries,
			"error", lastErr.Error(),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return lastErr
}

func (s *aiHelpService) postOnce(ctx context.Context, path string, body, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	// Forward correlation ids so upstream logs line up with ours.
	if rid := ctxutil.RequestID(ctx); rid != "" {
		req.Header.Set("X-Request-Id", rid)
	}
	if tid := ctxutil.TraceID(ctx); tid != "" {
		req.Header.Set("X-Trace-Id", tid)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &aiHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("ai help decode error: %w", err)
	}
	return nil
}

func dedupeTopics(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
