// Package llm implements the external categorization oracle backed by hosted
// LLM APIs. The oracle is only consulted when the rule table and the
// persistent cache both miss; the categorizer owns caching so the oracle
// itself stays stateless.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spendlens/spendlens/internal/common"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/service"
)

// Oracle implements service.Oracle using an LLM client with rate limiting and
// retries.
type Oracle struct {
	client      Client
	logger      *slog.Logger
	rateLimiter *rateLimiter
	retryOpts   service.RetryOptions
}

// NewOracle creates an oracle from the given configuration.
func NewOracle(cfg Config, logger *slog.Logger) (*Oracle, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return NewOracleWithClient(client, cfg, logger), nil
}

// NewOracleWithClient wraps an existing client; used by tests to substitute a
// fake provider.
func NewOracleWithClient(client Client, cfg Config, logger *slog.Logger) *Oracle {
	if logger == nil {
		logger = slog.Default()
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Oracle{
		client:      client,
		logger:      logger,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}
}

// Classify asks the LLM for a hierarchical category path for the given
// vendor and line items.
func (o *Oracle) Classify(ctx context.Context, vendor string, lineItems []model.LineItem) (string, error) {
	if err := o.rateLimiter.wait(ctx); err != nil {
		return "", err
	}

	prompt := buildPrompt(vendor, lineItems)

	var response ClassificationResponse
	err := common.WithRetry(ctx, func() error {
		var classifyErr error
		response, classifyErr = o.client.Classify(ctx, prompt)
		if classifyErr != nil && ctx.Err() != nil {
			// A failure after the context ended will not succeed on retry.
			return &common.RetryableError{Err: classifyErr, Retryable: false}
		}
		return classifyErr
	}, o.retryOpts)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCategorizationFailed, err)
	}

	o.logger.Debug("oracle classified invoice",
		"vendor", vendor,
		"category_path", response.CategoryPath,
		"confidence", response.Confidence)

	return response.CategoryPath, nil
}

// Close releases the oracle's background resources.
func (o *Oracle) Close() {
	o.rateLimiter.Close()
}

// buildPrompt renders the categorization request for one invoice.
func buildPrompt(vendor string, lineItems []model.LineItem) string {
	var sb strings.Builder

	sb.WriteString("Categorize this vendor invoice into a hierarchical category path.\n\n")
	fmt.Fprintf(&sb, "Vendor: %s\nLine items:\n", vendor)
	for _, li := range lineItems {
		fmt.Fprintf(&sb, "- %s (qty %s @ $%s)\n",
			li.Description, li.Quantity.String(), li.UnitPrice.Round(2).StringFixed(2))
	}

	sb.WriteString(`
Valid top-level categories: it_services, enterprise_software, security_software, development_tools, corporate_software.
Use 2-3 path segments separated by "/", e.g. "it_services/cloud_services/managed_services".

Respond with JSON in exactly this format:
{"category_path": "top_level/sub_category", "confidence": 0.95}`)

	return sb.String()
}
