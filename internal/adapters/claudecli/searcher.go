package claudecli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// DefaultLimit caps how many entries a single search asks for
const DefaultLimit = 10

var codeBlockRe = regexp.MustCompile("```(?:json)?\\s*\\n?([\\s\\S]*?)\\n?```")

// Searcher implements ports.CatalogSearcher using the Claude Code CLI
type Searcher struct {
	model  string
	limit  int
	binary string
}

// Ensure Searcher implements ports.CatalogSearcher
var _ ports.CatalogSearcher = (*Searcher)(nil)

// Option configures the Searcher
type Option func(*Searcher)

// WithModel sets the Claude model to use
func WithModel(model string) Option {
	return func(s *Searcher) {
		if model != "" {
			s.model = model
		}
	}
}

// WithLimit sets the maximum number of entries requested per query
func WithLimit(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.limit = n
		}
	}
}

// NewSearcher creates a new Claude CLI catalog searcher
func NewSearcher(opts ...Option) *Searcher {
	s := &Searcher{
		model:  "haiku", // Default to haiku for speed
		limit:  DefaultLimit,
		binary: "claude",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// claudeResponse represents the JSON output from claude CLI
type claudeResponse struct {
	Type         string  `json:"type"`
	Subtype      string  `json:"subtype"`
	DurationMS   int     `json:"duration_ms"`
	IsError      bool    `json:"is_error"`
	NumTurns     int     `json:"num_turns"`
	Result       string  `json:"result"`
	SessionID    string  `json:"session_id"`
	TotalCostUSD float64 `json:"total_cost_usd"`
}

// entryJSON is the per-entry format requested in the prompt.
// Price accepts both JSON numbers and strings.
type entryJSON struct {
	Code        string          `json:"code"`
	Source      string          `json:"source"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price"`
	Type        string          `json:"type"`
	Date        string          `json:"date"`
}

// Search asks Claude for price-book entries matching query.
// Cancelling ctx kills the CLI process.
func (s *Searcher) Search(ctx context.Context, query string) ([]domain.CatalogEntry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	args := []string{
		"-p", buildSearchPrompt(query, s.limit),
		"--output-format", "json",
		"--model", s.model,
	}

	cmd := exec.CommandContext(ctx, s.binary, args...)
	output, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("claude CLI error: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("claude CLI error: %w", err)
	}

	return parseResponse(output)
}

// IsAvailable checks if the claude CLI is installed and accessible
func (s *Searcher) IsAvailable() bool {
	_, err := exec.LookPath(s.binary)
	return err == nil
}

func buildSearchPrompt(query string, limit int) string {
	return fmt.Sprintf(`You are searching Brazilian construction price books (SINAPI and SICRO).

User's query: "%s"

Find up to %d compositions or inputs that match the query. Consider:
- The user may use abbreviations or describe the service informally
- Prefer SINAPI entries, then SICRO
- Units use the official notation (m, m², m³, kg, un, h)

Return ONLY a JSON array ranked by relevance (no markdown, no code blocks):
[
  {"code": "98459", "source": "SINAPI", "description": "Tapume com telha metálica", "unit": "m²", "price": "240.00", "type": "%s", "date": "2019-06-01"}
]

type is "%s" for inputs and "%s" for compositions. date is the reference
month of the price as YYYY-MM-DD. If nothing matches, return an empty array [].`,
		query, limit, domain.TypeInput, domain.TypeInput, domain.TypeComposition)
}

// parseResponse decodes the CLI envelope and then the entries inside it
func parseResponse(output []byte) ([]domain.CatalogEntry, error) {
	var response claudeResponse
	if err := json.Unmarshal(output, &response); err != nil {
		return nil, fmt.Errorf("failed to parse claude response: %w", err)
	}
	if response.IsError {
		return nil, fmt.Errorf("claude returned an error: %s", response.Result)
	}
	return parseEntries(response.Result)
}

// parseEntries extracts the entries JSON array from Claude's answer text
func parseEntries(result string) ([]domain.CatalogEntry, error) {
	result = strings.TrimSpace(result)

	// Try to extract JSON from markdown code blocks if present
	if matches := codeBlockRe.FindStringSubmatch(result); len(matches) > 1 {
		result = strings.TrimSpace(matches[1])
	}

	// Find JSON array in the text (handles surrounding text)
	start := strings.Index(result, "[")
	end := strings.LastIndex(result, "]")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no valid JSON array found in response")
	}
	jsonStr := result[start : end+1]

	var raw []entryJSON
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse entries JSON: %w (json: %s)", err, jsonStr)
	}

	entries := make([]domain.CatalogEntry, 0, len(raw))
	for _, r := range raw {
		if r.Code == "" || r.Description == "" {
			continue // Skip invalid entries
		}
		if r.Price.IsNegative() {
			continue
		}

		source := strings.ToUpper(strings.TrimSpace(r.Source))
		if source == "" {
			source = domain.SourceSINAPI
		}
		entryType := strings.ToUpper(strings.TrimSpace(r.Type))
		if entryType == "" {
			entryType = domain.TypeComposition
		}

		// An unparseable date counts as unknown, which never asks for
		// version confirmation
		date, _ := time.Parse(domain.DateLayout, strings.TrimSpace(r.Date))

		entries = append(entries, domain.CatalogEntry{
			ID:          source + ":" + r.Code,
			Code:        r.Code,
			Source:      source,
			Description: strings.TrimSpace(r.Description),
			Unit:        r.Unit,
			Price:       r.Price,
			Type:        entryType,
			Date:        date,
		})
	}
	return entries, nil
}
