// Package engine implements the categorization core: the suggestion engine
// that proposes a category, vendor, confidence, and reason for each draft
// row, and the commit coordinator that locks reviewed rows into the ledger
// and feeds the user's corrections back into the learned state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bankcat/bankcat/internal/common"
	"github.com/bankcat/bankcat/internal/model"
	"github.com/bankcat/bankcat/internal/rules"
	"github.com/bankcat/bankcat/internal/service"
	"github.com/bankcat/bankcat/internal/tokenize"
)

// Config holds the tunable thresholds of the suggestion and learning paths.
// Confidence is a 0-100 integer everywhere.
type Config struct {
	// VendorConfidenceCap bounds every suggestion; 100 is never emitted.
	VendorConfidenceCap int
	// VendorConfidenceStep is added on each confirming commit.
	VendorConfidenceStep int
	// VendorBaselineConfidence seeds new entries and conflicting corrections.
	VendorBaselineConfidence int
	// KeywordMinScore is the weight sum below which the keyword path is skipped.
	KeywordMinScore float64
	// KeywordBaseConfidence anchors the keyword confidence function.
	KeywordBaseConfidence int
	// KeywordMaxConfidence caps the keyword path below the vendor path.
	KeywordMaxConfidence int
	// KeywordWeightStep is the weight added per confirmed token occurrence.
	KeywordWeightStep float64
	// TokenCapPerRow bounds how often one token in one row can reinforce.
	TokenCapPerRow int
	// DuplicateSimilarity is the levenshtein similarity at or above which two
	// same-amount rows are flagged as a possible double import.
	DuplicateSimilarity float64
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		VendorConfidenceCap:      99,
		VendorConfidenceStep:     5,
		VendorBaselineConfidence: 60,
		KeywordMinScore:          1.0,
		KeywordBaseConfidence:    40,
		KeywordMaxConfidence:     85,
		KeywordWeightStep:        1.0,
		TokenCapPerRow:           3,
		DuplicateSimilarity:      0.85,
	}
}

// Suggester produces one suggestion per draft row from the learned state and
// the static rule set.
type Suggester struct {
	storage service.Storage
	rules   *rules.RuleSet
	config  Config
}

// NewSuggester creates a suggestion engine with default configuration.
func NewSuggester(storage service.Storage, ruleSet *rules.RuleSet) *Suggester {
	return NewSuggesterWithConfig(storage, ruleSet, DefaultConfig())
}

// NewSuggesterWithConfig creates a suggestion engine with custom configuration.
func NewSuggesterWithConfig(storage service.Storage, ruleSet *rules.RuleSet, config Config) *Suggester {
	return &Suggester{
		storage: storage,
		rules:   ruleSet,
		config:  config,
	}
}

// snapshot is the knowledge-base state a whole suggestion run reads from.
type snapshot struct {
	vendors     map[string]model.VendorMemory
	keywords    *KeywordIndex
	categories  map[string]model.Category
	categoryL   []model.Category
	accountType string
}

// Run suggests a category for every draft row in scope and persists the
// suggested fields. Final fields are never written. Running twice against an
// unchanged knowledge base produces identical output; per-row failures are
// noted on the row and do not abort the batch.
func (s *Suggester) Run(ctx context.Context, scope model.Scope) ([]model.DraftTransaction, error) {
	transactions, err := s.storage.GetDraftTransactions(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft transactions: %w", err)
	}
	if len(transactions) == 0 {
		slog.Info("No draft rows in scope",
			"client", scope.ClientID, "bank", scope.BankID, "period", scope.Period)
		return nil, nil
	}

	snap, err := s.loadSnapshot(ctx, scope)
	if err != nil {
		return nil, err
	}

	slog.Info("Running suggestion engine",
		"rows", len(transactions),
		"vendors", len(snap.vendors),
		"keyword_tokens", snap.keywords.Len())

	for i := range transactions {
		s.suggestOne(&transactions[i], snap)
	}

	flagDuplicates(transactions, s.config.DuplicateSimilarity)

	if err := s.storage.UpdateSuggestions(ctx, transactions); err != nil {
		return nil, fmt.Errorf("failed to persist suggestions: %w", err)
	}

	return transactions, nil
}

func (s *Suggester) loadSnapshot(ctx context.Context, scope model.Scope) (*snapshot, error) {
	vendorEntries, err := s.storage.ListVendorMemory(ctx, scope.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vendor memory: %w", err)
	}
	vendors := make(map[string]model.VendorMemory, len(vendorEntries))
	for _, entry := range vendorEntries {
		vendors[entry.VendorKey] = entry
	}

	keywordEntries, err := s.storage.ListKeywordEntries(ctx, scope.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load keyword model: %w", err)
	}

	categoryList, err := s.storage.GetCategories(ctx, scope.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	categories := make(map[string]model.Category, len(categoryList))
	for _, cat := range categoryList {
		categories[cat.Name] = cat
	}

	accountType, err := s.storage.GetBankAccountType(ctx, scope.BankID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to load bank account type: %w", err)
	}

	return &snapshot{
		vendors:     vendors,
		keywords:    NewKeywordIndex(keywordEntries),
		categories:  categories,
		categoryL:   categoryList,
		accountType: accountType,
	}, nil
}

// suggestOne fills the suggested fields of a single row. It never touches
// the final fields and never fails the batch: anything unexpected becomes a
// note on the row.
func (s *Suggester) suggestOne(txn *model.DraftTransaction, snap *snapshot) {
	suggestion, err := s.evaluate(txn, snap)
	if err != nil {
		slog.Warn("Suggestion failed for row", "id", txn.ID, "error", err)
		txn.SuggestedCategory = ""
		txn.SuggestedVendor = ""
		txn.Confidence = 0
		txn.Reason = fmt.Sprintf("suggestion failed: %v", err)
		txn.Status = model.StatusSystemSuggested
		return
	}

	txn.SuggestedCategory = suggestion.Category
	txn.SuggestedVendor = suggestion.Vendor
	txn.Confidence = clampConfidence(suggestion.Confidence)
	txn.Reason = suggestion.Reason
	txn.Status = model.StatusSystemSuggested
}

func (s *Suggester) evaluate(txn *model.DraftTransaction, snap *snapshot) (model.Suggestion, error) {
	vendorKey, tokens := tokenize.Normalize(txn.Description)

	var suggestion model.Suggestion
	switch {
	case vendorKey != "" && s.vendorHit(vendorKey, snap, &suggestion):
	case s.keywordHit(tokens, snap, &suggestion):
	default:
		suggestion = s.rules.Fallback(txn, snap.accountType, snap.categoryL)
	}

	// Learned state can outlive the category master: a vendor or keyword
	// entry may still name a category that has since been removed. Such a
	// row gets no suggestion rather than a category the ledger cannot take.
	if suggestion.Category != "" {
		if _, ok := snap.categories[suggestion.Category]; !ok {
			return model.Suggestion{}, fmt.Errorf("learned category %q is not in the category master", suggestion.Category)
		}
	}

	s.rules.Adjust(&suggestion, txn, snap.categories)

	suggestion.Vendor = vendorKey
	if vendorKey == "" {
		suggestion.Reason += "; no vendor key derivable from description"
	}

	return suggestion, nil
}

func (s *Suggester) vendorHit(vendorKey string, snap *snapshot, out *model.Suggestion) bool {
	entry, ok := snap.vendors[vendorKey]
	if !ok {
		return false
	}

	confidence := entry.Confidence
	if confidence > s.config.VendorConfidenceCap {
		confidence = s.config.VendorConfidenceCap
	}

	*out = model.Suggestion{
		Category:   entry.Category,
		Confidence: confidence,
		Reason:     fmt.Sprintf("vendor match: %s, seen %d times", entry.VendorKey, entry.TimesConfirmed),
		Source:     model.SourceVendorMemory,
	}
	return true
}

func (s *Suggester) keywordHit(tokens []string, snap *snapshot, out *model.Suggestion) bool {
	best, matched := snap.keywords.Best(tokens)
	if best == nil || best.Weight < s.config.KeywordMinScore {
		return false
	}

	*out = model.Suggestion{
		Category:   best.Category,
		Confidence: s.keywordConfidence(best),
		Reason:     fmt.Sprintf("keyword match: %s", strings.Join(matched, ", ")),
		Source:     model.SourceKeywordModel,
	}
	return true
}

// keywordConfidence grows monotonically with the weight sum and the distinct
// match count, bounded below the vendor path's cap.
func (s *Suggester) keywordConfidence(score *model.CategoryScore) int {
	confidence := s.config.KeywordBaseConfidence +
		6*score.DistinctTokens +
		int(2*score.Weight)
	if confidence > s.config.KeywordMaxConfidence {
		confidence = s.config.KeywordMaxConfidence
	}
	return confidence
}

func clampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
