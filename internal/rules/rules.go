// Package rules implements the static, client-independent heuristics applied
// around the learned signals: transaction-nature constraints, fee and
// transfer description patterns, and account-type hints. Rules are loaded
// once per process from YAML; an embedded default set ships with the binary.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/bankcat/bankcat/internal/model"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// KeywordRule maps description keywords to a category bias.
type KeywordRule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// Config is the YAML shape of a rule set.
type Config struct {
	RoundCreditThreshold  string        `yaml:"round_credit_threshold"`
	KeywordRules          []KeywordRule `yaml:"keyword_rules"`
	HighConfidence        int           `yaml:"high_confidence"`
	FallbackMaxConfidence int           `yaml:"fallback_max_confidence"`
	NatureConflictPenalty int           `yaml:"nature_conflict_penalty"`
}

// RuleSet holds the compiled heuristics. It is immutable after Load and safe
// for concurrent use.
type RuleSet struct {
	roundCreditThreshold  decimal.Decimal
	keywordRules          []KeywordRule
	highConfidence        int
	fallbackMaxConfidence int
	natureConflictPenalty int
}

var spaceRe = regexp.MustCompile(`\s+`)

// Load reads a rule set from the given YAML file, or returns the embedded
// defaults when path is empty.
func Load(path string) (*RuleSet, error) {
	data := defaultsYAML
	if path != "" {
		fileData, err := os.ReadFile(path) // #nosec G304 -- operator-supplied config path
		if err != nil {
			return nil, fmt.Errorf("failed to read rules file: %w", err)
		}
		data = fileData
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	return fromConfig(cfg)
}

// Default returns the embedded rule set. It panics only if the embedded
// defaults are malformed, which is a build defect.
func Default() *RuleSet {
	rs, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("embedded rules are invalid: %v", err))
	}
	return rs
}

func fromConfig(cfg Config) (*RuleSet, error) {
	if cfg.HighConfidence <= 0 || cfg.HighConfidence > 100 {
		return nil, fmt.Errorf("high_confidence must be in (0,100], got %d", cfg.HighConfidence)
	}
	if cfg.FallbackMaxConfidence <= 0 || cfg.FallbackMaxConfidence >= cfg.HighConfidence {
		return nil, fmt.Errorf("fallback_max_confidence must be in (0,%d), got %d", cfg.HighConfidence, cfg.FallbackMaxConfidence)
	}

	threshold := decimal.NewFromInt(1000)
	if cfg.RoundCreditThreshold != "" {
		parsed, err := decimal.NewFromString(cfg.RoundCreditThreshold)
		if err != nil {
			return nil, fmt.Errorf("invalid round_credit_threshold: %w", err)
		}
		threshold = parsed
	}

	return &RuleSet{
		keywordRules:          cfg.KeywordRules,
		highConfidence:        cfg.HighConfidence,
		fallbackMaxConfidence: cfg.FallbackMaxConfidence,
		natureConflictPenalty: cfg.NatureConflictPenalty,
		roundCreditThreshold:  threshold,
	}, nil
}

// HighConfidence is the threshold at or above which a vendor memory hit is
// considered authoritative.
func (r *RuleSet) HighConfidence() int {
	return r.highConfidence
}

// FallbackMaxConfidence caps suggestions produced without vendor or keyword
// history.
func (r *RuleSet) FallbackMaxConfidence() int {
	return r.fallbackMaxConfidence
}

// Fallback produces a suggestion for a row with no vendor or keyword
// history. It tries the static keyword patterns first, then the
// nature/account-type heuristic over the client's category master.
// Confidence is always low; the user is expected to review.
func (r *RuleSet) Fallback(txn *model.DraftTransaction, accountType string, categories []model.Category) model.Suggestion {
	desc := normalizeSpace(txn.Description)

	if cat, pattern := r.matchKeywordRule(desc); cat != "" {
		return model.Suggestion{
			Category:   cat,
			Confidence: r.fallbackMaxConfidence,
			Reason:     fmt.Sprintf("rule-based default (no vendor/keyword history): matched %q", pattern),
			Source:     model.SourceRuleSet,
		}
	}

	return r.natureHeuristic(txn, accountType, categories)
}

func (r *RuleSet) matchKeywordRule(desc string) (category, pattern string) {
	if desc == "" {
		return "", ""
	}
	for _, rule := range r.keywordRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(desc, kw) {
				return rule.Category, kw
			}
		}
	}
	return "", ""
}

// natureHeuristic scores every active category against the row's debit or
// credit side and the bank account type, picking the best deterministically.
func (r *RuleSet) natureHeuristic(txn *model.DraftTransaction, accountType string, categories []model.Category) model.Suggestion {
	isDebit := txn.IsDebit()
	isCredit := txn.IsCredit()
	at := normalizeSpace(accountType)
	desc := normalizeSpace(txn.Description)

	type scored struct {
		name  string
		score int
	}
	var candidates []scored

	for _, cat := range categories {
		if !cat.IsActive {
			continue
		}

		score := 20
		switch cat.Nature {
		case model.NatureDebit:
			if isDebit {
				score += 10
			} else if isCredit {
				continue // strictly Dr categories never suggested for credits
			}
		case model.NatureCredit:
			if isCredit {
				score += 10
			} else if isDebit {
				continue
			}
		case model.NatureAny:
			score += 3
		}

		if strings.Contains(at, "credit card") && isDebit {
			score += 3
		}
		if (strings.Contains(at, "savings") || strings.Contains(at, "investment")) &&
			containsAny(desc, "interest", "profit", "dividend") {
			score += 5
		}
		if isCredit && r.isLargeRoundCredit(txn) && cat.Type == model.CategoryTypeIncome {
			score += 8
		}

		candidates = append(candidates, scored{name: cat.Name, score: score})
	}

	if len(candidates) == 0 {
		return model.Suggestion{
			Confidence: 0,
			Reason:     "rule-based default (no vendor/keyword history): no eligible category",
			Source:     model.SourceRuleSet,
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].name < candidates[j].name
	})

	best := candidates[0]
	confidence := best.score
	if confidence > r.fallbackMaxConfidence {
		confidence = r.fallbackMaxConfidence
	}

	return model.Suggestion{
		Category:   best.name,
		Confidence: confidence,
		Reason:     "rule-based default (no vendor/keyword history)",
		Source:     model.SourceRuleSet,
	}
}

// Adjust applies the rule constraints to a suggestion produced by any path.
// It may lower confidence and extend the reason; it never replaces the
// category, so the user always sees the signal that picked it.
func (r *RuleSet) Adjust(s *model.Suggestion, txn *model.DraftTransaction, categories map[string]model.Category) {
	if s.Category == "" {
		return
	}

	if cat, ok := categories[s.Category]; ok {
		if txn.IsCredit() && !cat.AllowsCredit() {
			r.penalize(s, fmt.Sprintf("nature conflict: %s is Dr-only but row is a credit", s.Category))
		}
		if txn.IsDebit() && !cat.AllowsDebit() {
			r.penalize(s, fmt.Sprintf("nature conflict: %s is Cr-only but row is a debit", s.Category))
		}

		if txn.IsCredit() && r.isLargeRoundCredit(txn) && cat.Type != model.CategoryTypeIncome {
			s.Reason += "; large round credit, review against income categories"
		}
	}

	if s.Source != model.SourceRuleSet {
		desc := normalizeSpace(txn.Description)
		if cat, pattern := r.matchKeywordRule(desc); cat != "" && cat != s.Category {
			s.Reason += fmt.Sprintf("; description matches %q pattern for %s", pattern, cat)
		}
	}
}

func (r *RuleSet) penalize(s *model.Suggestion, note string) {
	s.Confidence -= r.natureConflictPenalty
	if s.Confidence < 5 {
		s.Confidence = 5
	}
	s.Reason += "; " + note
}

func (r *RuleSet) isLargeRoundCredit(txn *model.DraftTransaction) bool {
	if txn.Credit == nil {
		return false
	}
	return txn.Credit.GreaterThanOrEqual(r.roundCreditThreshold) && txn.Credit.IsInteger()
}

func normalizeSpace(s string) string {
	return spaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
