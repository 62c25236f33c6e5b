// Package rules defines named arithmetic identities over extracted statement
// values and evaluates them against a tolerance.
//
// Evaluation is tri-state: a rule passes, fails, or is not applicable when
// a required value is absent. Callers can therefore distinguish "we checked
// and it holds" from "we could not check", instead of silently skipping.
package rules

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"report-reconciliation-engine/internal/terms"
	engerrors "report-reconciliation-engine/pkg/errors"
)

// Predicate computes the absolute difference of a rule's arithmetic
// identity. Absent names read as zero; the evaluator guarantees presence
// before a predicate runs.
type Predicate func(values map[string]decimal.Decimal) decimal.Decimal

// Rule is one named arithmetic identity. Rules are static configuration:
// defined at load time, evaluated per run, never mutated.
type Rule struct {
	ID       string
	Category string
	Name     string
	Formula  string
	Items    []string
	Check    Predicate
}

// Outcome is the tri-state result of evaluating one rule.
type Outcome int

const (
	// OutcomePass means every required value was present and the identity
	// held within tolerance.
	OutcomePass Outcome = iota
	// OutcomeFail means every required value was present and the identity
	// was violated beyond tolerance.
	OutcomeFail
	// OutcomeNotApplicable means at least one required value was absent, so
	// the rule could not be checked at all.
	OutcomeNotApplicable
)

// String returns the outcome label.
func (o Outcome) String() string {
	switch o {
	case OutcomePass:
		return "Pass"
	case OutcomeFail:
		return "Fail"
	case OutcomeNotApplicable:
		return "NotApplicable"
	default:
		return "Unknown"
	}
}

// EvaluationResult is the full record of one rule evaluation.
type EvaluationResult struct {
	RuleID       string
	Name         string
	Category     string
	Formula      string
	Items        []string
	Values       map[string]decimal.Decimal
	Difference   decimal.Decimal
	Outcome      Outcome
	MissingItems []string
}

// Passed reports whether the rule was checked and held.
func (r EvaluationResult) Passed() bool {
	return r.Outcome == OutcomePass
}

// Evaluate checks one rule against the extracted values. When any required
// item is absent the result is NotApplicable and carries the missing names;
// otherwise the predicate's difference is compared against the tolerance.
func Evaluate(rule Rule, values map[string]decimal.Decimal, tolerance decimal.Decimal) EvaluationResult {
	result := EvaluationResult{
		RuleID:   rule.ID,
		Name:     rule.Name,
		Category: rule.Category,
		Formula:  rule.Formula,
		Items:    rule.Items,
	}

	for _, item := range rule.Items {
		if _, ok := values[item]; !ok {
			result.MissingItems = append(result.MissingItems, item)
		}
	}
	if len(result.MissingItems) > 0 {
		result.Outcome = OutcomeNotApplicable
		return result
	}

	involved := make(map[string]decimal.Decimal, len(rule.Items))
	for _, item := range rule.Items {
		involved[item] = values[item]
	}
	result.Values = involved
	result.Difference = rule.Check(values)

	if result.Difference.LessThanOrEqual(tolerance) {
		result.Outcome = OutcomePass
	} else {
		result.Outcome = OutcomeFail
	}
	return result
}

// EvaluateAll evaluates every rule and returns the results in rule order.
func EvaluateAll(ruleSet []Rule, values map[string]decimal.Decimal, tolerance decimal.Decimal) []EvaluationResult {
	results := make([]EvaluationResult, 0, len(ruleSet))
	for _, rule := range ruleSet {
		results = append(results, Evaluate(rule, values, tolerance))
	}
	return results
}

// ValidateCoverage verifies that every item referenced by the rules is known
// to the resolver, either as a canonical name or as an alias. Unknown items
// mean the rule can never fire against resolved data; this surfaces that at
// startup instead of letting the rule silently evaluate to NotApplicable
// forever.
func ValidateCoverage(ruleSet []Rule, resolver *terms.Resolver) error {
	var uncovered []string
	seen := make(map[string]bool)
	for _, rule := range ruleSet {
		for _, item := range rule.Items {
			if seen[item] {
				continue
			}
			seen[item] = true
			if !resolver.Knows(item) {
				uncovered = append(uncovered, fmt.Sprintf("%s (rule %s)", item, rule.ID))
			}
		}
	}

	if len(uncovered) > 0 {
		return engerrors.NewConfigError(engerrors.CodeUncoveredRule,
			"rule items not covered by any synonym set: %s", strings.Join(uncovered, ", ")).
			WithSuggestion("register the items in a synonym set or remove the rules referencing them")
	}
	return nil
}

// get reads a value treating absence as zero, matching how predicates are
// written in terms of totals and parts.
func get(values map[string]decimal.Decimal, name string) decimal.Decimal {
	return values[name]
}

// SumIdentity builds the predicate |target - (sum(plus) - sum(minus))|.
func SumIdentity(target string, plus []string, minus []string) Predicate {
	return func(values map[string]decimal.Decimal) decimal.Decimal {
		total := decimal.Zero
		for _, name := range plus {
			total = total.Add(get(values, name))
		}
		for _, name := range minus {
			total = total.Sub(get(values, name))
		}
		return get(values, target).Sub(total).Abs()
	}
}

// EqualityIdentity builds the predicate |a - b|.
func EqualityIdentity(a, b string) Predicate {
	return SumIdentity(a, []string{b}, nil)
}

// BalanceSheetInternal returns the built-in balance-sheet identities.
func BalanceSheetInternal() []Rule {
	return []Rule{
		{
			ID:       "bs-balance",
			Category: "资产负债表内部勾稽",
			Name:     "资产负债平衡",
			Formula:  "资产总计 = 负债合计 + 净资产合计",
			Items:    []string{"资产总计", "负债合计", "净资产合计"},
			Check:    SumIdentity("资产总计", []string{"负债合计", "净资产合计"}, nil),
		},
		{
			ID:       "bs-net-assets",
			Category: "资产负债表内部勾稽",
			Name:     "净资产构成",
			Formula:  "净资产合计 = 实收基金 + 未分配利润",
			Items:    []string{"净资产合计", "实收基金", "未分配利润"},
			Check:    SumIdentity("净资产合计", []string{"实收基金", "未分配利润"}, nil),
		},
		{
			ID:       "bs-total-check",
			Category: "资产负债表内部勾稽",
			Name:     "负债和净资产总计",
			Formula:  "负债和净资产总计 = 资产总计",
			Items:    []string{"负债和净资产总计", "资产总计"},
			Check:    EqualityIdentity("负债和净资产总计", "资产总计"),
		},
		{
			ID:       "bs-trading-assets",
			Category: "资产负债表内部勾稽",
			Name:     "交易性金融资产分解",
			Formula:  "交易性金融资产 = 股票投资 + 基金投资 + 债券投资 + 资产支持证券投资 + 贵金属投资 + 其他投资",
			Items: []string{"交易性金融资产", "股票投资", "基金投资", "债券投资",
				"资产支持证券投资", "贵金属投资", "其他投资"},
			Check: SumIdentity("交易性金融资产",
				[]string{"股票投资", "基金投资", "债券投资", "资产支持证券投资", "贵金属投资", "其他投资"}, nil),
		},
	}
}

// IncomeStatementInternal returns the built-in income-statement identities.
func IncomeStatementInternal() []Rule {
	return []Rule{
		{
			ID:       "is-gross-profit",
			Category: "利润表内部勾稽",
			Name:     "利润总额计算",
			Formula:  "利润总额 = 营业总收入 - 营业总支出",
			Items:    []string{"利润总额", "营业总收入", "营业总支出"},
			Check:    SumIdentity("利润总额", []string{"营业总收入"}, []string{"营业总支出"}),
		},
		{
			ID:       "is-net-profit",
			Category: "利润表内部勾稽",
			Name:     "净利润计算",
			Formula:  "净利润 = 利润总额 - 所得税费用",
			Items:    []string{"净利润", "利润总额", "所得税费用"},
			Check:    SumIdentity("净利润", []string{"利润总额"}, []string{"所得税费用"}),
		},
	}
}

// IncomeToBalance returns the identities tying the income statement to the
// balance sheet.
func IncomeToBalance() []Rule {
	return []Rule{
		{
			ID:       "x-retained-earnings",
			Category: "利润表与资产负债表勾稽",
			Name:     "净利润与未分配利润勾稽",
			Formula:  "期末未分配利润 = 期初未分配利润 + 本期净利润 - 本期分配利润",
			Items:    []string{"期末未分配利润", "期初未分配利润", "本期净利润", "本期分配利润"},
			Check: SumIdentity("期末未分配利润",
				[]string{"期初未分配利润", "本期净利润"}, []string{"本期分配利润"}),
		},
	}
}

// NetAssetChanges returns the statement-of-changes identities.
func NetAssetChanges() []Rule {
	return []Rule{
		{
			ID:       "nac-closing",
			Category: "净资产变动表勾稽",
			Name:     "期末净资产勾稽",
			Formula:  "本期期末净资产 = 本期期初净资产 + 本期增减变动额",
			Items:    []string{"本期期末净资产", "本期期初净资产", "本期增减变动额"},
			Check:    SumIdentity("本期期末净资产", []string{"本期期初净资产", "本期增减变动额"}, nil),
		},
		{
			ID:       "nac-paid-in",
			Category: "净资产变动表勾稽",
			Name:     "实收基金变动",
			Formula:  "期末实收基金 = 期初实收基金 + 本期实收基金变动",
			Items:    []string{"期末实收基金", "期初实收基金", "本期实收基金变动"},
			Check:    SumIdentity("期末实收基金", []string{"期初实收基金", "本期实收基金变动"}, nil),
		},
		{
			ID:       "nac-retained",
			Category: "净资产变动表勾稽",
			Name:     "未分配利润变动",
			Formula:  "期末未分配利润 = 期初未分配利润 + 本期未分配利润变动",
			Items:    []string{"期末未分配利润", "期初未分配利润", "本期未分配利润变动"},
			Check:    SumIdentity("期末未分配利润", []string{"期初未分配利润", "本期未分配利润变动"}, nil),
		},
		{
			ID:       "nac-comprehensive",
			Category: "净资产变动表勾稽",
			Name:     "综合收益总额计算",
			Formula:  "综合收益总额 = 净利润 + 其他综合收益的税后净额",
			Items:    []string{"综合收益总额", "净利润", "其他综合收益的税后净额"},
			Check:    SumIdentity("综合收益总额", []string{"净利润", "其他综合收益的税后净额"}, nil),
		},
	}
}

// AllBuiltin returns every built-in rule, grouped in evaluation order.
func AllBuiltin() []Rule {
	var all []Rule
	all = append(all, BalanceSheetInternal()...)
	all = append(all, IncomeStatementInternal()...)
	all = append(all, IncomeToBalance()...)
	all = append(all, NetAssetChanges()...)
	return all
}
