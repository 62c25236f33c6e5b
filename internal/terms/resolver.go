// Package terms resolves canonical line-item names to their known aliases
// and finds candidate matches in a table's row labels.
//
// Statement and footnote tables rarely agree on naming ("资产总计" vs
// "资产合计" vs "总资产"), so reconciliation needs a synonym bridge before
// any values can be compared. Matching is binary containment, deliberately
// permissive in both directions to catch abbreviated and expanded label
// forms alike.
package terms

import (
	"sort"
	"strings"
)

// SynonymSet maps a canonical line-item name to its known aliases. Sets are
// static configuration: loaded at construction, never mutated at runtime.
type SynonymSet map[string][]string

// Resolver answers alias lookups over one or more injected synonym sets.
// Earlier sets take precedence when a canonical name appears in several.
type Resolver struct {
	sets []SynonymSet
}

// NewResolver creates a resolver over the given synonym sets. With no sets,
// every canonical name resolves to itself only.
func NewResolver(sets ...SynonymSet) *Resolver {
	return &Resolver{sets: sets}
}

// DefaultResolver returns a resolver loaded with the built-in balance-sheet,
// income-statement and statement-item tables.
func DefaultResolver() *Resolver {
	return NewResolver(BalanceSheetSynonyms(), IncomeStatementSynonyms(), StatementItemSynonyms())
}

// Aliases returns the canonical name followed by its registered aliases.
// The name itself always matches, so it is always part of the alias list;
// an unknown name resolves to itself only.
func (r *Resolver) Aliases(canonical string) []string {
	for _, set := range r.sets {
		if aliases, ok := set[canonical]; ok && len(aliases) > 0 {
			result := []string{canonical}
			for _, alias := range aliases {
				if alias != canonical {
					result = append(result, alias)
				}
			}
			return result
		}
	}
	return []string{canonical}
}

// Knows reports whether any set registers the name, either as a canonical
// entry or as an alias.
func (r *Resolver) Knows(name string) bool {
	for _, set := range r.sets {
		if _, ok := set[name]; ok {
			return true
		}
		for _, aliases := range set {
			for _, alias := range aliases {
				if alias == name {
					return true
				}
			}
		}
	}
	return false
}

// FindMatches returns every candidate label that matches the canonical item,
// preserving candidate order. A label matches when any alias is a substring
// of the label or the label is a substring of any alias.
func (r *Resolver) FindMatches(canonical string, candidates []string) []string {
	aliases := r.Aliases(canonical)

	var matches []string
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		for _, alias := range aliases {
			if alias == "" {
				continue
			}
			if strings.Contains(candidate, alias) || strings.Contains(alias, candidate) {
				matches = append(matches, candidate)
				break
			}
		}
	}
	return matches
}

// OverlappingAliases reports aliases registered under more than one
// canonical name across the resolver's sets. Overlaps make containment
// matching ambiguous; callers surface them as configuration warnings.
func (r *Resolver) OverlappingAliases() map[string][]string {
	owners := make(map[string]map[string]bool)
	for _, set := range r.sets {
		for canonical, aliases := range set {
			for _, alias := range aliases {
				if owners[alias] == nil {
					owners[alias] = make(map[string]bool)
				}
				owners[alias][canonical] = true
			}
		}
	}

	overlaps := make(map[string][]string)
	for alias, canonicalSet := range owners {
		if len(canonicalSet) < 2 {
			continue
		}
		var canonicals []string
		for canonical := range canonicalSet {
			canonicals = append(canonicals, canonical)
		}
		sort.Strings(canonicals)
		overlaps[alias] = canonicals
	}
	return overlaps
}

// BalanceSheetSynonyms is the built-in alias table for balance-sheet items.
func BalanceSheetSynonyms() SynonymSet {
	return SynonymSet{
		"资产总计":    {"资产合计", "资产总额", "总资产"},
		"负债总计":    {"负债合计", "负债总额", "总负债"},
		"净资产":     {"所有者权益", "基金净资产", "净资产合计"},
		"流动资产":    {"流动资产合计", "流动资产总计"},
		"非流动资产":   {"非流动资产合计", "非流动资产总计"},
		"货币资金":    {"银行存款", "现金", "货币资金合计"},
		"交易性金融资产": {"以公允价值计量且其变动计入当期损益的金融资产", "交易性金融资产合计"},
		"应收款项":    {"应收账款", "应收票据", "应收款项合计"},
		"流动负债":    {"流动负债合计", "流动负债总计"},
		"应付款项":    {"应付账款", "应付票据", "应付款项合计"},
	}
}

// IncomeStatementSynonyms is the built-in alias table for income-statement
// items.
func IncomeStatementSynonyms() SynonymSet {
	return SynonymSet{
		"营业收入":     {"收入合计", "营业收入合计", "总收入"},
		"营业成本":     {"成本合计", "营业成本合计", "总成本"},
		"净利润":      {"本期利润", "净利润合计", "利润总额"},
		"投资收益":     {"投资收益合计", "投资收益总额"},
		"公允价值变动收益": {"公允价值变动损益", "公允价值变动收益合计"},
	}
}

// StatementItemSynonyms covers the numbered statement captions that the
// built-in arithmetic rules reference, so rule coverage validation can
// verify every rule item resolves somewhere.
func StatementItemSynonyms() SynonymSet {
	return SynonymSet{
		"负债合计":        {"负债总计"},
		"净资产合计":       {"净资产：", "净资产"},
		"实收基金":        {"实收基金"},
		"未分配利润":       {"未分配利润"},
		"负债和净资产总计":    {"负债和所有者权益总计"},
		"股票投资":        {"股票投资"},
		"基金投资":        {"基金投资"},
		"债券投资":        {"债券投资"},
		"资产支持证券投资":    {"资产支持证券投资"},
		"贵金属投资":       {"贵金属投资"},
		"其他投资":        {"其他投资"},
		"营业总收入":       {"一、营业总收入"},
		"营业总支出":       {"二、营业总支出"},
		"利润总额":        {"三、利润总额"},
		"所得税费用":       {"五、所得税费用"},
		"其他综合收益的税后净额": {"五、其他综合收益的税后净额"},
		"综合收益总额":      {"六、综合收益总额", "（一）、综合收益总额"},
		"本期期初净资产":     {"二、本期期初净资产（基金净值）", "二、本期期初净资产"},
		"本期期末净资产":     {"四、本期期末净资产（基金净值）", "四、本期期末净资产"},
		"本期增减变动额":     {"三、本期增减变动额（减少以\"-\"号填列）", "三、本期增减变动额"},
		"本期分配利润":      {"（三）、本期向基金份额持有人分配利润产生的基金净值变动"},
		"期末未分配利润":     {"期末未分配利润"},
		"期初未分配利润":     {"期初未分配利润"},
		"本期净利润":       {"本期净利润"},
		"期末实收基金":      {"期末实收基金"},
		"期初实收基金":      {"期初实收基金"},
		"本期实收基金变动":    {"本期实收基金变动"},
		"本期未分配利润变动":   {"本期未分配利润变动"},
	}
}

// CrossYearItems lists the line items compared across filings by the
// cross-period check.
func CrossYearItems() []string {
	return []string{
		"资产总计",
		"负债总计",
		"净资产",
		"营业收入",
		"营业成本",
		"净利润",
		"基金份额总额",
		"基金份额净值",
	}
}
