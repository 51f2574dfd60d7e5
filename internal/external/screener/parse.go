package screener

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/equimeter/internal/contracts"
)

// rowMatcher maps a canonical label to the page section and header fragments that identify it
type rowMatcher struct {
	label    string
	section  string
	prefixes []string
}

// 섹션별 행 매칭 규칙 (첫 번째 일치 행 사용)
var statementRows = []rowMatcher{
	{contracts.RowSales, "#profit-loss", []string{"sales", "revenue"}},
	{contracts.RowNetProfit, "#profit-loss", []string{"net profit", "profit after tax"}},
	{contracts.RowEPS, "#profit-loss", []string{"eps"}},
	{contracts.RowDividendPayout, "#profit-loss", []string{"dividend payout"}},
	{contracts.RowBorrowings, "#balance-sheet", []string{"borrowing"}},
	{contracts.RowTotalAssets, "#balance-sheet", []string{"total assets"}},
	{contracts.RowROCE, "#ratios", []string{"roce"}},
	{contracts.RowROE, "#ratios", []string{"roe"}},
}

// parseNumber reads a numeric cell ("1,234.5", "50.25%", "-3"); ok is false for blanks and text
func parseNumber(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	s = strings.NewReplacer(",", "", "%", "", "₹", "", " ", "").Replace(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// cellLabel normalizes a row header cell ("Sales +" -> "sales")
func cellLabel(s *goquery.Selection) string {
	label := strings.ReplaceAll(s.Text(), "\u00a0", " ")
	label = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(label), "+"))
	return strings.ToLower(label)
}

func matches(label string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(label, p) {
			return true
		}
	}
	return false
}

// tablePeriods returns header cells after the label column
func tablePeriods(table *goquery.Selection) []string {
	var periods []string
	table.Find("thead th").Each(func(i int, th *goquery.Selection) {
		if i > 0 {
			periods = append(periods, strings.TrimSpace(th.Text()))
		}
	})
	return periods
}

// rowValues parses value cells; unparseable cells fall back to 0 with parsed=false
func rowValues(cols *goquery.Selection, limit int) ([]float64, []bool) {
	values := make([]float64, 0, cols.Length())
	parsed := make([]bool, 0, cols.Length())
	cols.Each(func(i int, td *goquery.Selection) {
		if i == 0 {
			return
		}
		if limit > 0 && len(values) >= limit {
			return
		}
		v, ok := parseNumber(td.Text())
		values = append(values, v)
		parsed = append(parsed, ok)
	})
	return values, parsed
}

// findRow returns the first row in section whose header matches
func findRow(doc *goquery.Document, m rowMatcher) (contracts.StatementRow, bool) {
	var row contracts.StatementRow
	found := false

	doc.Find(m.section + " table.data-table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		periods := tablePeriods(table)

		table.Find("tbody tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
			cols := tr.Find("td")
			if cols.Length() < 2 || !matches(cellLabel(cols.First()), m.prefixes) {
				return true
			}

			values, parsed := rowValues(cols, len(periods))
			n := len(values)
			if len(periods) < n {
				n = len(periods)
			}
			row = contracts.StatementRow{
				Label:   m.label,
				Periods: append([]string(nil), periods[:n]...),
				Values:  values[:n],
				Parsed:  parsed[:n],
			}
			found = true
			return false
		})
		return !found
	})

	return row, found
}

// parseStatements extracts every known statement row present on the page
func parseStatements(doc *goquery.Document) map[string]contracts.StatementRow {
	rows := make(map[string]contracts.StatementRow)
	for _, m := range statementRows {
		if row, ok := findRow(doc, m); ok && row.Len() > 0 {
			rows[m.label] = row
		}
	}
	return rows
}

// parseShareholding reads the ownership tables; for repeated categories the last table wins
func parseShareholding(doc *goquery.Document) (*contracts.OwnershipSnapshot, bool) {
	snapshot := &contracts.OwnershipSnapshot{}
	found := false

	doc.Find("#shareholding table.data-table").Each(func(_ int, table *goquery.Selection) {
		periods := tablePeriods(table)

		table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
			cols := tr.Find("td")
			if cols.Length() < 2 {
				return
			}
			label := cellLabel(cols.First())

			for _, category := range contracts.AllHolders {
				if !strings.HasPrefix(label, strings.ToLower(category)) {
					continue
				}
				values, _ := rowValues(cols, len(periods))
				snapshot.Set(category, values)
				if category == contracts.HolderFIIs {
					found = true
					// 헤더가 없는 표는 기간 없이 값만 유지
					snapshot.Periods = append([]string(nil), periods[:min(len(periods), len(values))]...)
				}
			}
		})
	})

	return snapshot, found
}

// parseKeyRatios reads the "#top-ratios" name/value list
func parseKeyRatios(doc *goquery.Document) (*contracts.KeyRatios, bool) {
	ratios := &contracts.KeyRatios{}
	found := false

	doc.Find("#top-ratios li").Each(func(_ int, li *goquery.Selection) {
		name := strings.ToLower(strings.TrimSpace(li.Find(".name").Text()))

		var numbers []float64
		li.Find(".number").Each(func(_ int, n *goquery.Selection) {
			if v, ok := parseNumber(n.Text()); ok {
				numbers = append(numbers, v)
			}
		})
		if len(numbers) == 0 {
			return
		}

		first := numbers[0]
		switch {
		case strings.HasPrefix(name, "market cap"):
			ratios.MarketCap = &first
		case strings.HasPrefix(name, "current price"):
			ratios.CurrentPrice = &first
		case strings.HasPrefix(name, "high / low"), strings.HasPrefix(name, "high/low"):
			ratios.High = &first
			if len(numbers) > 1 {
				low := numbers[1]
				ratios.Low = &low
			}
		case strings.HasPrefix(name, "stock p/e"):
			ratios.StockPE = &first
		case strings.HasPrefix(name, "book value"):
			ratios.BookValue = &first
		case strings.HasPrefix(name, "face value"):
			ratios.FaceValue = &first
		case strings.HasPrefix(name, "roce"):
			ratios.ROCE = &first
		case strings.HasPrefix(name, "roe"):
			ratios.ROE = &first
		default:
			return
		}
		found = true
	})

	return ratios, found
}
