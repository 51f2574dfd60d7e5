package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/equimeter/internal/contracts"
)

// scoreCmd computes one Equimeter report from the command line
var scoreCmd = &cobra.Command{
	Use:   "score [symbol]",
	Short: "종목 Equimeter 점수 계산",
	Long: `한 종목의 Equimeter 점수를 계산해 출력합니다.

각 입력(가격, P/E, 재무제표, 지분, 뉴스 감성)은 독립적으로 실패할 수 있으며,
실패한 입력은 해당 항목만 0점 처리되고 사유가 함께 출력됩니다.

Example:
  go run ./cmd/equimeter score TCS
  go run ./cmd/equimeter score RELIANCE --json`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

var scoreJSON bool

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "print the full report as JSON")
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.builder.Build(ctx, args[0])
	if err != nil {
		return err
	}

	if scoreJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(report)
	return nil
}

// printReport renders the score vector and every unavailable input
func printReport(r *contracts.Equimeter) {
	PrintHeader("Equimeter: " + r.Symbol)

	rows := []struct {
		name  string
		score float64
	}{
		{contracts.ComponentValuation, r.Scores.Valuation},
		{contracts.ComponentTechnical, r.Scores.Technical},
		{contracts.ComponentFundamental, r.Scores.Fundamental},
		{contracts.ComponentShareholding, r.Scores.Shareholding},
		{contracts.ComponentSentiment, r.Scores.Sentiment},
	}
	for _, row := range rows {
		note := ""
		if diag, ok := r.Components[row.name]; ok && !diag.Available() {
			note = "  (no data)"
		}
		fmt.Printf("  %-13s: %6.2f / 20%s\n", row.name, row.score, note)
	}
	PrintDivider()
	fmt.Printf("  %-13s: %6.2f / 100\n", "total", r.Scores.Total)

	var missing []string
	for component, diag := range r.Components {
		for input, st := range diag.Inputs {
			if !st.Available {
				missing = append(missing, fmt.Sprintf("%s.%s (%s)", component, input, st.Reason))
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		PrintDivider()
		fmt.Println("  Unavailable inputs:")
		for _, m := range missing {
			fmt.Printf("    - %s\n", m)
		}
	}
	PrintFooter()
}
