package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// symbolsCmd searches the company lookup table
var symbolsCmd = &cobra.Command{
	Use:   "symbols [query]",
	Short: "회사명/티커 검색",
	Long: `companies 테이블에서 회사명 또는 티커를 검색합니다 (최대 5건).

Example:
  go run ./cmd/equimeter symbols tata
  go run ./cmd/equimeter symbols "HDFC Bank"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSymbols,
}

func init() {
	rootCmd.AddCommand(symbolsCmd)
}

func runSymbols(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.Database.Enabled() {
		return fmt.Errorf("DATABASE_URL is required for symbol search")
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	query := strings.Join(args, " ")
	companies, err := a.resolver.Search(ctx, query, 5)
	if err != nil {
		return fmt.Errorf("search %q: %w", query, err)
	}

	PrintHeader("Search: " + query)
	if len(companies) == 0 {
		fmt.Println("  (no matches)")
	}
	for _, c := range companies {
		fmt.Printf("  %-12s %s\n", c.Symbol, c.Name)
	}
	PrintFooter()
	return nil
}
