// Command rewards_check queries the explorer for one or more addresses and
// prints their balances and trailing reward totals. Useful for eyeballing
// upstream data without running the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/stake-dashboard/internal/cache"
	"github.com/stake-dashboard/internal/config"
	"github.com/stake-dashboard/internal/explorer"
	"github.com/stake-dashboard/internal/logging"
	"github.com/stake-dashboard/internal/rewards"
	"github.com/stake-dashboard/internal/types"
)

func main() {
	addrFlag := flag.String("addresses", "", "Comma-separated addresses to check")
	sinceFlag := flag.Int64("since", 0, "Optional unix timestamp for an earned-since query")
	timeoutFlag := flag.Duration("timeout", 60*time.Second, "Overall query timeout")
	flag.Parse()

	addrs := types.ParseAddressList(*addrFlag)
	if err := types.ValidateAddresses(addrs); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid input: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.LevelWarn, logging.FormatText)
	client := explorer.NewClient(explorer.Config{
		BaseURL:           cfg.Explorer.BaseURL,
		Timeout:           cfg.Explorer.Timeout,
		RequestsPerSecond: cfg.Explorer.RequestsPerSecond,
		Burst:             cfg.Explorer.Burst,
	}, logger)

	svc := rewards.NewService(client,
		cache.NewMemoizer[[]rewards.AddressRewards](16, time.Minute),
		cache.NewMemoizer[[]rewards.AddressEarned](16, time.Minute),
		rewards.Config{
			PageLimit:      cfg.Explorer.PageLimit,
			WindowMaxPages: cfg.Explorer.WindowMaxPages,
			SinceMaxPages:  cfg.Explorer.SinceMaxPages,
		})

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	if *sinceFlag > 0 {
		printEarned(ctx, svc, addrs, *sinceFlag)
		return
	}
	printWindowed(ctx, svc, addrs)
}

func printWindowed(ctx context.Context, svc *rewards.Service, addrs []types.Address) {
	results, err := svc.WindowedRewards(ctx, addrs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}

	for _, r := range results {
		fmt.Printf("%s\n", r.Address)
		fmt.Printf("  tfuel balance: %s\n", formatOpt(r.TFuelBalance))
		fmt.Printf("  staked theta:  %s\n", formatOpt(r.StakedTheta))
		fmt.Printf("  rewards 7d:    %s\n", formatOpt(r.Rewards7d))
		fmt.Printf("  rewards 30d:   %s\n", formatOpt(r.Rewards30d))
		if r.LastRewardAt != nil {
			fmt.Printf("  last reward:   %s\n", time.Unix(*r.LastRewardAt, 0).Format(time.RFC3339))
		}
	}
}

func printEarned(ctx context.Context, svc *rewards.Service, addrs []types.Address, since int64) {
	results, err := svc.EarnedSince(ctx, addrs, since)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Earned since %s\n", time.Unix(since, 0).Format(time.RFC3339))
	for _, r := range results {
		fmt.Printf("%s  earned=%s  pages=%d\n", r.Address, formatOpt(r.Earned), r.PagesFetched)
	}
}

func formatOpt(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.6f", *v)
}
