package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Yield Engine Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Ledger Summary
	sb.WriteString("## Ledger Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Accounts | %d |\n", r.Ledger.Accounts))
	sb.WriteString(fmt.Sprintf("| Active Stakers | %d |\n", r.Ledger.ActiveStakers))
	sb.WriteString(fmt.Sprintf("| LP-Locked Positions | %d |\n", r.Ledger.LPLockedPositions))
	sb.WriteString(fmt.Sprintf("| Time-Locked Positions | %d |\n", r.Ledger.TimeLockedPositions))
	sb.WriteString(fmt.Sprintf("| Total Staked | %s |\n", r.Ledger.TotalStaked.String()))
	sb.WriteString(fmt.Sprintf("| Total Unclaimed | %s |\n", r.Ledger.TotalUnclaimed.String()))
	sb.WriteString(fmt.Sprintf("| Total Referral Rewards | %s |\n", r.Ledger.TotalReferralRewards.String()))
	sb.WriteString("\n")

	// Tier Distribution
	sb.WriteString("## Tier Distribution\n\n")
	if len(r.TierDistribution) > 0 {
		sb.WriteString("| Tier | Accounts | Total Staked |\n")
		sb.WriteString("|------|----------|--------------|\n")
		for _, t := range r.TierDistribution {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s |\n", t.Tier, t.Accounts, t.TotalStaked.String()))
		}
	} else {
		sb.WriteString("No active stakers.\n")
	}
	sb.WriteString("\n")

	// Top Stakers
	sb.WriteString("## Top Stakers\n\n")
	if len(r.TopStakers) > 0 {
		sb.WriteString("| # | Address | Tier | Staked |\n")
		sb.WriteString("|---|---------|------|--------|\n")
		for _, s := range r.TopStakers {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n",
				s.Position, s.Address, s.Tier, s.Staked.String()))
		}
	} else {
		sb.WriteString("No active stakers.\n")
	}
	sb.WriteString("\n")

	// Referral Leaders
	sb.WriteString("## Referral Leaders\n\n")
	if len(r.ReferralLeaders) > 0 {
		sb.WriteString("| # | Address | Referral Reward |\n")
		sb.WriteString("|---|---------|----------------|\n")
		for _, l := range r.ReferralLeaders {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s |\n",
				l.Position, l.Address, l.ReferralReward.String()))
		}
	} else {
		sb.WriteString("No referral rewards recorded.\n")
	}
	sb.WriteString("\n")

	// Market Stability
	sb.WriteString("## Market Stability\n\n")
	if r.Stability.HasState {
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Daily Open Price | %s |\n", r.Stability.DailyOpenPrice.String()))
		sb.WriteString(fmt.Sprintf("| Current Price | %s |\n", r.Stability.CurrentPrice.String()))
		sb.WriteString(fmt.Sprintf("| Drop (bps) | %d |\n", r.Stability.DropBps))
		sb.WriteString(fmt.Sprintf("| Active Tier | %d |\n", r.Stability.ActiveTier))
		sb.WriteString(fmt.Sprintf("| Window Start | %s |\n", time.Unix(r.Stability.WindowStart, 0).UTC().Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("| Updated At | %s |\n", time.Unix(r.Stability.UpdatedAt, 0).UTC().Format(time.RFC3339)))
	} else {
		sb.WriteString("Controller has not published state yet.\n")
	}
	sb.WriteString("\n")

	if r.Stability.PricePoints > 0 {
		sb.WriteString("### Price History\n\n")
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Points | %d |\n", r.Stability.PricePoints))
		sb.WriteString(fmt.Sprintf("| Min Price | %.8f |\n", r.Stability.MinPrice))
		sb.WriteString(fmt.Sprintf("| Max Price | %.8f |\n", r.Stability.MaxPrice))
		sb.WriteString(fmt.Sprintf("| Tier Changes | %d |\n", r.Stability.TierChanges))
		sb.WriteString("\n")
	}

	// Payout Summary
	sb.WriteString("## Payout Summary\n\n")
	if len(r.Payouts) > 0 {
		sb.WriteString("| Kind | Events | Total |\n")
		sb.WriteString("|------|--------|-------|\n")
		for _, p := range r.Payouts {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s |\n", p.Kind, p.Events, p.Total.String()))
		}
	} else {
		sb.WriteString("No ledger events recorded.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
