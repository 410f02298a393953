package engine

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/openvault-labs/yieldrouter/internal/types"
)

// renderOpportunities prints the cycle's ranked opportunities as a console
// table. Purely informational; failures to render never affect the cycle.
func renderOpportunities(opportunities []types.Opportunity, target types.AllocationPlan) {
	if len(opportunities) == 0 {
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Protocol", "Chain", "APY", "Risk", "Adj APY", "Net APY", "Hold Days", "Target W")

	for _, opp := range opportunities {
		table.Append(
			opp.Protocol,
			opp.Chain,
			fmt.Sprintf("%.2f%%", opp.APY*100),
			fmt.Sprintf("%.1f", opp.RiskScore),
			fmt.Sprintf("%.2f%%", opp.RiskAdjustedAPY*100),
			fmt.Sprintf("%.2f%%", opp.NetAPY*100),
			fmt.Sprintf("%d", opp.MinHoldDays),
			fmt.Sprintf("%.1f%%", target[opp.Protocol]*100),
		)
	}

	table.Render()
}
