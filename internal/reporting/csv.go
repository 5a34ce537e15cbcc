package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the top-stakers table as CSV string.
func RenderCSV(stakers []StakerRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("position,address,tier,staked\n")

	// Rows
	for _, s := range stakers {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s\n",
			s.Position,
			s.Address,
			s.Tier,
			s.Staked.String(),
		))
	}

	return sb.String()
}
