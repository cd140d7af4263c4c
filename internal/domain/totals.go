package domain

import "github.com/shopspring/decimal"

// ItemTotal returns quantity x unit price for items and zero for stages
func ItemTotal(n Node) decimal.Decimal {
	if n.Kind != KindItem {
		return decimal.Zero
	}
	return n.Quantity.Mul(n.UnitPrice)
}

// StageTotal sums the totals of every item below the stage
func StageTotal(nodes []Node, id string) decimal.Decimal {
	stage, ok := FindNode(nodes, id)
	if !ok {
		return decimal.Zero
	}
	if stage.Kind == KindItem {
		return ItemTotal(stage)
	}
	total := decimal.Zero
	for _, n := range nodes {
		if IsDescendantOf(n.Path, stage.Path) {
			total = total.Add(ItemTotal(n))
		}
	}
	return total
}

// RecomputeValues returns a copy of nodes whose Value fields hold item totals
// and stage aggregates
func RecomputeValues(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		c := n.Clone()
		c.Value = ItemTotal(n)
		out[i] = c
	}
	for i, n := range out {
		if !n.IsStage() {
			continue
		}
		total := decimal.Zero
		for _, other := range out {
			if IsDescendantOf(other.Path, n.Path) {
				total = total.Add(ItemTotal(other))
			}
		}
		out[i].Value = total
	}
	return out
}

// GrandTotal sums every item in the budget
func GrandTotal(nodes []Node) decimal.Decimal {
	total := decimal.Zero
	for _, n := range nodes {
		total = total.Add(ItemTotal(n))
	}
	return total
}
