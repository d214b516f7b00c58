package order

import (
	"sort"
	"time"

	"atec/model"

	"github.com/shopspring/decimal"
)

func addOrder(t *model.OrderTotals, o model.OrderClient) {
	if o.Status == model.OrderCancelled {
		t.CancelledCount++
		return
	}
	t.Count++
	t.Total = t.Total.Add(o.TotalAmount)
	t.Paid = t.Paid.Add(o.PaidAmount)
	t.Outstanding = t.Outstanding.Add(o.Outstanding())
}

// Summarize totals the orders overall and per category. Cancelled orders are
// only counted; they never contribute to the amounts.
func Summarize(orders []model.OrderClient, from, to *time.Time) model.OrderSummary {
	zero := model.OrderTotals{Total: decimal.Zero, Paid: decimal.Zero, Outstanding: decimal.Zero}
	summary := model.OrderSummary{From: from, To: to, Overall: zero, ByCategory: []model.CategoryTotals{}}

	byID := map[int64]*model.CategoryTotals{}
	for _, o := range orders {
		addOrder(&summary.Overall, o)
		ct, ok := byID[o.CategoryID]
		if !ok {
			ct = &model.CategoryTotals{CategoryID: o.CategoryID, CategoryName: o.CategoryName, OrderTotals: zero}
			byID[o.CategoryID] = ct
		}
		addOrder(&ct.OrderTotals, o)
	}
	for _, ct := range byID {
		summary.ByCategory = append(summary.ByCategory, *ct)
	}
	sort.Slice(summary.ByCategory, func(i, j int) bool {
		return summary.ByCategory[i].CategoryName < summary.ByCategory[j].CategoryName
	})
	return summary
}
