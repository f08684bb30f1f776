// Package billing apportions a bulk payment across outstanding delivery
// bills.
package billing

import "fmt"

// BillInfo is the stored state of one bill entering a bulk payment.
type BillInfo struct {
	Total            float64
	ExistingDiscount float64
}

// Allocation is the computed outcome for one bill.
type Allocation struct {
	BillID           string
	Original         float64
	Discount         float64
	Final            float64
	Paid             float64
	ExistingDiscount float64
}

// Allocate computes, for each bill id, the blanket discount and the
// proportional share of amountPaid. A bill's discount is its original
// total times discountPct/100 (only when the percentage is positive) and
// its final amount never drops below zero. Bills missing from info fall
// back to an equal share of selectedTotal. When the summed final amounts
// are zero the payment is split equally instead of proportionally.
func Allocate(billIDs []string, info map[string]BillInfo, discountPct, amountPaid, selectedTotal float64) []Allocation {
	if len(billIDs) == 0 {
		return nil
	}

	allocs := make([]Allocation, 0, len(billIDs))
	var totalFinal float64
	for _, id := range billIDs {
		bill, ok := info[id]
		if !ok {
			share := selectedTotal / float64(len(billIDs))
			allocs = append(allocs, Allocation{BillID: id, Original: share, Final: share})
			totalFinal += share
			continue
		}

		var discount float64
		if discountPct > 0 {
			discount = bill.Total * discountPct / 100
		}
		final := bill.Total - discount
		if final < 0 {
			final = 0
		}
		allocs = append(allocs, Allocation{
			BillID:           id,
			Original:         bill.Total,
			Discount:         discount,
			Final:            final,
			ExistingDiscount: bill.ExistingDiscount,
		})
		totalFinal += final
	}

	for i := range allocs {
		if totalFinal > 0 {
			allocs[i].Paid = amountPaid * allocs[i].Final / totalFinal
		} else {
			allocs[i].Paid = amountPaid / float64(len(billIDs))
		}
	}
	return allocs
}

// DetailSuffix renders the human-readable note appended to a bill's
// transaction details when a payment discount was applied.
func (a Allocation) DetailSuffix() string {
	if a.Discount <= 0 {
		return ""
	}
	suffix := fmt.Sprintf(" | Payment Discount: ₹%.2f", a.Discount)
	if a.ExistingDiscount > 0 {
		suffix += fmt.Sprintf(" (Additional to existing ₹%.2f)", a.ExistingDiscount)
	}
	return suffix
}

// TotalFinal sums the final amounts of the allocations.
func TotalFinal(allocs []Allocation) float64 {
	var sum float64
	for _, a := range allocs {
		sum += a.Final
	}
	return sum
}
