package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateProportionalShares(t *testing.T) {
	// At 10% discount the finals land on 100 and 300, so a payment of
	// 200 splits 50/150.
	info := map[string]BillInfo{
		"A-250801": {Total: 111.1111},
		"B-250801": {Total: 333.3333},
	}
	allocs := Allocate([]string{"A-250801", "B-250801"}, info, 10, 200, 444.4444)
	require.Len(t, allocs, 2)

	assert.InDelta(t, 100, allocs[0].Final, 0.01)
	assert.InDelta(t, 300, allocs[1].Final, 0.01)
	assert.InDelta(t, 50, allocs[0].Paid, 0.01)
	assert.InDelta(t, 150, allocs[1].Paid, 0.01)
	assert.InDelta(t, 400, TotalFinal(allocs), 0.01)
}

func TestAllocateNoDiscountBelowZeroPct(t *testing.T) {
	info := map[string]BillInfo{"A": {Total: 500}}
	allocs := Allocate([]string{"A"}, info, 0, 500, 500)
	require.Len(t, allocs, 1)
	assert.Zero(t, allocs[0].Discount)
	assert.Equal(t, 500.0, allocs[0].Final)
	assert.Equal(t, 500.0, allocs[0].Paid)
}

func TestAllocateFinalFlooredAtZero(t *testing.T) {
	info := map[string]BillInfo{"A": {Total: 100}}
	allocs := Allocate([]string{"A"}, info, 150, 0, 100)
	require.Len(t, allocs, 1)
	assert.Equal(t, 0.0, allocs[0].Final)
	// Zero total final falls back to an equal split.
	assert.Equal(t, 0.0, allocs[0].Paid)
}

func TestAllocateEqualSplitWhenFinalsZero(t *testing.T) {
	info := map[string]BillInfo{
		"A": {Total: 0},
		"B": {Total: 0},
	}
	allocs := Allocate([]string{"A", "B"}, info, 0, 90, 0)
	require.Len(t, allocs, 2)
	assert.Equal(t, 45.0, allocs[0].Paid)
	assert.Equal(t, 45.0, allocs[1].Paid)
}

func TestAllocateMissingInfoEqualShare(t *testing.T) {
	allocs := Allocate([]string{"A", "B", "C"}, nil, 10, 300, 600)
	require.Len(t, allocs, 3)
	for _, a := range allocs {
		assert.Equal(t, 200.0, a.Original)
		assert.Zero(t, a.Discount)
		assert.Equal(t, 200.0, a.Final)
		assert.InDelta(t, 100, a.Paid, 0.01)
	}
}

func TestAllocateEmpty(t *testing.T) {
	assert.Nil(t, Allocate(nil, nil, 10, 100, 100))
}

func TestDetailSuffix(t *testing.T) {
	tests := []struct {
		name  string
		alloc Allocation
		want  string
	}{
		{"no discount", Allocation{Discount: 0}, ""},
		{"discount only", Allocation{Discount: 50}, " | Payment Discount: ₹50.00"},
		{
			"stacked on existing",
			Allocation{Discount: 50, ExistingDiscount: 20},
			" | Payment Discount: ₹50.00 (Additional to existing ₹20.00)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.alloc.DetailSuffix())
		})
	}
}
