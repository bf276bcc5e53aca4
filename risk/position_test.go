package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlannedRisk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		entry      float64
		stop       float64
		contracts  int
		pointValue float64
		want       float64
	}{
		{"es long", 5000, 4990, 2, 50, 1000},
		{"mes short", 5000, 5004, 3, 5, 60},
		{"no stop", 5000, 0, 1, 50, 0},
		{"no contracts", 5000, 4990, 0, 50, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := PlannedRisk(tt.entry, tt.stop, tt.contracts, tt.pointValue)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestRMultiple(t *testing.T) {
	t.Parallel()

	r, ok := RMultiple(250, 100)
	assert.True(t, ok)
	assert.InDelta(t, 2.5, r, 1e-9)

	r, ok = RMultiple(-100, 100)
	assert.True(t, ok)
	assert.InDelta(t, -1.0, r, 1e-9)

	_, ok = RMultiple(100, 0)
	assert.False(t, ok)
}

func TestRR(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 2.0, RR(100, 95, 110), 1e-9)
	assert.InDelta(t, 2.0, RR(100, 105, 90), 1e-9)
	assert.Zero(t, RR(100, 100, 110))
	assert.Zero(t, RR(100, 95, 0))
}

func TestRiskPct(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.01, RiskPct(100, 10000), 1e-12)
	assert.True(t, math.IsInf(RiskPct(100, 0), 1))
}

func TestCalculate_ES(t *testing.T) {
	t.Parallel()

	got := Calculate(Inputs{
		Equity:     50000,
		RiskPct:    0.01,
		EntryPrice: 5000.00,
		StopPrice:  4995.00,
		TickSize:   0.25,
		TickValue:  12.50,
	})

	assert.InDelta(t, 20.0, got.StopTicks, 1e-9)
	assert.InDelta(t, 250.0, got.RiskPerUnit, 1e-9)
	assert.InDelta(t, 500.0, got.RiskAmount, 1e-9)
	assert.Equal(t, 2, got.Contracts)
	assert.InDelta(t, 500.0, got.ActualRisk, 1e-9)
}

func TestCalculate_FloorsToWholeContracts(t *testing.T) {
	t.Parallel()

	got := Calculate(Inputs{
		Equity:     10000,
		RiskPct:    0.02,
		EntryPrice: 18000.00,
		StopPrice:  18030.00,
		TickSize:   0.25,
		TickValue:  0.50,
	})

	assert.InDelta(t, 120.0, got.StopTicks, 1e-9)
	assert.InDelta(t, 60.0, got.RiskPerUnit, 1e-9)
	assert.Equal(t, 3, got.Contracts)
	assert.InDelta(t, 180.0, got.ActualRisk, 1e-9)
}

func TestCalculate_DegenerateInputs(t *testing.T) {
	t.Parallel()

	got := Calculate(Inputs{Equity: 10000, RiskPct: 0.01, EntryPrice: 100, StopPrice: 100, TickSize: 0.25, TickValue: 12.5})
	assert.Zero(t, got.Contracts)

	got = Calculate(Inputs{Equity: 10000, RiskPct: 0.01, EntryPrice: 100, StopPrice: 99})
	assert.Zero(t, got.Contracts)
	assert.InDelta(t, 100.0, got.RiskAmount, 1e-9)
}
