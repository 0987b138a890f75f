package tools

import (
	"github.com/shopspring/decimal"

	"fleet-relay/internal/fleet"
)

const powerDescription = "Calculate the total power consumption across all datacenters, optionally with a per-datacenter breakdown."

// PowerArgs getTotalPowerConsumption 的参数
type PowerArgs struct {
	Breakdown bool `json:"breakdown,omitempty"`
}

type powerShare struct {
	Datacenter string  `json:"datacenter"`
	PowerMW    float64 `json:"power_mw"`
	Percentage float64 `json:"percentage"`
}

type powerResult struct {
	TotalPowerMW    float64      `json:"total_power_mw"`
	DatacenterCount int          `json:"datacenter_count"`
	AveragePUE      float64      `json:"average_pue"`
	Breakdown       []powerShare `json:"breakdown,omitempty"`
}

func powerParameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"breakdown": map[string]any{
				"type":        "boolean",
				"description": "Include the power consumption of each datacenter",
			},
		},
	}
}

var hundred = decimal.NewFromInt(100)

func totalPowerConsumption(dcs []fleet.Datacenter, args PowerArgs) any {
	total := decimal.Zero
	pueSum := decimal.Zero
	for _, dc := range dcs {
		total = total.Add(decimal.NewFromFloat(dc.PowerMW))
		pueSum = pueSum.Add(decimal.NewFromFloat(dc.PUE))
	}
	count := decimal.NewFromInt(int64(len(dcs)))

	result := powerResult{
		TotalPowerMW:    total.Round(2).InexactFloat64(),
		DatacenterCount: len(dcs),
		AveragePUE:      pueSum.Div(count).Round(2).InexactFloat64(),
	}

	if args.Breakdown {
		result.Breakdown = make([]powerShare, 0, len(dcs))
		for _, dc := range dcs {
			power := decimal.NewFromFloat(dc.PowerMW)
			pct := decimal.Zero
			if !total.IsZero() {
				pct = power.Div(total).Mul(hundred).Round(1)
			}
			result.Breakdown = append(result.Breakdown, powerShare{
				Datacenter: dc.Name,
				PowerMW:    power.Round(2).InexactFloat64(),
				Percentage: pct.InexactFloat64(),
			})
		}
	}
	return result
}
