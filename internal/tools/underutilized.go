package tools

import (
	"sort"

	"fleet-relay/internal/fleet"
)

const underutilizedDescription = "Find datacenters whose GPU utilization is below a threshold percentage (default 70)."

// DefaultUtilizationThreshold 未指定阈值时使用
const DefaultUtilizationThreshold = 70.0

// UnderutilizedArgs findUnderutilizedGPUs 的参数
type UnderutilizedArgs struct {
	Threshold *float64 `json:"threshold,omitempty"`
}

type underutilizedEntry struct {
	Datacenter  string  `json:"datacenter"`
	Location    string  `json:"location"`
	Utilization float64 `json:"utilization"`
	IdleGPUs    int     `json:"idle_gpus"`
}

type underutilizedResult struct {
	Threshold   float64              `json:"threshold"`
	Count       int                  `json:"count"`
	Datacenters []underutilizedEntry `json:"datacenters"`
}

func underutilizedParameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"threshold": map[string]any{
				"type":        "number",
				"description": "Utilization percentage threshold (default 70)",
			},
		},
	}
}

func underutilizedGPUs(dcs []fleet.Datacenter, args UnderutilizedArgs) any {
	threshold := DefaultUtilizationThreshold
	if args.Threshold != nil {
		threshold = *args.Threshold
	}

	entries := make([]underutilizedEntry, 0)
	for _, dc := range dcs {
		if dc.Utilization < threshold {
			entries = append(entries, underutilizedEntry{
				Datacenter:  dc.Name,
				Location:    dc.Location,
				Utilization: dc.Utilization,
				IdleGPUs:    dc.IdleGPUs(),
			})
		}
	}
	// 利用率最低的排在前面
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Utilization < entries[j].Utilization })

	return underutilizedResult{Threshold: threshold, Count: len(entries), Datacenters: entries}
}
