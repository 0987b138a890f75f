package tools

import (
	"strings"

	"fleet-relay/internal/fleet"
)

const queryDescription = "Query datacenters with optional filters for location, status, GPU type and minimum GPU capacity. Returns the matching datacenters."

// QueryArgs queryDatacenters 的参数，全部可选
type QueryArgs struct {
	Location    string `json:"location,omitempty"`
	Status      string `json:"status,omitempty"`
	GPUType     string `json:"gpu_type,omitempty"`
	MinCapacity int    `json:"min_capacity,omitempty"`
}

type queryResult struct {
	Count       int                `json:"count"`
	Datacenters []fleet.Datacenter `json:"datacenters"`
}

func queryParameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"location": map[string]any{
				"type":        "string",
				"description": "City, state, country or region to filter by (partial match)",
			},
			"status": map[string]any{
				"type":        "string",
				"description": "Operational status",
				"enum":        []string{"operational", "maintenance", "degraded"},
			},
			"gpu_type": map[string]any{
				"type":        "string",
				"description": "GPU model, e.g. H100, A100, H200, B200",
			},
			"min_capacity": map[string]any{
				"type":        "integer",
				"description": "Minimum total GPU capacity",
			},
		},
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func queryDatacenters(dcs []fleet.Datacenter, args QueryArgs) any {
	matched := make([]fleet.Datacenter, 0, len(dcs))
	for _, dc := range dcs {
		if args.Location != "" && !containsFold(dc.Location, args.Location) && !containsFold(dc.Region, args.Location) {
			continue
		}
		if args.Status != "" && !strings.EqualFold(dc.Status, args.Status) {
			continue
		}
		if args.GPUType != "" && !strings.EqualFold(dc.GPUType, args.GPUType) {
			continue
		}
		if dc.CapacityTotal < args.MinCapacity {
			continue
		}
		matched = append(matched, dc)
	}
	return queryResult{Count: len(matched), Datacenters: matched}
}
