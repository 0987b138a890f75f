package tools

import "fleet-relay/internal/fleet"

const mostGPUsDescription = "Find the datacenter with the most GPUs currently in use."

// MostGPUsArgs getDatacenterWithMostGPUs 没有参数
type MostGPUsArgs struct{}

type mostGPUsResult struct {
	Datacenter    string  `json:"datacenter"`
	Location      string  `json:"location"`
	GPUCount      int     `json:"gpu_count"`
	GPUType       string  `json:"gpu_type"`
	CapacityTotal int     `json:"capacity_total"`
	Utilization   float64 `json:"utilization"`
}

func mostGPUsParameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

// 并列时保留存储顺序中的第一个
func datacenterWithMostGPUs(dcs []fleet.Datacenter, _ MostGPUsArgs) any {
	top := dcs[0]
	for _, dc := range dcs[1:] {
		if dc.CapacityUsed > top.CapacityUsed {
			top = dc
		}
	}
	return mostGPUsResult{
		Datacenter:    top.Name,
		Location:      top.Location,
		GPUCount:      top.CapacityUsed,
		GPUType:       top.GPUType,
		CapacityTotal: top.CapacityTotal,
		Utilization:   top.Utilization,
	}
}
