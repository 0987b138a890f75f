package fleet

import "time"

func ts(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultFixtures 返回演示用的静态数据集，每次调用返回新的副本
func DefaultFixtures() Fixtures {
	return Fixtures{
		Datacenters: []Datacenter{
			{ID: "dc-001", Name: "Virginia Prime", Location: "Ashburn, VA", Region: "us-east", Status: "operational", GPUType: "H100", CapacityTotal: 4096, CapacityUsed: 3480, PowerMW: 42.5, PUE: 1.18, Utilization: 85},
			{ID: "dc-002", Name: "Oregon North", Location: "Hillsboro, OR", Region: "us-west", Status: "operational", GPUType: "H100", CapacityTotal: 2048, CapacityUsed: 1120, PowerMW: 24.8, PUE: 1.12, Utilization: 54.7},
			{ID: "dc-003", Name: "Texas Central", Location: "Dallas, TX", Region: "us-central", Status: "maintenance", GPUType: "A100", CapacityTotal: 3072, CapacityUsed: 1536, PowerMW: 31.2, PUE: 1.35, Utilization: 50},
			{ID: "dc-004", Name: "Frankfurt One", Location: "Frankfurt, DE", Region: "eu-central", Status: "operational", GPUType: "H200", CapacityTotal: 1024, CapacityUsed: 942, PowerMW: 14.6, PUE: 1.21, Utilization: 92},
			{ID: "dc-005", Name: "Singapore Edge", Location: "Singapore, SG", Region: "ap-southeast", Status: "degraded", GPUType: "A100", CapacityTotal: 1536, CapacityUsed: 614, PowerMW: 18.9, PUE: 1.42, Utilization: 40},
			{ID: "dc-006", Name: "Arizona Desert", Location: "Phoenix, AZ", Region: "us-west", Status: "operational", GPUType: "B200", CapacityTotal: 2560, CapacityUsed: 1984, PowerMW: 36.4, PUE: 1.25, Utilization: 77.5},
		},
		Signals: []Signal{
			{ID: "sig-001", DatacenterID: "dc-003", Kind: "maintenance", Severity: "info", Message: "Scheduled cooling loop maintenance", Timestamp: ts("2025-06-01T08:00:00Z")},
			{ID: "sig-002", DatacenterID: "dc-005", Kind: "thermal", Severity: "warning", Message: "Inlet temperature above threshold in hall B", Timestamp: ts("2025-06-01T09:15:00Z")},
			{ID: "sig-003", DatacenterID: "dc-004", Kind: "capacity", Severity: "warning", Message: "GPU capacity above 90%", Timestamp: ts("2025-06-01T10:30:00Z")},
			{ID: "sig-004", DatacenterID: "dc-005", Kind: "network", Severity: "critical", Message: "Uplink packet loss on spine-2", Timestamp: ts("2025-06-01T11:05:00Z")},
		},
		Demands: []DemandRequest{
			{ID: "dem-001", Customer: "Acme AI", GPUType: "H100", Quantity: 512, Region: "us-east", Status: "pending", RequestedAt: ts("2025-05-28T14:00:00Z")},
			{ID: "dem-002", Customer: "Northwind Labs", GPUType: "A100", Quantity: 256, Region: "ap-southeast", Status: "approved", RequestedAt: ts("2025-05-29T09:30:00Z")},
			{ID: "dem-003", Customer: "Globex Research", GPUType: "H200", Quantity: 128, Region: "eu-central", Status: "pending", RequestedAt: ts("2025-05-30T16:45:00Z")},
			{ID: "dem-004", Customer: "Initech", GPUType: "B200", Quantity: 384, Region: "us-west", Status: "fulfilled", RequestedAt: ts("2025-05-31T11:20:00Z")},
		},
	}
}
