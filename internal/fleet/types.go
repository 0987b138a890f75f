package fleet

import (
	"sort"
	"time"
)

// Datacenter 数据中心及其 GPU 容量
type Datacenter struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Location      string  `json:"location"`
	Region        string  `json:"region"`
	Status        string  `json:"status"`
	GPUType       string  `json:"gpu_type"`
	CapacityTotal int     `json:"capacity_total"`
	CapacityUsed  int     `json:"capacity_used"`
	PowerMW       float64 `json:"power_mw"`
	PUE           float64 `json:"pue"`
	Utilization   float64 `json:"utilization"` // 百分比
}

// IdleGPUs 空闲 GPU 数量
func (d Datacenter) IdleGPUs() int {
	idle := d.CapacityTotal - d.CapacityUsed
	if idle < 0 {
		return 0
	}
	return idle
}

// Signal 数据中心上报的告警或事件
type Signal struct {
	ID           string    `json:"id"`
	DatacenterID string    `json:"datacenter_id"`
	Kind         string    `json:"kind"`
	Severity     string    `json:"severity"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
}

// DemandRequest 客户的 GPU 需求
type DemandRequest struct {
	ID          string    `json:"id"`
	Customer    string    `json:"customer"`
	GPUType     string    `json:"gpu_type"`
	Quantity    int       `json:"quantity"`
	Region      string    `json:"region"`
	Status      string    `json:"status"`
	RequestedAt time.Time `json:"requested_at"`
}

// Fixtures 一份完整的静态数据集
type Fixtures struct {
	Datacenters []Datacenter    `json:"datacenters"`
	Signals     []Signal        `json:"signals"`
	Demands     []DemandRequest `json:"demands"`
}

// Clone 深拷贝，保证存储内部的数据不被调用方修改
func (f Fixtures) Clone() Fixtures {
	return Fixtures{
		Datacenters: append([]Datacenter(nil), f.Datacenters...),
		Signals:     append([]Signal(nil), f.Signals...),
		Demands:     append([]DemandRequest(nil), f.Demands...),
	}
}

// SortedByID 返回按 ID 升序排列的副本
func (f Fixtures) SortedByID() Fixtures {
	out := f.Clone()
	sort.SliceStable(out.Datacenters, func(i, j int) bool { return out.Datacenters[i].ID < out.Datacenters[j].ID })
	sort.SliceStable(out.Signals, func(i, j int) bool { return out.Signals[i].ID < out.Signals[j].ID })
	sort.SliceStable(out.Demands, func(i, j int) bool { return out.Demands[i].ID < out.Demands[j].ID })
	return out
}
