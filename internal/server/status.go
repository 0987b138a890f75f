package server

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"fleet-relay/internal/util"
)

type runtimeStatus struct {
	Uptime        string  `json:"uptime"`
	Goroutines    int     `json:"goroutines"`
	CPUCores      int     `json:"cpu_cores,omitempty"`
	MemUsedPct    float64 `json:"mem_used_percent,omitempty"`
	MemTotalMB    uint64  `json:"mem_total_mb,omitempty"`
	ProcessRSSMB  uint64  `json:"process_rss_mb,omitempty"`
	ProcessCPUPct float64 `json:"process_cpu_percent,omitempty"`
}

type statusResponse struct {
	Status               string        `json:"status"`
	Timestamp            string        `json:"timestamp"`
	Model                string        `json:"model"`
	StoreEngine          string        `json:"store_engine"`
	CredentialConfigured bool          `json:"credential_configured"`
	Runtime              runtimeStatus `json:"runtime"`
}

func (s *Server) handleStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	c.JSON(http.StatusOK, statusResponse{
		Status:               "OK",
		Timestamp:            time.Now().UTC().Format(time.RFC3339),
		Model:                s.opts.Model,
		StoreEngine:          s.opts.StoreEngine,
		CredentialConfigured: s.opts.CredentialConfigured(),
		Runtime:              s.collectRuntime(ctx),
	})
}

// collectRuntime 采集主机与进程信息，单项失败只记录日志
func (s *Server) collectRuntime(ctx context.Context) runtimeStatus {
	st := runtimeStatus{
		Uptime:     time.Since(s.started).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
	}

	if cores, err := cpu.CountsWithContext(ctx, true); err == nil {
		st.CPUCores = cores
	} else {
		util.Debugw("获取 CPU 核数失败", map[string]interface{}{"error": err.Error()})
	}

	if vmem, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		st.MemUsedPct = vmem.UsedPercent
		st.MemTotalMB = vmem.Total / 1024 / 1024
	} else {
		util.Debugw("获取内存信息失败", map[string]interface{}{"error": err.Error()})
	}

	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		util.Debugw("获取进程信息失败", map[string]interface{}{"error": err.Error()})
		return st
	}
	if memInfo, err := proc.MemoryInfoWithContext(ctx); err == nil {
		st.ProcessRSSMB = memInfo.RSS / 1024 / 1024
	}
	if pct, err := proc.CPUPercentWithContext(ctx); err == nil {
		st.ProcessCPUPct = pct
	}
	return st
}
