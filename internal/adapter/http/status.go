package http

import (
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/avasseur/reelpress/internal/domain"
)

type systemInfo struct {
	GoVersion     string  `json:"goVersion"`
	NumGoroutine  int     `json:"numGoroutine"`
	MemUsedMB     uint64  `json:"memUsedMb,omitempty"`
	MemTotalMB    uint64  `json:"memTotalMb,omitempty"`
	DiskUsedPct   float64 `json:"diskUsedPercent,omitempty"`
	DiskFreeGB    float64 `json:"diskFreeGb,omitempty"`
	UptimeSeconds int64   `json:"uptimeSeconds"`
}

type statusResponse struct {
	Service  string     `json:"service"`
	Version  string     `json:"version"`
	Tiers    []string   `json:"tiers"`
	Features []string   `json:"features"`
	System   systemInfo `json:"system"`
}

// Status reports service capabilities and a point-in-time system
// snapshot. Gauges that cannot be sampled are omitted rather than
// failing the whole response.
func (h *Handlers) Status(version string, dataDir string, startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info := systemInfo{
			GoVersion:     runtime.Version(),
			NumGoroutine:  runtime.NumGoroutine(),
			UptimeSeconds: int64(time.Since(startedAt).Seconds()),
		}

		if vm, err := mem.VirtualMemory(); err == nil {
			info.MemUsedMB = vm.Used / (1024 * 1024)
			info.MemTotalMB = vm.Total / (1024 * 1024)
		}
		if du, err := disk.Usage(dataDir); err == nil {
			info.DiskUsedPct = du.UsedPercent
			info.DiskFreeGB = float64(du.Free) / (1024 * 1024 * 1024)
		}

		writeJSON(w, http.StatusOK, statusResponse{
			Service: "reelpress",
			Version: version,
			Tiers:   domain.TierNames(),
			Features: []string{
				"cloud_drive", "hosted_video", "direct_url",
				"upload", "sse_progress", "expiring_downloads",
			},
			System: info,
		})
	}
}
