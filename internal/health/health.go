package health

import (
	"context"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/LanderBuys/strivon-sub004/internal/services"
)

type HealthChecker struct {
	db      *pgxpool.Pool
	storage services.ObjectStorage
}

type HealthStatus struct {
	Status     string         `json:"status"`
	Database   DatabaseHealth `json:"database"`
	Storage    StorageHealth  `json:"storage"`
	Goroutines int            `json:"goroutines"`
	Memory     MemoryStats    `json:"memory"`
	System     SystemStats    `json:"system"`
}

type MemoryStats struct {
	AllocMB      float64 `json:"alloc_mb"`
	TotalAllocMB float64 `json:"total_alloc_mb"`
	SysMB        float64 `json:"sys_mb"`
	NumGC        uint32  `json:"num_gc"`
}

type DatabaseHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

type StorageHealth struct {
	Backend      string `json:"backend"`
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

type SystemStats struct {
	CPUPercent     float64 `json:"cpu_percent"`
	MemUsedPercent float64 `json:"mem_used_percent"`
	DiskFreeGB     float64 `json:"disk_free_gb"`
}

func NewHealthChecker(db *pgxpool.Pool, storage services.ObjectStorage) *HealthChecker {
	return &HealthChecker{db: db, storage: storage}
}

func (h *HealthChecker) CheckBasic() HealthStatus {
	dbHealth := h.checkDatabase()
	storageHealth := h.checkStorage()

	status := "healthy"
	if dbHealth.Status != "healthy" || storageHealth.Status != "healthy" {
		status = "unhealthy"
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return HealthStatus{
		Status:     status,
		Database:   dbHealth,
		Storage:    storageHealth,
		Goroutines: runtime.NumGoroutine(),
		Memory: MemoryStats{
			AllocMB:      float64(memStats.Alloc) / 1024 / 1024,
			TotalAllocMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			SysMB:        float64(memStats.Sys) / 1024 / 1024,
			NumGC:        memStats.NumGC,
		},
		System: h.systemStats(),
	}
}

func (h *HealthChecker) checkDatabase() DatabaseHealth {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return DatabaseHealth{Status: "unhealthy", ResponseTime: responseTime}
	}
	return DatabaseHealth{Status: "healthy", ResponseTime: responseTime}
}

// checkStorage probes the backend with a cheap existence check on a key
// that is never written. Reachability matters, not the answer.
func (h *HealthChecker) checkStorage() StorageHealth {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	start := time.Now()
	_, err := h.storage.Exists(ctx, "health/probe")
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return StorageHealth{Backend: h.storage.Name(), Status: "unhealthy", ResponseTime: responseTime}
	}
	return StorageHealth{Backend: h.storage.Name(), Status: "healthy", ResponseTime: responseTime}
}

func (h *HealthChecker) systemStats() SystemStats {
	stats := SystemStats{}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemUsedPercent = vm.UsedPercent
	}
	if du, err := disk.Usage("/"); err == nil {
		stats.DiskFreeGB = float64(du.Free) / 1024 / 1024 / 1024
	}

	return stats
}
