package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"startupdash/pkg/contracts/domain"
)

// SessionCounter reports the number of open live sessions.
type SessionCounter interface {
	SessionCount() int
}

// ArtifactCounter reports the number of prepared exports held.
type ArtifactCounter interface {
	PendingArtifacts() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	dataset   *domain.Dataset
	sessions  SessionCounter
	artifacts ArtifactCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a health service. Sessions and artifacts may be nil.
func NewHealthService(version, buildTime string, ds *domain.Dataset, sessions SessionCounter, artifacts ArtifactCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		dataset:   ds,
		sessions:  sessions,
		artifacts: artifacts,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready once the dataset is loaded
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]interface{}{
			"dataset":   hs.checkDatasetHealth(),
			"websocket": hs.checkWebSocketHealth(),
			"exports":   hs.checkExportHealth(),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

func (hs *HealthService) checkDatasetHealth() ServiceHealth {
	if hs.dataset == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: ErrDatasetNotLoaded.Error(),
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: hs.dataset.Source,
		Uptime:  time.Since(hs.dataset.LoadedAt).Round(time.Second).String(),
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	sh := ServiceHealth{
		Status: "ready",
		Uptime: time.Since(hs.startTime).Round(time.Second).String(),
	}
	if hs.sessions != nil {
		sh.Message = fmt.Sprintf("%d live sessions", hs.sessions.SessionCount())
	}
	return sh
}

func (hs *HealthService) checkExportHealth() ServiceHealth {
	sh := ServiceHealth{Status: "ready"}
	if hs.artifacts != nil {
		sh.Message = fmt.Sprintf("%d pending artifacts", hs.artifacts.PendingArtifacts())
	}
	return sh
}
