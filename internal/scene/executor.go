package scene

import (
	"context"
	"errors"
	"time"

	"github.com/havenhome/haven-core/internal/device"
	"github.com/havenhome/haven-core/internal/infrastructure/logging"
	"github.com/havenhome/haven-core/internal/infrastructure/mqtt"
	"github.com/havenhome/haven-core/internal/infrastructure/telemetry"
)

// Executor runs scenes. Per-binding failures are absorbed: a missing or
// misbehaving device marks its own result and the walk continues, so
// Execute only errors when the scene itself cannot be loaded.
type Executor struct {
	repo      Repository
	devices   *device.Service
	mqtt      *mqtt.Client
	telemetry *telemetry.Client
	logger    *logging.Logger
}

// NewExecutor creates a scene executor. mqtt and telemetry may be nil.
func NewExecutor(repo Repository, devices *device.Service,
	mqttClient *mqtt.Client, telemetryClient *telemetry.Client,
	logger *logging.Logger) *Executor {
	if logger == nil {
		logger = logging.Default()
	}
	return &Executor{
		repo:      repo,
		devices:   devices,
		mqtt:      mqttClient,
		telemetry: telemetryClient,
		logger:    logger,
	}
}

// Execute applies a scene's bindings in stored position order. The
// scene load is owner-scoped and is the only failure path; every
// binding outcome, good or bad, lands in the summary.
func (e *Executor) Execute(ctx context.Context, sceneID, callerID string) (*ExecutionSummary, error) {
	s, err := e.repo.GetByID(ctx, sceneID, callerID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	summary := &ExecutionSummary{
		SceneID: s.ID,
		Total:   len(s.Bindings),
		Results: make([]BindingResult, 0, len(s.Bindings)),
	}

	for _, b := range s.Bindings {
		applied := e.devices.ApplyState(ctx, b.DeviceID, b.TargetState, b.TargetValue, callerID)
		if applied {
			summary.Succeeded++
		} else {
			summary.Failed++
			e.logger.Warn("scene binding not applied",
				"scene_id", s.ID, "device_id", b.DeviceID, "target_state", b.TargetState)
		}
		summary.Results = append(summary.Results, BindingResult{
			DeviceID:    b.DeviceID,
			TargetState: b.TargetState,
			Applied:     applied,
		})
	}
	summary.AllApplied = summary.Failed == 0

	duration := time.Since(start)
	e.logger.Info("scene executed",
		"scene_id", s.ID, "total", summary.Total,
		"succeeded", summary.Succeeded, "failed", summary.Failed,
		"duration", duration)

	if err := e.mqtt.PublishJSON(mqtt.SceneExecutedTopic(s.ID), summary, false); err != nil && !errors.Is(err, mqtt.ErrNotConnected) {
		e.logger.Warn("publishing scene event failed", "scene_id", s.ID, "error", err)
	}
	e.telemetry.RecordSceneExecution(s.ID, summary.Total, summary.Succeeded, summary.Failed, duration)

	return summary, nil
}

// Schedule would register a timed execution of a scene. The scene load
// keeps owner scoping intact (a foreign scene is NotFound, not
// NotImplemented); past that, scheduling is deliberately unimplemented.
func (e *Executor) Schedule(ctx context.Context, sceneID, callerID string) error {
	if _, err := e.repo.GetByID(ctx, sceneID, callerID); err != nil {
		return err
	}
	return ErrNotImplemented
}
