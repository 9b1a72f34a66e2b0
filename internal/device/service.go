package device

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/havenhome/haven-core/internal/infrastructure/cache"
	"github.com/havenhome/haven-core/internal/infrastructure/logging"
	"github.com/havenhome/haven-core/internal/infrastructure/mqtt"
	"github.com/havenhome/haven-core/internal/infrastructure/telemetry"
)

// StatusNotifier receives device status-change events for live feeds.
// The WebSocket hub implements it; a nil notifier is ignored.
type StatusNotifier interface {
	NotifyDeviceStatus(deviceID, oldStatus, newStatus string)
}

// Service coordinates device state changes: persistence, audit logging,
// cache invalidation and best-effort event publication.
type Service struct {
	repo      Repository
	logs      LogRepository
	cache     cache.Store
	mqtt      *mqtt.Client
	telemetry *telemetry.Client
	notifier  StatusNotifier
	logger    *logging.Logger

	// Per-device locks serialize Toggle's read-and-flip.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a device service. mqtt, telemetry and notifier may
// be nil; events are then simply not published.
func NewService(repo Repository, logs LogRepository, store cache.Store,
	mqttClient *mqtt.Client, telemetryClient *telemetry.Client,
	notifier StatusNotifier, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:      repo,
		logs:      logs,
		cache:     store,
		mqtt:      mqttClient,
		telemetry: telemetryClient,
		notifier:  notifier,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}

// cacheKey builds the read-through cache key for a device lookup.
func cacheKey(id, ownerID string) string {
	return "device:" + ownerID + ":" + id
}

// Create registers a new simulated device and writes its "add" audit row.
func (s *Service) Create(ctx context.Context, d *Device) error {
	if err := s.repo.Create(ctx, d); err != nil {
		return err
	}

	log := &Log{
		DeviceID:    d.ID,
		Action:      ActionAdd,
		OldStatus:   "",
		NewStatus:   d.Status,
		Description: "device registered",
	}
	if err := s.logs.Create(ctx, log); err != nil {
		// The device exists; a missing add row is tolerable.
		s.logger.Warn("writing add log failed", "device_id", d.ID, "error", err)
	}
	return nil
}

// Get retrieves an active device by ID, read-through cached.
func (s *Service) Get(ctx context.Context, id, ownerID string) (*Device, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(cacheKey(id, ownerID)); ok {
			if d, ok := v.(*Device); ok {
				return d, nil
			}
		}
	}

	d, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(cacheKey(id, ownerID), d)
	}
	return d, nil
}

// List returns the caller's active devices.
func (s *Service) List(ctx context.Context, ownerID string) ([]Device, error) {
	return s.repo.List(ctx, ownerID)
}

// ListByRoom returns the caller's active devices in a room.
func (s *Service) ListByRoom(ctx context.Context, roomID, ownerID string) ([]Device, error) {
	return s.repo.ListByRoom(ctx, roomID, ownerID)
}

// Update modifies a device's mutable fields.
func (s *Service) Update(ctx context.Context, d *Device) error {
	if err := s.repo.Update(ctx, d); err != nil {
		return err
	}
	s.invalidate(d.ID, d.OwnerID)
	return nil
}

// Delete soft-deletes a device.
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}
	s.invalidate(id, ownerID)
	return nil
}

// GetStatus returns a device's current status and online flag.
func (s *Service) GetStatus(ctx context.Context, id, ownerID string) (*StatusInfo, error) {
	d, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	return &StatusInfo{Status: d.Status, IsOnline: d.IsOnline}, nil
}

// UpdateStatus writes a device's status directly. Unlike ApplyState it
// raises ErrNotFound for a missing or foreign device, does not
// reinstate soft-deleted devices, and also carries the online flag.
// Exactly one audit row is written iff the status actually changed.
func (s *Service) UpdateStatus(ctx context.Context, id, ownerID string, info StatusInfo) (*StatusInfo, error) {
	if !IsValidStatus(info.Status) {
		return nil, ErrInvalidStatus
	}

	d, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	oldStatus := d.Status

	if err := s.repo.SetStatus(ctx, id, ownerID, info.Status, info.IsOnline); err != nil {
		return nil, err
	}
	s.invalidate(id, ownerID)

	if oldStatus != info.Status {
		s.recordStatusChange(ctx, id, oldStatus, info.Status,
			fmt.Sprintf("status changed: %s -> %s", oldStatus, info.Status))
	}

	return &info, nil
}

// ApplyState is the scene-execution write path. It reports success as a
// boolean: false means the device is missing or owned by someone else,
// never an error the caller must branch on. A soft-deleted device is
// reinstated. Writing the same status again succeeds without an audit
// row. targetValue rides along in the audit description only; the
// stored status is the target state.
func (s *Service) ApplyState(ctx context.Context, deviceID, targetState, targetValue, callerID string) bool {
	if !IsValidStatus(targetState) {
		return false
	}

	d, err := s.repo.GetByIDAnyState(ctx, deviceID, callerID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("loading device for state apply failed", "device_id", deviceID, "error", err)
		}
		return false
	}
	oldStatus := d.Status

	if err := s.repo.ApplyState(ctx, deviceID, callerID, targetState); err != nil {
		s.logger.Warn("applying device state failed", "device_id", deviceID, "error", err)
		return false
	}
	s.invalidate(deviceID, callerID)

	if oldStatus != targetState {
		desc := fmt.Sprintf("scene set status: %s -> %s", oldStatus, targetState)
		if targetValue != "" {
			desc += fmt.Sprintf(" (value %s)", targetValue)
		}
		s.recordStatusChange(ctx, deviceID, oldStatus, targetState, desc)
	}

	return true
}

// Toggle flips a device between ON and OFF. Any status other than ON
// toggles to ON. The read and the conditional write run under a
// per-device lock so concurrent toggles serialize instead of cancelling
// each other out; the conditional write additionally guards against
// writers that bypass the lock.
func (s *Service) Toggle(ctx context.Context, id, ownerID string) (*StatusInfo, error) {
	lock := s.deviceLock(id)
	lock.Lock()
	defer lock.Unlock()

	d, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	next := StatusOn
	if d.Status == StatusOn {
		next = StatusOff
	}

	swapped, err := s.repo.CompareAndSwapStatus(ctx, id, ownerID, d.Status, next)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, ErrConflict
	}
	s.invalidate(id, ownerID)

	s.recordStatusChange(ctx, id, d.Status, next,
		fmt.Sprintf("toggled: %s -> %s", d.Status, next))

	return &StatusInfo{Status: next, IsOnline: d.IsOnline}, nil
}

// Logs returns a device's audit trail, newest first. The device lookup
// is owner-scoped; the log table itself has no owner column.
func (s *Service) Logs(ctx context.Context, id, ownerID string, limit int) ([]Log, error) {
	if _, err := s.repo.GetByID(ctx, id, ownerID); err != nil {
		return nil, err
	}
	return s.logs.ListByDevice(ctx, id, limit)
}

// recordStatusChange writes the audit row and publishes best-effort
// events. Event failures are logged and swallowed.
func (s *Service) recordStatusChange(ctx context.Context, deviceID, oldStatus, newStatus, description string) {
	log := &Log{
		DeviceID:    deviceID,
		Action:      ActionStatusChange,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		Description: description,
	}
	if err := s.logs.Create(ctx, log); err != nil {
		s.logger.Warn("writing status log failed", "device_id", deviceID, "error", err)
	}

	if err := s.mqtt.PublishJSON(mqtt.DeviceStatusTopic(deviceID), map[string]string{
		"device_id":  deviceID,
		"old_status": oldStatus,
		"new_status": newStatus,
		"at":         time.Now().UTC().Format(time.RFC3339),
	}, false); err != nil && !errors.Is(err, mqtt.ErrNotConnected) {
		s.logger.Warn("publishing status event failed", "device_id", deviceID, "error", err)
	}

	s.telemetry.RecordStateChange(deviceID, oldStatus, newStatus)

	if s.notifier != nil {
		s.notifier.NotifyDeviceStatus(deviceID, oldStatus, newStatus)
	}
}

func (s *Service) invalidate(id, ownerID string) {
	if s.cache != nil {
		s.cache.Delete(cacheKey(id, ownerID))
	}
}

// deviceLock returns the mutex serializing toggles for one device.
func (s *Service) deviceLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}
