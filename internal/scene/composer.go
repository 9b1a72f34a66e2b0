package scene

import (
	"context"

	"github.com/havenhome/haven-core/internal/device"
	"github.com/havenhome/haven-core/internal/infrastructure/logging"
)

// Composer validates and persists scenes. All binding validation is
// eager: a scene with one bad device reference is rejected whole.
type Composer struct {
	repo    Repository
	devices device.Repository
	logger  *logging.Logger
}

// NewComposer creates a scene composer.
func NewComposer(repo Repository, devices device.Repository, logger *logging.Logger) *Composer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Composer{repo: repo, devices: devices, logger: logger}
}

// validate checks the scene fields and binding payloads. Device
// ownership is checked later, inside the repository transaction.
func validate(s *Scene, bindings []Binding) error {
	if !IsValidName(s.Name) {
		return ErrInvalidName
	}
	for i := range bindings {
		if bindings[i].DeviceID == "" || bindings[i].TargetState == "" {
			return ErrInvalidBinding
		}
	}
	return nil
}

// Create persists a new scene with its bindings. Nothing persists if
// any binding references a device the caller does not own.
func (c *Composer) Create(ctx context.Context, s *Scene, bindings []Binding) (*Scene, error) {
	if err := validate(s, bindings); err != nil {
		return nil, err
	}

	if err := c.repo.CreateWithBindings(ctx, s, bindings); err != nil {
		return nil, err
	}

	c.logger.Info("scene created", "scene_id", s.ID, "owner_id", s.OwnerID, "bindings", len(bindings))
	return c.repo.GetByID(ctx, s.ID, s.OwnerID)
}

// Update modifies a scene and replaces its entire binding set. An empty
// set leaves the scene with zero bindings.
func (c *Composer) Update(ctx context.Context, s *Scene, bindings []Binding) (*Scene, error) {
	if err := validate(s, bindings); err != nil {
		return nil, err
	}

	if err := c.repo.ReplaceWithBindings(ctx, s, bindings); err != nil {
		return nil, err
	}

	c.logger.Info("scene updated", "scene_id", s.ID, "owner_id", s.OwnerID, "bindings", len(bindings))
	return c.repo.GetByID(ctx, s.ID, s.OwnerID)
}

// Get retrieves a scene with its bindings, scoped to the caller.
func (c *Composer) Get(ctx context.Context, id, callerID string) (*Scene, error) {
	return c.repo.GetByID(ctx, id, callerID)
}

// List returns the caller's scenes ordered by position.
func (c *Composer) List(ctx context.Context, callerID string) ([]Scene, error) {
	return c.repo.List(ctx, callerID)
}

// Delete soft-deletes a scene, scoped to the caller.
func (c *Composer) Delete(ctx context.Context, id, callerID string) error {
	if err := c.repo.Delete(ctx, id, callerID); err != nil {
		return err
	}
	c.logger.Info("scene deleted", "scene_id", id, "owner_id", callerID)
	return nil
}

// ListDevices returns the caller's devices referenced by a scene's
// bindings.
func (c *Composer) ListDevices(ctx context.Context, sceneID, callerID string) ([]device.Device, error) {
	s, err := c.repo.GetByID(ctx, sceneID, callerID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(s.Bindings))
	for _, b := range s.Bindings {
		ids = append(ids, b.DeviceID)
	}
	return c.devices.ListByIDs(ctx, ids, callerID)
}

// CreateFromTemplate composes a scene from a preset, binding every
// caller device the template has a rule for. Devices without a rule are
// skipped silently.
func (c *Composer) CreateFromTemplate(ctx context.Context, preset, callerID string) (*Scene, error) {
	tpl, ok := TemplateByName(preset)
	if !ok {
		return nil, ErrUnknownTemplate
	}

	devices, err := c.devices.List(ctx, callerID)
	if err != nil {
		return nil, err
	}

	s := &Scene{
		OwnerID:     callerID,
		Name:        tpl.Name,
		Description: tpl.Description,
		Icon:        tpl.Icon,
	}
	return c.Create(ctx, s, BindingsFromTemplate(tpl, devices))
}
