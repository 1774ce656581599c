package plugin

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/repository"
)

var (
	// ErrPluginNotFound indicates the subtype has no plugin with that name.
	ErrPluginNotFound = errors.New("plugin not found")
	// ErrUnknownSubtype indicates the subtype is neither assignsubmission nor assignfeedback.
	ErrUnknownSubtype = errors.New("unknown plugin subtype")
	// ErrInvalidDirection indicates a move that is neither up nor down.
	ErrInvalidDirection = errors.New("invalid move direction")
	// ErrUnknownAction indicates an admin action the registry does not handle.
	ErrUnknownAction = errors.New("unknown plugin action")
)

// Move directions.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// Admin actions accepted by Execute.
const (
	ActionView     = "view"
	ActionHide     = "hide"
	ActionShow     = "show"
	ActionMoveUp   = "moveup"
	ActionMoveDown = "movedown"
)

// Registry manages the installed plugins of both subtypes and binds them to assignments.
type Registry struct {
	descriptors repository.PluginDescriptorRepository
	configs     repository.PluginConfigRepository
	catalog     *Catalog
	logger      zerolog.Logger
}

// NewRegistry builds a registry over the descriptor and config repositories.
func NewRegistry(descriptors repository.PluginDescriptorRepository, configs repository.PluginConfigRepository, catalog *Catalog, logger zerolog.Logger) *Registry {
	if catalog == nil {
		catalog = NewCatalog()
	}
	return &Registry{
		descriptors: descriptors,
		configs:     configs,
		catalog:     catalog,
		logger:      logger.With().Str("component", "plugin_registry").Logger(),
	}
}

// List returns the installed plugins of subtype in their configured order.
func (r *Registry) List(ctx context.Context, subtype string) ([]models.PluginDescriptor, error) {
	if !ValidSubtype(subtype) {
		return nil, ErrUnknownSubtype
	}
	return r.descriptors.ListBySubtype(ctx, subtype)
}

// Move swaps plugin with its neighbour in the given direction. Moving the first
// plugin up or the last one down leaves the order untouched.
func (r *Registry) Move(ctx context.Context, subtype, plugin, direction string) ([]models.PluginDescriptor, error) {
	if direction != DirectionUp && direction != DirectionDown {
		return nil, ErrInvalidDirection
	}

	list, err := r.List(ctx, subtype)
	if err != nil {
		return nil, err
	}

	index := indexOf(list, plugin)
	if index < 0 {
		return nil, ErrPluginNotFound
	}

	target := index - 1
	if direction == DirectionDown {
		target = index + 1
	}
	if target < 0 || target >= len(list) {
		return list, nil
	}

	if err := r.renumber(ctx, list); err != nil {
		return nil, err
	}

	if err := r.descriptors.SwapOrder(ctx, &list[index], &list[target]); err != nil {
		return nil, fmt.Errorf("swap plugin order: %w", err)
	}
	list[index], list[target] = list[target], list[index]

	r.logger.Info().
		Str("subtype", subtype).
		Str("plugin", plugin).
		Str("direction", direction).
		Msg("plugin moved")

	return list, nil
}

// renumber rewrites sort orders as 0..n-1 when they are not strictly increasing,
// so a swap always changes the visible order.
func (r *Registry) renumber(ctx context.Context, list []models.PluginDescriptor) error {
	ordered := true
	for i := range list {
		if list[i].SortOrder != i {
			ordered = false
			break
		}
	}
	if ordered {
		return nil
	}

	for i := range list {
		if list[i].SortOrder == i {
			continue
		}
		list[i].SortOrder = i
		if err := r.descriptors.Update(ctx, &list[i]); err != nil {
			return fmt.Errorf("renumber plugins: %w", err)
		}
	}
	return nil
}

// IsEnabled reports whether the plugin is installed and not hidden.
func (r *Registry) IsEnabled(ctx context.Context, subtype, plugin string) (bool, error) {
	descriptor, err := r.get(ctx, subtype, plugin)
	if err != nil {
		return false, err
	}
	return !descriptor.Hidden, nil
}

// Hide disables a plugin site-wide.
func (r *Registry) Hide(ctx context.Context, subtype, plugin string) error {
	return r.setHidden(ctx, subtype, plugin, true)
}

// Show re-enables a hidden plugin.
func (r *Registry) Show(ctx context.Context, subtype, plugin string) error {
	return r.setHidden(ctx, subtype, plugin, false)
}

func (r *Registry) setHidden(ctx context.Context, subtype, plugin string, hidden bool) error {
	descriptor, err := r.get(ctx, subtype, plugin)
	if err != nil {
		return err
	}
	if descriptor.Hidden == hidden {
		return nil
	}

	descriptor.Hidden = hidden
	if err := r.descriptors.Update(ctx, &descriptor); err != nil {
		return err
	}

	r.logger.Info().Str("subtype", subtype).Str("plugin", plugin).Bool("hidden", hidden).Msg("plugin visibility changed")
	return nil
}

// Execute applies an admin action and returns the resulting plugin list. An empty
// action or "view" only lists.
func (r *Registry) Execute(ctx context.Context, subtype, action, plugin string) ([]models.PluginDescriptor, error) {
	if !ValidSubtype(subtype) {
		return nil, ErrUnknownSubtype
	}

	switch action {
	case "", ActionView:
	case ActionHide:
		if err := r.Hide(ctx, subtype, plugin); err != nil {
			return nil, err
		}
	case ActionShow:
		if err := r.Show(ctx, subtype, plugin); err != nil {
			return nil, err
		}
	case ActionMoveUp:
		if _, err := r.Move(ctx, subtype, plugin, DirectionUp); err != nil {
			return nil, err
		}
	case ActionMoveDown:
		if _, err := r.Move(ctx, subtype, plugin, DirectionDown); err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnknownAction
	}

	return r.List(ctx, subtype)
}

// Install registers every catalog plugin that is not installed yet, appending it to
// the end of its subtype, then runs the install hooks of the new plugins. It returns
// the newly installed descriptors.
func (r *Registry) Install(ctx context.Context) ([]models.PluginDescriptor, error) {
	var (
		installed []models.PluginDescriptor
		hooks     []InstallHook
	)

	for _, subtype := range Subtypes() {
		existing, err := r.descriptors.ListBySubtype(ctx, subtype)
		if err != nil {
			return nil, err
		}

		next := 0
		for _, d := range existing {
			if d.SortOrder >= next {
				next = d.SortOrder + 1
			}
		}

		for _, kind := range r.catalog.kinds(subtype) {
			if indexOf(existing, kind.typ) >= 0 {
				continue
			}

			descriptor := models.PluginDescriptor{
				Subtype:   subtype,
				Plugin:    kind.typ,
				Name:      kind.name,
				SortOrder: next,
			}
			if err := r.descriptors.Create(ctx, &descriptor); err != nil {
				return nil, fmt.Errorf("install %s_%s: %w", subtype, kind.typ, err)
			}
			next++

			existing = append(existing, descriptor)
			installed = append(installed, descriptor)
			if kind.install != nil {
				hooks = append(hooks, kind.install)
			}
		}
	}

	for _, hook := range hooks {
		if err := hook(ctx, r); err != nil {
			return nil, fmt.Errorf("plugin install hook: %w", err)
		}
	}

	if len(installed) > 0 {
		r.logger.Info().Int("count", len(installed)).Msg("plugins installed")
	}

	return installed, nil
}

// SubmissionPlugins returns the submission plugins bound to assignment, in order.
// Hidden plugins are included; callers filter with IsEnabled and IsVisible.
func (r *Registry) SubmissionPlugins(ctx context.Context, assignment models.Assignment) ([]SubmissionPlugin, error) {
	return bindAll(ctx, r, assignment, models.PluginSubtypeSubmission, r.catalog.submission)
}

// FeedbackPlugins returns the feedback plugins bound to assignment, in order.
func (r *Registry) FeedbackPlugins(ctx context.Context, assignment models.Assignment) ([]FeedbackPlugin, error) {
	return bindAll(ctx, r, assignment, models.PluginSubtypeFeedback, r.catalog.feedback)
}

// SubmissionPlugin returns one bound submission plugin.
func (r *Registry) SubmissionPlugin(ctx context.Context, assignment models.Assignment, plugin string) (SubmissionPlugin, error) {
	return find(ctx, r, assignment, models.PluginSubtypeSubmission, plugin, r.catalog.submission)
}

// FeedbackPlugin returns one bound feedback plugin.
func (r *Registry) FeedbackPlugin(ctx context.Context, assignment models.Assignment, plugin string) (FeedbackPlugin, error) {
	return find(ctx, r, assignment, models.PluginSubtypeFeedback, plugin, r.catalog.feedback)
}

func (r *Registry) get(ctx context.Context, subtype, plugin string) (models.PluginDescriptor, error) {
	if !ValidSubtype(subtype) {
		return models.PluginDescriptor{}, ErrUnknownSubtype
	}
	descriptor, err := r.descriptors.Get(ctx, subtype, plugin)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PluginDescriptor{}, ErrPluginNotFound
		}
		return models.PluginDescriptor{}, err
	}
	return descriptor, nil
}

func bindAll[T any](ctx context.Context, r *Registry, assignment models.Assignment, subtype string, kinds []Kind[T]) ([]Plugin[T], error) {
	descriptors, err := r.descriptors.ListBySubtype(ctx, subtype)
	if err != nil {
		return nil, err
	}

	configs, err := r.configs.ListByAssignment(ctx, assignment.ID)
	if err != nil {
		return nil, err
	}
	byPlugin := make(map[string]models.AssignmentPluginConfig, len(configs))
	for _, cfg := range configs {
		if cfg.Subtype == subtype {
			byPlugin[cfg.Plugin] = cfg
		}
	}

	plugins := make([]Plugin[T], 0, len(descriptors))
	for _, descriptor := range descriptors {
		kind, ok := kindFor(kinds, descriptor.Plugin)
		if !ok {
			r.logger.Warn().Str("subtype", subtype).Str("plugin", descriptor.Plugin).Msg("installed plugin has no implementation")
			continue
		}
		cfg, ok := byPlugin[descriptor.Plugin]
		if !ok {
			cfg = models.AssignmentPluginConfig{AssignmentID: assignment.ID, Subtype: subtype, Plugin: descriptor.Plugin}
		}
		plugins = append(plugins, kind.Bind(Binding{Assignment: assignment, Descriptor: descriptor, Config: cfg}))
	}
	return plugins, nil
}

func find[T any](ctx context.Context, r *Registry, assignment models.Assignment, subtype, plugin string, kinds []Kind[T]) (Plugin[T], error) {
	plugins, err := bindAll(ctx, r, assignment, subtype, kinds)
	if err != nil {
		return nil, err
	}
	for _, p := range plugins {
		if p.Type() == plugin {
			return p, nil
		}
	}
	return nil, ErrPluginNotFound
}

func kindFor[T any](kinds []Kind[T], typ string) (Kind[T], bool) {
	for _, k := range kinds {
		if k.Type == typ {
			return k, true
		}
	}
	return Kind[T]{}, false
}

func indexOf(list []models.PluginDescriptor, plugin string) int {
	for i := range list {
		if list[i].Plugin == plugin {
			return i
		}
	}
	return -1
}
