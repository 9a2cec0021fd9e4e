// Package debugview turns collision shapes into line segments for a
// wireframe viewer and keeps the viewer preferences.
package debugview

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/ccd/internal/core/observability/log"
)

const (
	prefsObject   = "debugview"
	prefsProperty = "preferences"
)

var ErrInvalidColor = errors.New("invalid color")

// Preferences select what the viewer draws. Colors are "#rrggbb" strings.
type Preferences struct {
	ShowShapes bool   `json:"show_shapes" yaml:"show_shapes"`
	ShowSwept  bool   `json:"show_swept" yaml:"show_swept"`
	ShapeColor string `json:"shape_color" yaml:"shape_color"`
	SweptColor string `json:"swept_color" yaml:"swept_color"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		ShowShapes: true,
		ShapeColor: "#00ffff",
		SweptColor: "#00ff00",
	}
}

func (p Preferences) Validate() error {
	var errs []error
	if !validColor(p.ShapeColor) {
		errs = append(errs, fmt.Errorf("%w: shape_color %q", ErrInvalidColor, p.ShapeColor))
	}
	if !validColor(p.SweptColor) {
		errs = append(errs, fmt.Errorf("%w: swept_color %q", ErrInvalidColor, p.SweptColor))
	}
	return errors.Join(errs...)
}

func validColor(c string) bool {
	if len(c) != 7 || c[0] != '#' {
		return false
	}
	return strings.Trim(strings.ToLower(c[1:]), "0123456789abcdef") == ""
}

// Store keeps preferences in the per-user data directory. A store without a
// gdata manager only remembers them in memory.
type Store struct {
	data   *gdata.Manager
	prefs  Preferences
	logger log.Log
}

// OpenStore opens the data directory of appName. Failing to open it is not
// fatal; the store then works in memory only.
func OpenStore(appName string, logger log.Log) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.Named("debugview")

	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		logger.Warn("preferences will not be persisted", log.String("app", appName), log.Error(err))
		m = nil
	}
	return NewStore(m, logger)
}

// NewStore loads saved preferences from m, falling back to the defaults.
func NewStore(m *gdata.Manager, logger log.Log) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Store{data: m, prefs: DefaultPreferences(), logger: logger}
	if err := s.Load(); err != nil {
		s.logger.Warn("using default preferences", log.Error(err))
	}
	return s
}

func (s *Store) Load() error {
	s.prefs = DefaultPreferences()
	if s.data == nil || !s.data.ObjectPropExists(prefsObject, prefsProperty) {
		return nil
	}

	raw, err := s.data.LoadObjectProp(prefsObject, prefsProperty)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	prefs := DefaultPreferences()
	if err = yaml.Unmarshal(raw, &prefs); err != nil {
		return fmt.Errorf("decode preferences: %w", err)
	}
	if err = prefs.Validate(); err != nil {
		return err
	}
	s.prefs = prefs
	return nil
}

func (s *Store) Save() error {
	if s.data == nil {
		return nil
	}
	raw, err := yaml.Marshal(s.prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err = s.data.SaveObjectProp(prefsObject, prefsProperty, raw); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

func (s *Store) Preferences() Preferences {
	return s.prefs
}

// Set replaces the preferences in memory; call Save to persist them.
func (s *Store) Set(p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.prefs = p
	return nil
}

// Persistent reports whether Save writes to disk.
func (s *Store) Persistent() bool {
	return s.data != nil
}
