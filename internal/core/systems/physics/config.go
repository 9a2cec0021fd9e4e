package physics

import (
	"errors"
	"fmt"
	"math"
)

// SweptConfig holds the tunable thresholds of the swept-volume heuristics.
type SweptConfig struct {
	// Enabled switches swept volumes off entirely; the current shape is used.
	Enabled bool `json:"enabled" yaml:"enabled"`
	// MinMovement is the displacement under which an object counts as
	// stationary and keeps its current shape.
	MinMovement float64 `json:"min_movement" yaml:"min_movement"`

	CapsuleStaticAngleDeg      float64 `json:"capsule_static_angle_deg" yaml:"capsule_static_angle_deg"`
	CapsuleTranslationAngleDeg float64 `json:"capsule_translation_angle_deg" yaml:"capsule_translation_angle_deg"`
	CapsuleRotationAngleDeg    float64 `json:"capsule_rotation_angle_deg" yaml:"capsule_rotation_angle_deg"`
	// CapsuleRadiusTolerance is the radius change, relative to the average
	// radius, still treated as near-static.
	CapsuleRadiusTolerance float64 `json:"capsule_radius_tolerance" yaml:"capsule_radius_tolerance"`
	// TranslationParallelDot is the |cos| above which the motion is considered
	// parallel to the capsule and the capsule direction becomes the primary axis.
	TranslationParallelDot float64 `json:"translation_parallel_dot" yaml:"translation_parallel_dot"`

	BoxFastPathAngleDeg float64 `json:"box_fast_path_angle_deg" yaml:"box_fast_path_angle_deg"`
	BoxFastPathDistance float64 `json:"box_fast_path_distance" yaml:"box_fast_path_distance"`
}

func DefaultSweptConfig() SweptConfig {
	return SweptConfig{
		Enabled:                    true,
		MinMovement:                1e-3,
		CapsuleStaticAngleDeg:      5,
		CapsuleTranslationAngleDeg: 15,
		CapsuleRotationAngleDeg:    30,
		CapsuleRadiusTolerance:     0.1,
		TranslationParallelDot:     0.8,
		BoxFastPathAngleDeg:        2,
		BoxFastPathDistance:        0.05,
	}
}

// Validate reports every out-of-range field.
func (c SweptConfig) Validate() error {
	var errs []error
	nonNegative := func(name string, v float64) {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must be a finite value >= 0, got %v", name, v))
		}
	}
	angle := func(name string, v float64) {
		if v < 0 || v > 90 || math.IsNaN(v) {
			errs = append(errs, fmt.Errorf("%s must be within [0, 90], got %v", name, v))
		}
	}

	nonNegative("min_movement", c.MinMovement)
	angle("capsule_static_angle_deg", c.CapsuleStaticAngleDeg)
	angle("capsule_translation_angle_deg", c.CapsuleTranslationAngleDeg)
	angle("capsule_rotation_angle_deg", c.CapsuleRotationAngleDeg)
	nonNegative("capsule_radius_tolerance", c.CapsuleRadiusTolerance)
	if c.TranslationParallelDot < 0 || c.TranslationParallelDot > 1 {
		errs = append(errs, fmt.Errorf("translation_parallel_dot must be within [0, 1], got %v", c.TranslationParallelDot))
	}
	angle("box_fast_path_angle_deg", c.BoxFastPathAngleDeg)
	nonNegative("box_fast_path_distance", c.BoxFastPathDistance)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
