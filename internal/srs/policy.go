package srs

import "fmt"

// Policy holds the scheduling constants. Every tuning knob lives in this one
// table so configuration can override it in a single place instead of
// constants being scattered through the scheduler.
type Policy struct {
	InitialEase            float64 `koanf:"initial_ease"`
	MinEase                float64 `koanf:"min_ease"`
	AgainEasePenalty       float64 `koanf:"again_ease_penalty"`
	HardEasePenalty        float64 `koanf:"hard_ease_penalty"`
	EasyEaseBonus          float64 `koanf:"easy_ease_bonus"`
	EasyIntervalBonus      float64 `koanf:"easy_interval_bonus"`
	HardIntervalDays       int     `koanf:"hard_interval_days"`
	FirstGoodIntervalDays  int     `koanf:"first_good_interval_days"`
	SecondGoodIntervalDays int     `koanf:"second_good_interval_days"`
	MatureIntervalDays     int     `koanf:"mature_interval_days"`
}

// DefaultPolicy returns the default scheduling table: the four qualitative
// bands "relearn now / 1 day / several days / a week or more", an ease floor
// of 1.3, and the 21-day maturity threshold.
func DefaultPolicy() Policy {
	return Policy{
		InitialEase:            2.5,
		MinEase:                1.3,
		AgainEasePenalty:       0.20,
		HardEasePenalty:        0.15,
		EasyEaseBonus:          0.15,
		EasyIntervalBonus:      1.3,
		HardIntervalDays:       1,
		FirstGoodIntervalDays:  3,
		SecondGoodIntervalDays: 6,
		MatureIntervalDays:     21,
	}
}

// Validate rejects tables that would break the scheduler's invariants.
func (p Policy) Validate() error {
	switch {
	case p.MinEase <= 0:
		return fmt.Errorf("%w: min ease %.2f must be positive", ErrInvalidPolicy, p.MinEase)
	case p.InitialEase < p.MinEase:
		return fmt.Errorf("%w: initial ease %.2f below floor %.2f", ErrInvalidPolicy, p.InitialEase, p.MinEase)
	case p.AgainEasePenalty < 0 || p.HardEasePenalty < 0 || p.EasyEaseBonus < 0:
		return fmt.Errorf("%w: ease deltas must not be negative", ErrInvalidPolicy)
	case p.EasyIntervalBonus < 1:
		return fmt.Errorf("%w: easy interval bonus %.2f must be at least 1", ErrInvalidPolicy, p.EasyIntervalBonus)
	case p.HardIntervalDays < 1:
		return fmt.Errorf("%w: hard interval %d must be at least 1 day", ErrInvalidPolicy, p.HardIntervalDays)
	case p.FirstGoodIntervalDays < 1 || p.SecondGoodIntervalDays <= p.FirstGoodIntervalDays:
		return fmt.Errorf("%w: good intervals %d/%d must be increasing and at least 1 day",
			ErrInvalidPolicy, p.FirstGoodIntervalDays, p.SecondGoodIntervalDays)
	case p.MatureIntervalDays < 1:
		return fmt.Errorf("%w: maturity threshold %d must be at least 1 day", ErrInvalidPolicy, p.MatureIntervalDays)
	}
	return nil
}
