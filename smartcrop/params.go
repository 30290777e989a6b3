package smartcrop

// Params holds the planner tunables
type Params struct {
	// SampleInterval is the time in seconds between samples
	SampleInterval float64
	// MaxGap is the largest distance in seconds between a sample and the
	// timeline point used for it
	MaxGap float64
	// SpeechThreshold is the audio energy at which mouth openness starts to
	// count towards a face's score
	SpeechThreshold float64
	// MouthWeight scales mouth openness when speech is present
	MouthWeight float64
	// MinHold is the minimum time in seconds between switches
	MinHold float64
	// RequiredWins is the number of consecutive samples a challenger must
	// win before the crop switches to it
	RequiredWins int
	// SwitchBoost is the factor by which a challenger must beat the current
	// face's score
	SwitchBoost float64
	// StickyBonus is added to the current face's score
	StickyBonus float64
	// LostGrace is how long in seconds the current face is kept after it
	// was last visible
	LostGrace float64
	// MaxXShift is the largest center change inside one segment
	MaxXShift float64
	// GapTolerance is the shortest uncovered span that gets its own segment
	GapTolerance float64
	// MaxSpeed is the largest center change per second
	MaxSpeed float64
}

// DefaultParams returns the default planner parameters
func DefaultParams() Params {
	return Params{
		SampleInterval:  0.25,
		MaxGap:          0.6,
		SpeechThreshold: 0.18,
		MouthWeight:     1.5,
		MinHold:         1.0,
		RequiredWins:    3,
		SwitchBoost:     1.25,
		StickyBonus:     0.15,
		LostGrace:       1.2,
		MaxXShift:       0.12,
		GapTolerance:    0.03,
		MaxSpeed:        0.22,
	}
}
