package domain

import "slices"

// Filter is an audio filter in the node's wire shape. Only set fields apply.
type Filter struct {
	Timescale *Timescale      `json:"timescale,omitempty"`
	Rotation  *Rotation       `json:"rotation,omitempty"`
	LowPass   *LowPass        `json:"lowPass,omitempty"`
	Tremolo   *Tremolo        `json:"tremolo,omitempty"`
	Karaoke   *Karaoke        `json:"karaoke,omitempty"`
	Equalizer []EqualizerBand `json:"equalizer,omitempty"`
}

type Timescale struct {
	Speed float64 `json:"speed"`
	Pitch float64 `json:"pitch"`
	Rate  float64 `json:"rate"`
}

type Rotation struct {
	RotationHz float64 `json:"rotationHz"`
}

type LowPass struct {
	Smoothing float64 `json:"smoothing"`
}

type Tremolo struct {
	Frequency float64 `json:"frequency"`
	Depth     float64 `json:"depth"`
}

type Karaoke struct {
	Level       float64 `json:"level"`
	MonoLevel   float64 `json:"monoLevel"`
	FilterBand  float64 `json:"filterBand"`
	FilterWidth float64 `json:"filterWidth"`
}

// EqualizerBand sets the gain of one of the 15 equalizer bands (0-14).
type EqualizerBand struct {
	Band int     `json:"band"`
	Gain float64 `json:"gain"`
}

// Merge layers other on top of f. Sub-filters set in other win; equalizer
// bands are combined with other taking precedence per band.
func (f Filter) Merge(other Filter) Filter {
	merged := f
	if other.Timescale != nil {
		merged.Timescale = other.Timescale
	}
	if other.Rotation != nil {
		merged.Rotation = other.Rotation
	}
	if other.LowPass != nil {
		merged.LowPass = other.LowPass
	}
	if other.Tremolo != nil {
		merged.Tremolo = other.Tremolo
	}
	if other.Karaoke != nil {
		merged.Karaoke = other.Karaoke
	}
	if len(other.Equalizer) > 0 {
		bands := make(map[int]float64, len(f.Equalizer)+len(other.Equalizer))
		for _, b := range f.Equalizer {
			bands[b.Band] = b.Gain
		}
		for _, b := range other.Equalizer {
			bands[b.Band] = b.Gain
		}
		merged.Equalizer = make([]EqualizerBand, 0, len(bands))
		for band, gain := range bands {
			merged.Equalizer = append(merged.Equalizer, EqualizerBand{Band: band, Gain: gain})
		}
		slices.SortFunc(merged.Equalizer, func(a, b EqualizerBand) int {
			return a.Band - b.Band
		})
	}
	return merged
}

// Preset filter labels.
const (
	FilterNightcore = "nightcore"
	FilterVaporwave = "vaporwave"
	Filter8D        = "8d"
	FilterBassBoost = "bassboost"
	FilterSoft      = "soft"
	FilterTremolo   = "tremolo"
	FilterKaraoke   = "karaoke"
)

var presets = map[string]Filter{
	FilterNightcore: {Timescale: &Timescale{Speed: 1.2, Pitch: 1.2, Rate: 1.0}},
	FilterVaporwave: {Timescale: &Timescale{Speed: 0.85, Pitch: 0.8, Rate: 1.0}},
	Filter8D:        {Rotation: &Rotation{RotationHz: 0.2}},
	FilterBassBoost: {Equalizer: []EqualizerBand{
		{Band: 0, Gain: 0.2},
		{Band: 1, Gain: 0.15},
		{Band: 2, Gain: 0.1},
		{Band: 3, Gain: 0.05},
	}},
	FilterSoft:    {LowPass: &LowPass{Smoothing: 20.0}},
	FilterTremolo: {Tremolo: &Tremolo{Frequency: 4.0, Depth: 0.75}},
	FilterKaraoke: {Karaoke: &Karaoke{Level: 1.0, MonoLevel: 1.0, FilterBand: 220.0, FilterWidth: 100.0}},
}

// PresetFilter returns the preset registered under label.
func PresetFilter(label string) (Filter, bool) {
	f, ok := presets[label]
	return f, ok
}

// PresetFilterLabels returns every preset label in sorted order.
func PresetFilterLabels() []string {
	labels := make([]string, 0, len(presets))
	for label := range presets {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	return labels
}
