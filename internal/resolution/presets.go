package resolution

// Preset is a selectable option shown by clients.
type Preset struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"desc"`
}

// StepPreset is a sampler step-count option.
type StepPreset struct {
	Value       int    `json:"value"`
	Label       string `json:"label"`
	Description string `json:"desc"`
}

// AspectRatios lists the ratio tokens in display order.
func AspectRatios() []Preset {
	return []Preset{
		{Value: "1:1", Label: "1:1", Description: "square"},
		{Value: "4:3", Label: "4:3", Description: "standard"},
		{Value: "3:4", Label: "3:4", Description: "portrait"},
		{Value: "16:9", Label: "16:9", Description: "widescreen"},
		{Value: "9:16", Label: "9:16", Description: "phone"},
		{Value: "2:3", Label: "2:3", Description: "poster"},
		{Value: "3:2", Label: "3:2", Description: "photo"},
		{Value: "21:9", Label: "21:9", Description: "ultrawide"},
		{Value: "9:21", Label: "9:21", Description: "long"},
	}
}

// Resolutions lists the base-size presets.
func Resolutions() []Preset {
	return []Preset{
		{Value: "1024", Label: "1K", Description: "standard"},
		{Value: "2048", Label: "2K", Description: "high"},
		{Value: "4096", Label: "4K", Description: "ultra"},
	}
}

func StepPresets() []StepPreset {
	return []StepPreset{
		{Value: 15, Label: "fast", Description: "15 steps"},
		{Value: 30, Label: "standard", Description: "30 steps"},
		{Value: 50, Label: "fine", Description: "50 steps"},
		{Value: 80, Label: "ultra", Description: "80 steps"},
	}
}
