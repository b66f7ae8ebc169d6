package anim

// Event is something the host wants applied between ticks.
type Event interface{ isEvent() }

// Resize reports a new viewport size in pixels.
type Resize struct{ W, H int }

// Drag is a pointer drag in pixels, for the orbit control.
type Drag struct{ DX, DY float32 }

// Zoom is a wheel step; positive zooms out.
type Zoom struct{ Delta float32 }

// SetPreset switches the active renderer's preset.
type SetPreset struct{ Name string }

// SetParam sets a uniform parameter.
type SetParam struct {
	Name  string
	Value float64
}

// Quit stops the loop.
type Quit struct{}

func (Resize) isEvent()    {}
func (Drag) isEvent()      {}
func (Zoom) isEvent()      {}
func (SetPreset) isEvent() {}
func (SetParam) isEvent()  {}
func (Quit) isEvent()      {}
