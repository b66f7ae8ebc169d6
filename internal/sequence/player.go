package sequence

import "math"

// NewPlayer constructs a Player with provided hooks.
func NewPlayer(h Hooks) *Player {
	return &Player{
		State:      Idle,
		hooks:      h,
		armedIndex: -1,
	}
}

// Load replaces the current program. Resets time and state to Idle.
func (p *Player) Load(prog Program) error {
	if err := prog.Validate(); err != nil {
		return err
	}
	p.prog = prog
	p.State = Idle
	p.reset()
	return nil
}

func (p *Player) reset() {
	p.nowS, p.idx, p.base = 0, 0, 0
	p.armedIndex = -1
	p.lastAlpha = 0
}

// Program returns the loaded program.
func (p *Player) Program() Program { return p.prog }

// Position is the current program time in seconds.
func (p *Player) Position() float64 { return p.nowS }

// Current returns the index and clip that is playing.
func (p *Player) Current() (int, Clip) {
	if len(p.prog.Clips) == 0 {
		return -1, Clip{}
	}
	return p.idx, p.prog.Clips[p.idx]
}

// Start moves to Running and primes the current clip.
func (p *Player) Start() {
	if p.State == Running || len(p.prog.Clips) == 0 {
		return
	}
	p.State = Running
	p.enter(p.idx)
}

// Pause pauses playback.
func (p *Player) Pause() {
	if p.State == Running {
		p.State = Paused
	}
}

// Resume resumes playback.
func (p *Player) Resume() {
	if p.State == Paused {
		p.State = Running
	}
}

// Stop stops and resets to start.
func (p *Player) Stop() {
	p.State = Idle
	p.reset()
	p.crossfade(0)
}

// Seek jumps to absolute program time t. Clamps into [0, total).
func (p *Player) Seek(t float64) {
	if len(p.prog.Clips) == 0 {
		return
	}
	if t < 0 {
		t = 0
	}
	if total := p.prog.Duration(); t >= total {
		t = math.Nextafter(total, -1)
	}
	acc := 0.0
	idx := len(p.prog.Clips) - 1
	for i, c := range p.prog.Clips {
		if t < acc+c.DurationS {
			idx = i
			break
		}
		acc += c.DurationS
	}
	p.idx, p.base, p.nowS = idx, acc, t
	p.enter(idx)
}

// Tick advances the sequencer by dt seconds and emits control hooks.
func (p *Player) Tick(dt float64) {
	if p.State != Running || len(p.prog.Clips) == 0 || dt <= 0 {
		return
	}
	p.nowS += dt

	clip := p.prog.Clips[p.idx]
	localT := p.nowS - p.base
	p.automate(clip, localT)

	if clip.XFadeS > 0 {
		remain := clip.DurationS - localT
		if remain <= clip.XFadeS && remain >= 0 {
			next := p.nextIndex()
			if p.armedIndex == -1 && next != -1 && next != p.idx {
				if p.hooks.ArmNext != nil {
					nc := p.prog.Clips[next]
					p.hooks.ArmNext(nc.Renderer, nc.Preset)
				}
				p.armedIndex = next
			}
			// Alpha 0..1 over [Duration-XFade, Duration]
			if p.armedIndex != -1 {
				alpha := clamp01(1.0 - remain/clip.XFadeS)
				if alpha != p.lastAlpha && alpha < 1 {
					p.crossfade(alpha)
				}
			}
		}
	}

	if localT >= clip.DurationS {
		p.advanceClip()
	}
}

func (p *Player) automate(c Clip, localT float64) {
	if p.hooks.SetParam != nil {
		for name, env := range c.Params {
			p.hooks.SetParam(name, env.Eval(localT))
		}
	}
	if p.hooks.SetBool != nil {
		for name, env := range c.Bools {
			p.hooks.SetBool(name, env.BoolEval(localT))
		}
	}
}

func (p *Player) nextIndex() int {
	ni := p.idx + 1
	if ni >= len(p.prog.Clips) {
		if p.prog.Loop {
			return 0
		}
		return -1
	}
	return ni
}

func (p *Player) advanceClip() {
	next := p.nextIndex()
	if next == -1 {
		p.State = Idle
		p.crossfade(0)
		return
	}
	p.base += p.prog.Clips[p.idx].DurationS
	if next == 0 {
		// looped: restart program time
		p.nowS -= p.base
		p.base = 0
	}
	if p.armedIndex == next {
		// the engine already has it armed; finishing the fade promotes it
		p.crossfade(1)
		p.idx = next
		p.armedIndex = -1
		p.lastAlpha = 0
		p.notify()
		return
	}
	p.idx = next
	p.enter(next)
}

// enter snaps the engine to clip i with no fade running.
func (p *Player) enter(i int) {
	c := p.prog.Clips[i]
	if p.hooks.SetRenderer != nil {
		p.hooks.SetRenderer(c.Renderer, c.Preset)
	}
	p.armedIndex = -1
	p.crossfade(0)
	p.notify()
}

func (p *Player) notify() {
	if p.hooks.OnClip != nil {
		p.hooks.OnClip(p.idx, p.prog.Clips[p.idx])
	}
}

func (p *Player) crossfade(a float64) {
	p.lastAlpha = a
	if p.hooks.SetCrossfade != nil {
		p.hooks.SetCrossfade(a)
	}
}
