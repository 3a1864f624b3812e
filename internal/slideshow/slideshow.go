// Package slideshow is the fullscreen presentation state machine. It knows
// nothing about terminals or browsers; front ends feed it keys and exits.
package slideshow

type State int

const (
	Inactive State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "inactive"
}

// Key names understood by HandleKey. Browser (ArrowRight) and terminal
// (right) spellings are both accepted.
var (
	nextKeys = map[string]bool{"ArrowRight": true, "right": true, "l": true, " ": true, "space": true}
	prevKeys = map[string]bool{"ArrowLeft": true, "left": true, "h": true}
	exitKeys = map[string]bool{"Escape": true, "esc": true, "q": true}
)

type Show struct {
	state   State
	pointer int
	count   int
}

func (s *Show) State() State { return s.state }

func (s *Show) Active() bool { return s.state == Active }

// Pointer is the index of the slide on screen; 0 while inactive.
func (s *Show) Pointer() int { return s.pointer }

// Enter starts a fullscreen run over count slides from the first one. An
// empty deck cannot be presented.
func (s *Show) Enter(count int) bool {
	if count <= 0 {
		return false
	}
	s.state = Active
	s.count = count
	s.pointer = 0
	return true
}

// Next advances one slide. Advancing past the last slide leaves fullscreen.
func (s *Show) Next() {
	if s.state != Active {
		return
	}
	if s.pointer+1 >= s.count {
		s.Exit()
		return
	}
	s.pointer++
}

// Prev goes back one slide, stopping at the first.
func (s *Show) Prev() {
	if s.state != Active || s.pointer == 0 {
		return
	}
	s.pointer--
}

// Exit leaves fullscreen, however it was requested, and rewinds.
func (s *Show) Exit() {
	s.state = Inactive
	s.pointer = 0
}

// HandleKey applies a key press and reports whether it was consumed. Keys are
// ignored while inactive.
func (s *Show) HandleKey(key string) bool {
	if s.state != Active {
		return false
	}
	switch {
	case nextKeys[key]:
		s.Next()
	case prevKeys[key]:
		s.Prev()
	case exitKeys[key]:
		s.Exit()
	default:
		return false
	}
	return true
}
