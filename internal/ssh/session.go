package ssh

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
)

// DefaultTerm is used when the client's TERM is missing or not allowed.
const DefaultTerm = "xterm-256color"

// MaxNameBytes caps the length of a sanitized player name.
const MaxNameBytes = 16

// ErrNoPTY is returned by OpenScreen for sessions without a terminal.
var ErrNoPTY = errors.New("session has no PTY")

// allowedTerms are the terminal types the server will look up in terminfo.
// Anything else falls back to DefaultTerm.
var allowedTerms = map[string]bool{
	"xterm":                 true,
	"xterm-256color":        true,
	"xterm-color":           true,
	"screen":                true,
	"screen-256color":       true,
	"tmux":                  true,
	"tmux-256color":         true,
	"linux":                 true,
	"vt100":                 true,
	"vt220":                 true,
	"rxvt-unicode":          true,
	"rxvt-unicode-256color": true,
}

// termMu protects os.Setenv("TERM") around screen creation, which reads the
// process environment.
var termMu sync.Mutex

// TermFor picks the terminal type for a session: the TERM variable from
// environ, then the PTY request, then DefaultTerm. Types not in the allowlist
// are replaced by DefaultTerm.
func TermFor(ptyTerm string, environ []string) string {
	term := ptyTerm
	for _, env := range environ {
		if v, ok := strings.CutPrefix(env, "TERM="); ok {
			term = v
			break
		}
	}
	if !allowedTerms[term] {
		return DefaultTerm
	}
	return term
}

// SanitizeName strips control characters from name and truncates it to at
// most MaxNameBytes without splitting a rune.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == utf8.RuneError || unicode.IsControl(r) {
			continue
		}
		if b.Len()+utf8.RuneLen(r) > MaxNameBytes {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

// OpenScreen creates and initializes a tcell screen drawing to the session.
func OpenScreen(s gossh.Session) (tcell.Screen, error) {
	pty, winCh, ok := s.Pty()
	if !ok {
		return nil, ErrNoPTY
	}
	tty := NewSessionTty(s, pty, winCh)

	termMu.Lock()
	_ = os.Setenv("TERM", TermFor(pty.Term, s.Environ()))
	screen, err := tcell.NewTerminfoScreenFromTty(tty)
	termMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("terminal setup: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("screen init: %w", err)
	}
	return screen, nil
}
