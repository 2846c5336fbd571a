package game

import "github.com/gdamore/tcell/v2"

// Action represents a player-requested game action.
type Action uint8

const (
	ActionNone Action = iota
	ActionMoveLeft
	ActionMoveRight
	ActionRotateCCW
	ActionRotateCW
	ActionSoftDrop
	ActionFreeFall
	ActionLevelUp
	ActionLevelDown
	ActionPause
	ActionRestart
	ActionQuit
)

// keyToAction maps a tcell key event to a game action.
func keyToAction(ev *tcell.EventKey) Action {
	// Named keys.
	switch ev.Key() {
	case tcell.KeyLeft:
		return ActionMoveLeft
	case tcell.KeyRight:
		return ActionMoveRight
	case tcell.KeyUp:
		return ActionRotateCCW
	case tcell.KeyDown:
		return ActionRotateCW
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit
	}

	// Rune keys.
	switch ev.Rune() {
	case 'h', 'H':
		return ActionMoveLeft
	case 'l', 'L':
		return ActionMoveRight
	case 'k', 'K', 'z', 'Z':
		return ActionRotateCCW
	case 'j', 'J', 'x', 'X':
		return ActionRotateCW
	case 's', 'S':
		return ActionSoftDrop
	case ' ':
		return ActionFreeFall
	case '+', '=':
		return ActionLevelUp
	case '-', '_':
		return ActionLevelDown
	case 'p', 'P':
		return ActionPause
	case 'r', 'R':
		return ActionRestart
	case 'q', 'Q':
		return ActionQuit
	}
	return ActionNone
}

// actionToDelta converts a move or rotation action to (dx, drot).
func actionToDelta(a Action) (int, int) {
	switch a {
	case ActionMoveLeft:
		return -1, 0
	case ActionMoveRight:
		return 1, 0
	case ActionRotateCCW:
		return 0, -1
	case ActionRotateCW:
		return 0, 1
	}
	return 0, 0
}
