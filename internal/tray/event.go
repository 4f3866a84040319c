package tray

// Event is an input for the tray event loop. Exactly one of the concrete
// types below is delivered per OS callback.
type Event interface {
	isEvent()
}

// MouseButton identifies the button of a tray icon click.
type MouseButton int

const (
	PrimaryButton MouseButton = iota
	SecondaryButton
	MiddleButton
)

// ButtonState is the phase of a click.
type ButtonState int

const (
	Pressed ButtonState = iota
	Released
)

// MenuEvent reports a click on the menu item with the given id.
type MenuEvent struct {
	ID string
}

// IconEvent reports a click on the tray icon itself.
type IconEvent struct {
	Button MouseButton
	State  ButtonState
}

// CommandEvent asks the loop to apply a command directly, e.g. a front-end
// reporting that the user closed the window to the tray.
type CommandEvent struct {
	Command Command
}

func (MenuEvent) isEvent()    {}
func (IconEvent) isEvent()    {}
func (CommandEvent) isEvent() {}

// CommandKind is the shell command produced from an event.
type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandShow
	CommandHide
	CommandQuit
	CommandCustom
)

func (k CommandKind) String() string {
	switch k {
	case CommandShow:
		return "show"
	case CommandHide:
		return "hide"
	case CommandQuit:
		return "quit"
	case CommandCustom:
		return "custom"
	default:
		return "none"
	}
}

// Command is a shell command. ID is set for CommandCustom.
type Command struct {
	Kind CommandKind
	ID   string
}
