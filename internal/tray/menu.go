package tray

import (
	"errors"
	"fmt"
)

// Action is what a menu item does when clicked.
type Action int

const (
	ActionCustom Action = iota
	ActionShow
	ActionHide
	ActionQuit
	// ActionSeparator draws a divider; it has no id and is never clicked.
	ActionSeparator
)

func (a Action) String() string {
	switch a {
	case ActionShow:
		return "show"
	case ActionHide:
		return "hide"
	case ActionQuit:
		return "quit"
	case ActionSeparator:
		return "separator"
	default:
		return "custom"
	}
}

// Menu item ids used by the default menu.
const (
	ItemShow = "show"
	ItemHide = "hide"
	ItemQuit = "quit"
)

// MenuItem is one entry of the tray menu.
type MenuItem struct {
	ID      string
	Label   string
	Tooltip string
	Action  Action
}

// Separator returns a divider entry.
func Separator() MenuItem {
	return MenuItem{Action: ActionSeparator}
}

// DefaultMenu returns the standard Show / Hide / Quit menu.
func DefaultMenu(appName string) []MenuItem {
	return []MenuItem{
		{ID: ItemShow, Label: "Show " + appName, Tooltip: "Show the main window", Action: ActionShow},
		{ID: ItemHide, Label: "Hide", Tooltip: "Hide the main window", Action: ActionHide},
		Separator(),
		{ID: ItemQuit, Label: "Quit", Tooltip: "Quit " + appName, Action: ActionQuit},
	}
}

var (
	errEmptyID     = errors.New("menu item has no id")
	errEmptyLabel  = errors.New("menu item has no label")
	errDuplicateID = errors.New("duplicate menu item id")
	errEmptyMenu   = errors.New("menu has no items")
)

// validateMenu checks that every clickable item has a label and an id
// unique within the menu.
func validateMenu(items []MenuItem) error {
	seen := make(map[string]struct{}, len(items))
	clickable := 0
	for i, item := range items {
		if item.Action == ActionSeparator {
			continue
		}
		clickable++
		if item.ID == "" {
			return fmt.Errorf("item %d: %w", i, errEmptyID)
		}
		if item.Label == "" {
			return fmt.Errorf("item %q: %w", item.ID, errEmptyLabel)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("item %q: %w", item.ID, errDuplicateID)
		}
		seen[item.ID] = struct{}{}
	}
	if clickable == 0 {
		return errEmptyMenu
	}
	return nil
}
