package blackjack

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Action is a player action that may be legal during a round
type Action int

// Action constants
const (
	ActionHit Action = iota
	ActionStand
	ActionDoubleDown
	ActionSplit
	ActionInsurance
)

var actionNames = map[Action]string{
	ActionHit:        "hit",
	ActionStand:      "stand",
	ActionDoubleDown: "double-down",
	ActionSplit:      "split",
	ActionInsurance:  "insurance",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}

	panic(fmt.Sprintf("invalid action: %d", a))
}

// MarshalJSON encodes the action by name
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes the action from its name
func (a *Action) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}

	action, err := ActionFromString(name)
	if err != nil {
		return err
	}

	*a = action
	return nil
}

// ActionFromString returns the action by name
func ActionFromString(name string) (Action, error) {
	for action, n := range actionNames {
		if n == strings.ToLower(name) {
			return action, nil
		}
	}

	return -1, fmt.Errorf("invalid action: %s", name)
}

// ActionSet is the set of actions that are currently legal
// The zero value is the empty set. Sets are never modified in place
type ActionSet []Action

// NewActionSet returns a normalized set of the provided actions
func NewActionSet(actions ...Action) ActionSet {
	seen := make(map[Action]bool, len(actions))
	set := make(ActionSet, 0, len(actions))
	for _, action := range actions {
		if seen[action] {
			continue
		}

		seen[action] = true
		set = append(set, action)
	}

	sort.Slice(set, func(i, j int) bool {
		return set[i] < set[j]
	})

	return set
}

// ActionSetFromStrings parses a list of action names
func ActionSetFromStrings(names []string) (ActionSet, error) {
	actions := make([]Action, len(names))
	for i, name := range names {
		action, err := ActionFromString(name)
		if err != nil {
			return nil, err
		}

		actions[i] = action
	}

	return NewActionSet(actions...), nil
}

// UnmarshalJSON decodes a list of action names
func (s *ActionSet) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}

	set, err := ActionSetFromStrings(names)
	if err != nil {
		return err
	}

	*s = set
	return nil
}

// Allows returns true if the action is in the set
func (s ActionSet) Allows(action Action) bool {
	for _, a := range s {
		if a == action {
			return true
		}
	}

	return false
}

// Only returns true if the action is the sole member of the set
func (s ActionSet) Only(action Action) bool {
	return len(s) == 1 && s[0] == action
}

// IsEmpty returns true if no actions are allowed
func (s ActionSet) IsEmpty() bool {
	return len(s) == 0
}

// With returns a new set with the actions added
func (s ActionSet) With(actions ...Action) ActionSet {
	all := make([]Action, 0, len(s)+len(actions))
	all = append(all, s...)
	return NewActionSet(append(all, actions...)...)
}

// Without returns a new set with the actions removed
func (s ActionSet) Without(actions ...Action) ActionSet {
	remaining := make([]Action, 0, len(s))
	for _, a := range s {
		if !NewActionSet(actions...).Allows(a) {
			remaining = append(remaining, a)
		}
	}

	return NewActionSet(remaining...)
}

// Strings returns the action names
func (s ActionSet) Strings() []string {
	names := make([]string, len(s))
	for i, a := range s {
		names[i] = a.String()
	}

	return names
}

func (s ActionSet) String() string {
	return "{" + strings.Join(s.Strings(), ", ") + "}"
}

// openingActions are the actions available to a fresh two-card hand
func openingActions(hand Hand, canSplit bool) ActionSet {
	set := NewActionSet(ActionHit, ActionStand, ActionDoubleDown)
	if canSplit && hand.IsPair() {
		return set.With(ActionSplit)
	}

	return set
}
