package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/weegigs/wee-counter-go/counter"
	"github.com/weegigs/wee-counter-go/we"
)

// parseActions reads "set-diff N", "increase" and "decrease". Any other word
// containing a "/" is dispatched as a raw action type.
func parseActions(args []string) ([]we.Action, error) {
	var actions []we.Action
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "set-diff":
			if i+1 >= len(args) {
				return nil, errors.New("set-diff requires a value")
			}
			i++
			diff, err := strconv.Atoi(args[i])
			if err != nil {
				return nil, errors.Wrapf(err, "invalid diff %q", args[i])
			}
			actions = append(actions, counter.SetDiff(diff))
		case "increase", "inc":
			actions = append(actions, counter.Increase())
		case "decrease", "dec":
			actions = append(actions, counter.Decrease())
		default:
			if !strings.Contains(arg, "/") {
				return nil, errors.Errorf("unknown action %q", arg)
			}
			actions = append(actions, we.RemoteAction{Type: we.ActionType(arg)})
		}
	}

	return actions, nil
}
