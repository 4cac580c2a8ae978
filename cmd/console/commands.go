package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/letser/plotplay/pkg/pacing"
	"github.com/letser/plotplay/pkg/state"
)

const helpText = `Commands:
• /go <location>  -  walk to a location in this zone
• /travel <zone> <method> [entry]  -  cross to another zone
• /say <text>  -  a conversational beat
• /do [minutes] <text>  -  a scene action, minutes optional
• /wear <garment> [character]
• /remove <garment> [character]
• /outfit <outfit> [character]  -  change into an outfit
• /outfit off <outfit> [character]
• /state <garment> <new state> [character]
• /state @<slot> <new state> [character]
• /give <item> [count] [character]  -  negative count takes away
• /meter <meter> <delta> [character]
• /flag <name> [on|off]
• /node <id>  -  enter a narrative node (fresh visit budget)
• /look  -  describe the current moment
• /copy  -  copy the snapshot JSON to the clipboard
• /new  -  start another session
• /quit

Arguments are content ids (lowercase snake_case); display names
work too when they carry no spaces. Omitted characters default to
the player.`

// turnRequest is a parsed slash command, ready to resolve as one
// engine action.
type turnRequest struct {
	action  state.Action
	effects []state.Effect
}

// parseTurn maps a slash command onto an engine action. Commands that
// do not advance the world (help, look, copy, quit) are handled by the
// UI before this is called.
func parseTurn(cmd string, args []string) (turnRequest, error) {
	switch cmd {
	case "/go":
		if len(args) != 1 {
			return turnRequest{}, fmt.Errorf("usage: /go <location>")
		}
		return turnRequest{
			action:  state.Action{Kind: pacing.KindMovement},
			effects: []state.Effect{{Kind: state.EffectMove, Location: args[0]}},
		}, nil

	case "/travel":
		if len(args) < 2 || len(args) > 3 {
			return turnRequest{}, fmt.Errorf("usage: /travel <zone> <method> [entry]")
		}
		e := state.Effect{Kind: state.EffectMove, Zone: args[0], Method: args[1]}
		if len(args) == 3 {
			e.Location = args[2]
		}
		return turnRequest{
			action:  state.Action{Kind: pacing.KindTravel},
			effects: []state.Effect{e},
		}, nil

	case "/say":
		if len(args) == 0 {
			return turnRequest{}, fmt.Errorf("usage: /say <text>")
		}
		return turnRequest{action: state.Action{Kind: pacing.KindConversation}}, nil

	case "/do":
		if len(args) == 0 {
			return turnRequest{}, fmt.Errorf("usage: /do [minutes] <text>")
		}
		action := state.Action{Kind: pacing.KindChoice}
		if minutes, err := strconv.Atoi(args[0]); err == nil {
			if len(args) == 1 {
				return turnRequest{}, fmt.Errorf("usage: /do [minutes] <text>")
			}
			action.Minutes = &minutes
		}
		return turnRequest{action: action}, nil

	case "/wear":
		if len(args) < 1 || len(args) > 2 {
			return turnRequest{}, fmt.Errorf("usage: /wear <garment> [character]")
		}
		return wardrobeTurn(state.Effect{
			Kind:      state.EffectClothingPutOn,
			Garment:   args[0],
			Character: optional(args, 1),
		}), nil

	case "/remove":
		if len(args) < 1 || len(args) > 2 {
			return turnRequest{}, fmt.Errorf("usage: /remove <garment> [character]")
		}
		return wardrobeTurn(state.Effect{
			Kind:      state.EffectClothingTakeOff,
			Garment:   args[0],
			Character: optional(args, 1),
		}), nil

	case "/outfit":
		if len(args) >= 2 && args[0] == "off" {
			if len(args) > 3 {
				return turnRequest{}, fmt.Errorf("usage: /outfit off <outfit> [character]")
			}
			return wardrobeTurn(state.Effect{
				Kind:      state.EffectOutfitTakeOff,
				Outfit:    args[1],
				Character: optional(args, 2),
			}), nil
		}
		if len(args) < 1 || len(args) > 2 {
			return turnRequest{}, fmt.Errorf("usage: /outfit <outfit> [character]")
		}
		return wardrobeTurn(state.Effect{
			Kind:      state.EffectOutfitPutOn,
			Outfit:    args[0],
			Character: optional(args, 1),
		}), nil

	case "/state":
		if len(args) < 2 || len(args) > 3 {
			return turnRequest{}, fmt.Errorf("usage: /state <garment|@slot> <new state> [character]")
		}
		e := state.Effect{State: args[1], Character: optional(args, 2)}
		if slot, ok := strings.CutPrefix(args[0], "@"); ok {
			e.Kind = state.EffectClothingSlot
			e.Slot = slot
		} else {
			e.Kind = state.EffectClothingState
			e.Garment = args[0]
		}
		return wardrobeTurn(e), nil

	case "/give":
		if len(args) < 1 || len(args) > 3 {
			return turnRequest{}, fmt.Errorf("usage: /give <item> [count] [character]")
		}
		e := state.Effect{Kind: state.EffectInventoryDelta, Item: args[0], Delta: 1}
		rest := args[1:]
		if len(rest) > 0 {
			if n, err := strconv.Atoi(rest[0]); err == nil {
				e.Delta = n
				rest = rest[1:]
			}
		}
		if len(rest) > 1 {
			return turnRequest{}, fmt.Errorf("usage: /give <item> [count] [character]")
		}
		e.Character = optional(rest, 0)
		return adminTurn(e), nil

	case "/meter":
		if len(args) < 2 || len(args) > 3 {
			return turnRequest{}, fmt.Errorf("usage: /meter <meter> <delta> [character]")
		}
		delta, err := strconv.Atoi(args[1])
		if err != nil {
			return turnRequest{}, fmt.Errorf("delta must be a number, got %q", args[1])
		}
		return adminTurn(state.Effect{
			Kind:      state.EffectMeterDelta,
			Meter:     args[0],
			Delta:     delta,
			Character: optional(args, 2),
		}), nil

	case "/flag":
		if len(args) < 1 || len(args) > 2 {
			return turnRequest{}, fmt.Errorf("usage: /flag <name> [on|off]")
		}
		value := true
		if len(args) == 2 {
			switch args[1] {
			case "on":
			case "off":
				value = false
			default:
				return turnRequest{}, fmt.Errorf("usage: /flag <name> [on|off]")
			}
		}
		return adminTurn(state.Effect{Kind: state.EffectFlagSet, Flag: args[0], Value: value}), nil
	}

	return turnRequest{}, fmt.Errorf("unknown command %s, try /help", cmd)
}

// wardrobeTurn wraps a wardrobe effect as a player choice, so it costs
// the choice category.
func wardrobeTurn(e state.Effect) turnRequest {
	return turnRequest{
		action:  state.Action{Kind: pacing.KindChoice},
		effects: []state.Effect{e},
	}
}

// adminTurn wraps a bookkeeping effect with an explicit zero-minute
// cost, so poking state from the console never moves the clock.
func adminTurn(e state.Effect) turnRequest {
	zero := 0
	return turnRequest{
		action:  state.Action{Kind: pacing.KindChoice, Minutes: &zero},
		effects: []state.Effect{e},
	}
}

func optional(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
