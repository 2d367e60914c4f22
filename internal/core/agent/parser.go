package agent

import (
	"regexp"
	"strings"
)

type stepKind int

const (
	stepInvalid stepKind = iota
	stepAction
	stepFinal
)

// reasoning is one parsed model turn.
type reasoning struct {
	kind        stepKind
	thought     string
	action      string
	actionInput string
	finalAnswer string
}

var (
	finalAnswerRe = regexp.MustCompile(`(?i)\bFinal\s+Answer\s*:`)
	observationRe = regexp.MustCompile(`(?i)\n\s*Observation\s*:`)

	// Both markers must open a line, so "transaction:" inside a thought is
	// not read as an action.
	actionRe = regexp.MustCompile(`(?ims)^[ \t]*Action\s*\d*\s*:[ \t]*(.*?)\s*^[ \t]*Action\s*\d*\s*Input\s*\d*\s*:[ \t]*(.*)`)
)

// parseReasoning reads a model turn. A final answer wins unless an action
// appears before it.
func parseReasoning(text string) reasoning {
	finalLoc := finalAnswerRe.FindStringIndex(text)
	actionLoc := actionRe.FindStringSubmatchIndex(text)

	if finalLoc != nil && (actionLoc == nil || finalLoc[0] < actionLoc[0]) {
		return reasoning{
			kind:        stepFinal,
			thought:     strings.TrimSpace(text[:finalLoc[0]]),
			finalAnswer: strings.TrimSpace(text[finalLoc[1]:]),
		}
	}

	if actionLoc != nil {
		action := strings.TrimSpace(text[actionLoc[2]:actionLoc[3]])
		input := text[actionLoc[4]:actionLoc[5]]
		if loc := observationRe.FindStringIndex(input); loc != nil {
			input = input[:loc[0]]
		}
		// A final answer after the action belongs to a hallucinated future turn.
		if loc := finalAnswerRe.FindStringIndex(input); loc != nil {
			input = input[:loc[0]]
		}
		return reasoning{
			kind:        stepAction,
			thought:     strings.TrimSpace(text[:actionLoc[0]]),
			action:      action,
			actionInput: strings.Trim(strings.TrimSpace(input), `"`),
		}
	}

	return reasoning{kind: stepInvalid, thought: strings.TrimSpace(text)}
}
