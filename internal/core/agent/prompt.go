package agent

import (
	"fmt"
	"strings"
)

// observationStop ends a model turn before it invents a tool result.
const observationStop = "\nObservation:"

const agentPromptTemplate = `You are a helpful financial assistant. You have access to tools.
Tools:
%s
Use the following format:
Question: the input question you must answer
Thought: you should always think about what to do
Action: the action to take, should be one of [%s]
Action Input: the input to the action
Observation: the result of the action
... (this can repeat)
Thought: I now know the final answer
Final Answer: the final answer to the original input question
Begin!
Question: %s
Thought:%s`

func buildPrompt(tools []Tool, s *Session) string {
	descs := make([]string, len(tools))
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Kind().String()
		descs[i] = names[i] + ": " + t.Description()
	}
	return fmt.Sprintf(agentPromptTemplate,
		strings.Join(descs, "\n"),
		strings.Join(names, ", "),
		s.Question,
		s.scratchpad())
}
