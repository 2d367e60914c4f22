package agent

import "strings"

// Scope binds a session to one user. It is built once per run and passed by
// value to every tool invocation.
type Scope struct {
	UserID string
}

// Step records one tool invocation and what it returned.
type Step struct {
	Thought     string
	Tool        string
	Input       string
	Observation string
}

// Session is the in-memory state of a single run. It is never persisted.
type Session struct {
	Scope    Scope
	Question string
	Steps    []Step
}

func newSession(userID, question string) *Session {
	return &Session{Scope: Scope{UserID: userID}, Question: question}
}

func (s *Session) record(step Step) {
	s.Steps = append(s.Steps, step)
}

// scratchpad renders prior steps in the format the model was asked to use.
func (s *Session) scratchpad() string {
	var b strings.Builder
	for _, st := range s.Steps {
		if st.Thought != "" {
			b.WriteString(" ")
			b.WriteString(st.Thought)
			b.WriteString("\n")
		}
		if st.Tool != "" {
			b.WriteString("Action: ")
			b.WriteString(st.Tool)
			b.WriteString("\nAction Input: ")
			b.WriteString(st.Input)
			b.WriteString("\n")
		}
		b.WriteString("Observation: ")
		b.WriteString(st.Observation)
		b.WriteString("\nThought:")
	}
	return b.String()
}
