package assistant

import (
	"strings"

	"github.com/clearsmile/dental-assistant/backend/internal/model/chat"
)

// historyLimit caps how many past messages are rendered into the prompt.
const historyLimit = 10

const systemInstructions = `You are a knowledgeable dental assistant for a dental practice. Follow these rules:
- Provide accurate dental information and explain it in plain language.
- Simplify clinical terminology so patients can understand it.
- Never give individualized medical advice; recommend discussing specifics with the treating dentist.
- When asked about costs or timelines, answer with ranges only, never exact figures.`

const closingInstruction = `Identify the intent of the message above and respond helpfully.`

// BuildPrompt renders the full prompt for one turn. It is a pure function
// of its inputs: identical arguments produce byte-identical output.
func BuildPrompt(userMessage string, ctx chat.Context) string {
	var b strings.Builder

	b.WriteString(systemInstructions)
	b.WriteString("\n\n")

	if ctx.PatientID != "" || ctx.TreatmentPlanID != "" {
		b.WriteString("Session information:\n")
		if ctx.PatientID != "" {
			b.WriteString("Patient ID: ")
			b.WriteString(ctx.PatientID)
			b.WriteString("\n")
		}
		if ctx.TreatmentPlanID != "" {
			b.WriteString("Treatment Plan ID: ")
			b.WriteString(ctx.TreatmentPlanID)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Conversation so far:\n")
	for _, line := range renderHistory(ctx.Messages) {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\nHuman: ")
	b.WriteString(userMessage)
	b.WriteString("\n\n")
	b.WriteString(closingInstruction)

	return b.String()
}

// renderHistory formats at most the last historyLimit messages, oldest
// first. Unknown roles are skipped.
func renderHistory(messages []chat.Message) []string {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	lines := make([]string, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chat.RoleUser:
			lines = append(lines, "Human: "+msg.Content)
		case chat.RoleAssistant:
			lines = append(lines, "Assistant: "+msg.Content)
		}
	}

	return lines
}
