package assistant

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/clearsmile/dental-assistant/backend/internal/model/chat"
)

// fallbackMessage is returned whenever the model's reply decoded fine but
// its content could not be parsed. The conversation keeps going; the
// caller sees a normal response, not an error.
const fallbackMessage = "I apologize, but I encountered an error processing your request. Please try again."

var (
	intentLineRe   = regexp.MustCompile(`(?im)^[ \t]*intent:[ \t]*(.+?)[ \t]*\r?$`)
	slotsLineRe    = regexp.MustCompile(`(?im)^[ \t]*slots:[ \t]*(\{.*\})[ \t]*\r?$`)
	followUpHeadRe = regexp.MustCompile(`(?im)^[ \t]*(?:suggested questions|follow-up):[ \t]*\r?$`)
	numberedLineRe = regexp.MustCompile(`^[ \t]*\d+[.)][ \t]*(.*?)[ \t]*$`)
)

// payloadEnvelope covers the wire shapes our invokers produce: the chat
// message object the eino chain returns, and the choices array shape of
// OpenAI-compatible endpoints.
type payloadEnvelope struct {
	Content string `json:"content"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// DecodePayload extracts the assistant text from a raw model payload.
// Failure here is a wire-contract violation, not unstructured content,
// and the orchestrator surfaces it as ErrResponseFormat.
func DecodePayload(raw []byte) (string, error) {
	var env payloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("decode model payload: %w", err)
	}

	if strings.TrimSpace(env.Content) != "" {
		return env.Content, nil
	}
	if len(env.Choices) > 0 && strings.TrimSpace(env.Choices[0].Message.Content) != "" {
		return env.Choices[0].Message.Content, nil
	}

	return "", errors.New("model payload has no content field")
}

// ParseContent turns decoded model text into a structured response.
// Content-level failures are absorbed: the fixed fallback response is
// returned instead of an error so the turn still completes.
func ParseContent(text string) chat.Response {
	slots, err := extractSlots(text)
	if err != nil {
		return FallbackResponse()
	}

	resp := chat.Response{
		Message:           stripMetadata(text),
		Intent:            extractIntent(text),
		Slots:             slots,
		FollowUpQuestions: extractFollowUps(text),
	}
	if resp.Message == "" {
		return FallbackResponse()
	}
	return resp
}

// FallbackResponse is the canned apology substituted for unparseable
// model content.
func FallbackResponse() chat.Response {
	return chat.Response{Message: fallbackMessage}
}

// extractIntent returns the text of the first "Intent:" line, or "".
func extractIntent(text string) string {
	m := intentLineRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// extractSlots parses the JSON object literal on the first "Slots:" line.
// A missing line yields (nil, nil); a line whose literal does not parse
// as a string map is a content-level failure.
func extractSlots(text string) (map[string]string, error) {
	m := slotsLineRe.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}

	slots := make(map[string]string)
	if err := json.Unmarshal([]byte(m[1]), &slots); err != nil {
		return nil, fmt.Errorf("parse slots literal: %w", err)
	}
	return slots, nil
}

// extractFollowUps returns the numbered questions under a
// "Suggested questions:" or "Follow-up:" header, or nil when no such
// block exists.
func extractFollowUps(text string) []string {
	_, questions, ok := findFollowUpBlock(text)
	if !ok {
		return nil
	}
	return questions
}

// findFollowUpBlock locates the follow-up header and collects the
// numbered lines after it. The block counts as found only when at least
// one non-empty question follows the header; it extends to end of text.
func findFollowUpBlock(text string) (start int, questions []string, ok bool) {
	loc := followUpHeadRe.FindStringIndex(text)
	if loc == nil {
		return 0, nil, false
	}

	for _, line := range strings.Split(text[loc[1]:], "\n") {
		m := numberedLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if q := strings.TrimSpace(m[1]); q != "" {
			questions = append(questions, q)
		}
	}

	if len(questions) == 0 {
		return 0, nil, false
	}
	return loc[0], questions, true
}

// stripMetadata removes the matched Intent line, Slots line, and
// follow-up block from the decoded text, leaving the clean message.
func stripMetadata(text string) string {
	if start, _, ok := findFollowUpBlock(text); ok {
		text = text[:start]
	}
	text = removeFirstMatch(text, intentLineRe)
	text = removeFirstMatch(text, slotsLineRe)
	return strings.TrimSpace(text)
}

func removeFirstMatch(text string, re *regexp.Regexp) string {
	loc := re.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[0]] + text[loc[1]:]
}
