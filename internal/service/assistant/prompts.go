package assistant

import (
	"fmt"
	"strings"

	"github.com/tigertix/tigertix/internal/domain"
)

const parseSystemPrompt = `You are a booking assistant for an event ticketing system.
Given the user's message, extract:
- event name
- number of tickets (default to 1 if not stated)
Return a valid JSON object only, like:
{ "event": "Event Name", "tickets": 2 }`

func chatSystemPrompt(events []domain.Event) string {
	var b strings.Builder
	b.WriteString("You are a friendly event booking assistant.\n\n")
	b.WriteString("You have access to this list of current events:\n")
	for i, e := range events {
		fmt.Fprintf(&b, "%d. %s\n", i+1, e.Name)
	}
	b.WriteString(`
You must respond only in valid JSON:
{
  "action": "greet" | "list" | "parse" | "confirm",
  "data": { "event": "Event Name", "tickets": 1 },
  "reply": "natural language message to user"
}

Rules:
- "greet": if the user greets or makes small talk.
- "list": if the user asks to see available events.
- "parse": if the user wants to book tickets. Choose the best matching event name from the list (case-insensitive, partial matches allowed).
- "confirm": if the user explicitly confirms a booking (e.g. "yes, book it").
- Never return multiple actions in one reply.`)
	return b.String()
}

func chatUserPrompt(message string, chatCtx *domain.ChatContext) string {
	if chatCtx == nil || chatCtx.Event == "" {
		return fmt.Sprintf("User: %q", message)
	}
	return fmt.Sprintf("Pending booking: %d ticket(s) for %q\nUser: %q", chatCtx.Tickets, chatCtx.Event, message)
}
