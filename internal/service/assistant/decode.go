package assistant

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/tigertix/tigertix/internal/domain"
)

// flexInt accepts 2, 2.0 and "2". Anything else decodes to zero.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) {
			*n = flexInt(t)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			*n = flexInt(i)
		}
	}

	return nil
}

// stripFences removes a Markdown code fence some models wrap JSON in.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}

// decodeInterpretation never fails: unusable output becomes a request for one
// ticket to an "unknown" event, which matches nothing.
func decodeInterpretation(raw string) domain.Interpretation {
	fallback := domain.Interpretation{Event: "unknown", Tickets: 1}

	var wire struct {
		Event   string  `json:"event"`
		Tickets flexInt `json:"tickets"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &wire); err != nil {
		return fallback
	}

	out := domain.Interpretation{Event: strings.TrimSpace(wire.Event), Tickets: int(wire.Tickets)}
	if out.Event == "" {
		out.Event = fallback.Event
	}
	if out.Tickets <= 0 {
		out.Tickets = 1
	}

	return out
}

type decision struct {
	Action  domain.ChatAction
	Event   string
	Tickets int
	Reply   string
}

func decodeDecision(raw string) (decision, bool) {
	var wire struct {
		Action string `json:"action"`
		Data   struct {
			Event   string  `json:"event"`
			Tickets flexInt `json:"tickets"`
		} `json:"data"`
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &wire); err != nil {
		return decision{}, false
	}

	return decision{
		Action:  domain.ChatAction(strings.ToLower(strings.TrimSpace(wire.Action))),
		Event:   strings.TrimSpace(wire.Data.Event),
		Tickets: int(wire.Data.Tickets),
		Reply:   strings.TrimSpace(wire.Reply),
	}, true
}
