package assistant

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tigertix/tigertix/internal/domain"
	redisrepo "github.com/tigertix/tigertix/internal/repository/redis"
	"github.com/tigertix/tigertix/internal/service/booking"
)

type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type EventLister interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

type Booker interface {
	PurchaseQuantity(ctx context.Context, ref booking.EventRef, qty int) (*domain.Event, error)
}

type Config struct {
	InterpretationTTL time.Duration
}

// Service turns free text into booking intents. The language model only
// ever proposes an event name and a quantity; every booking goes through the
// booking service, which validates both against storage.
type Service struct {
	completer Completer
	events    EventLister
	booker    Booker
	cache     *redisrepo.Cache
	cfg       Config
	logger    *slog.Logger
}

// New builds the assistant. completer and cache may be nil: without a
// completer Parse and Chat return ErrUnavailable, without a cache every
// request reaches the model.
func New(
	completer Completer,
	events EventLister,
	booker Booker,
	cache *redisrepo.Cache,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cfg.InterpretationTTL <= 0 {
		cfg.InterpretationTTL = 10 * time.Minute
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Service{
		completer: completer,
		events:    events,
		booker:    booker,
		cache:     cache,
		cfg:       cfg,
		logger:    logger,
	}
}

type ParseResult struct {
	Parsed domain.Interpretation `json:"parsed"`
	Match  *domain.Event         `json:"match"`
}

// Parse extracts an event name and ticket count from text and looks the name
// up by case-insensitive equality. Match is nil when no event has that exact
// name.
func (s *Service) Parse(ctx context.Context, text string) (*ParseResult, error) {
	const op = "service.assistant.Parse"

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingText)
	}

	interp, err := s.interpret(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res := &ParseResult{Parsed: interp}
	for _, e := range events {
		if strings.EqualFold(e.Name, strings.TrimSpace(interp.Event)) {
			res.Match = &e
			break
		}
	}

	return res, nil
}

// interpret asks the model about text. Interpretations, which never contain
// ticket counts, are cached by a hash of the normalized text.
func (s *Service) interpret(ctx context.Context, text string) (domain.Interpretation, error) {
	if s.completer == nil {
		return domain.Interpretation{}, ErrUnavailable
	}

	load := func(ctx context.Context) (domain.Interpretation, error) {
		raw, err := s.completer.Complete(ctx, parseSystemPrompt, fmt.Sprintf("User message: %q", text))
		if err != nil {
			return domain.Interpretation{}, err
		}
		return decodeInterpretation(raw), nil
	}

	if s.cache == nil {
		return load(ctx)
	}

	sum := sha256.Sum256([]byte(strings.ToLower(text)))
	key := redisrepo.KeyInterpretation(hex.EncodeToString(sum[:]))

	return redisrepo.GetOrSetJSON(ctx, s.cache, key, s.cfg.InterpretationTTL, load)
}

type ConfirmResult struct {
	Message string        `json:"message"`
	Updated *domain.Event `json:"updated"`
}

// Confirm books qty tickets for ref through the booking service.
func (s *Service) Confirm(ctx context.Context, ref booking.EventRef, qty int) (*ConfirmResult, error) {
	const op = "service.assistant.Confirm"

	updated, err := s.booker.PurchaseQuantity(ctx, ref, qty)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &ConfirmResult{
		Message: fmt.Sprintf("Successfully booked %d ticket(s) for %s.", qty, updated.Name),
		Updated: updated,
	}, nil
}

type ChatReply struct {
	Reply   string              `json:"reply"`
	Context *domain.ChatContext `json:"context,omitempty"`
	Updated *domain.Event       `json:"updated,omitempty"`
}

const (
	replyNotUnderstood = "Sorry, I didn't understand that."
	replyUnsure        = "I'm not sure what to do yet!"
)

// Chat runs one conversational turn. chatCtx is the context returned by the
// previous turn, if any; it fills in the event and quantity when the user
// simply confirms.
func (s *Service) Chat(ctx context.Context, message string, chatCtx *domain.ChatContext) (*ChatReply, error) {
	const op = "service.assistant.Chat"

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingText)
	}

	if s.completer == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUnavailable)
	}

	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	raw, err := s.completer.Complete(ctx, chatSystemPrompt(events), chatUserPrompt(message, chatCtx))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	d, ok := decodeDecision(raw)
	if !ok {
		s.logger.WarnContext(ctx, "unparsable model output", "output", raw)
		return &ChatReply{Reply: replyNotUnderstood}, nil
	}

	switch d.Action {
	case domain.ChatGreet:
		return &ChatReply{Reply: orDefault(d.Reply, "Hi! I can list events or book tickets for you.")}, nil

	case domain.ChatList:
		return &ChatReply{Reply: listReply(d.Reply, events)}, nil

	case domain.ChatParse:
		return parseReply(d, events), nil

	case domain.ChatConfirm:
		reply, err := s.confirmReply(ctx, d, chatCtx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return reply, nil
	}

	return &ChatReply{Reply: replyUnsure}, nil
}

func listReply(intro string, events []domain.Event) string {
	if len(events) == 0 {
		return joinLines(intro, "There are no events right now.")
	}

	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, fmt.Sprintf("• %s (%d available)", e.Name, e.Available()))
	}

	return joinLines(intro, "", "Here are our current events:", strings.Join(lines, "\n"))
}

func parseReply(d decision, events []domain.Event) *ChatReply {
	if strings.TrimSpace(d.Event) == "" {
		return &ChatReply{Reply: "Which event would you like to book?"}
	}

	match, ok := booking.ResolveByName(events, d.Event)
	if !ok {
		return &ChatReply{
			Reply: fmt.Sprintf("I couldn't find %q in our events list. Could you check the name?", d.Event),
		}
	}

	tickets := d.Tickets
	if tickets <= 0 {
		tickets = 1
	}

	return &ChatReply{
		Reply: joinLines(
			d.Reply,
			"Event: "+match.Name,
			fmt.Sprintf("Tickets: %d", tickets),
			fmt.Sprintf("(%d available)", match.Available()),
			"Would you like to confirm this booking?",
		),
		Context: &domain.ChatContext{Action: domain.ChatConfirm, Event: match.Name, Tickets: tickets},
	}
}

func (s *Service) confirmReply(ctx context.Context, d decision, chatCtx *domain.ChatContext) (*ChatReply, error) {
	name, qty := d.Event, d.Tickets
	if chatCtx != nil {
		if strings.TrimSpace(name) == "" {
			name = chatCtx.Event
		}
		if qty <= 0 {
			qty = chatCtx.Tickets
		}
	}
	if qty <= 0 {
		qty = 1
	}

	if strings.TrimSpace(name) == "" {
		return &ChatReply{
			Reply: "I'm not sure which event you want to confirm. Could you say the event name again?",
		}, nil
	}

	updated, err := s.booker.PurchaseQuantity(ctx, booking.EventRef{Name: name}, qty)
	if err != nil {
		var insufficient *booking.InsufficientTicketsError
		switch {
		case errors.As(err, &insufficient):
			return &ChatReply{
				Reply: fmt.Sprintf("Sorry, only %d tickets left for %s.", insufficient.Available, insufficient.EventName),
			}, nil
		case errors.Is(err, booking.ErrEventNotFound):
			return &ChatReply{Reply: fmt.Sprintf("I couldn't find %q in our list.", name)}, nil
		}
		return nil, err
	}

	return &ChatReply{
		Reply:   joinLines(d.Reply, fmt.Sprintf("Successfully booked %d ticket(s) for %s.", qty, updated.Name)),
		Updated: updated,
	}, nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// joinLines joins parts with newlines, dropping a leading empty part.
func joinLines(parts ...string) string {
	for len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}
	return strings.Join(parts, "\n")
}
