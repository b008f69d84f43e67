package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viatra/viatra/internal/platform/auth"
)

// DefaultRecent is how much log history the recent endpoints return when
// the caller does not say.
const DefaultRecent = 20

type Service struct {
	chat     ChatRepository
	consults ConsultRepository
	profiles ProfileDirectory
}

func NewService(chat ChatRepository, consults ConsultRepository, profiles ProfileDirectory) *Service {
	return &Service{chat: chat, consults: consults, profiles: profiles}
}

// -- Chat --

// AppendMessage appends a chat message stamped with the current UTC clock.
// Text that trims to nothing is a silent no-op that returns no message,
// mirroring the send guard of the product. The author defaults to the
// acting clinician.
func (s *Service) AppendMessage(ctx context.Context, author, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if author == "" {
		author = auth.FromContext(ctx).Name
	}
	m := Message{When: time.Now().UTC(), Who: author, Msg: text}
	if err := s.chat.Append(ctx, m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Messages returns the whole chat log in insertion order.
func (s *Service) Messages(ctx context.Context) ([]Message, error) {
	return s.chat.Messages(ctx)
}

// Recent returns the last min(n, len) messages in insertion order.
func (s *Service) Recent(ctx context.Context, n int) ([]Message, error) {
	if n <= 0 {
		return nil, fmt.Errorf("last must be positive: %w", ErrValidation)
	}
	msgs, err := s.chat.Messages(ctx)
	if err != nil {
		return nil, err
	}
	if n < len(msgs) {
		msgs = msgs[len(msgs)-n:]
	}
	return msgs, nil
}

// -- Micro-consults --

// RequestConsult queues a tele-consult request for an existing profile. An
// empty profile name targets the session's active profile.
func (s *Service) RequestConsult(ctx context.Context, profile, topic, notes string) (ConsultRequest, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ConsultRequest{}, fmt.Errorf("topic is required: %w", ErrValidation)
	}
	name, err := s.profiles.ResolveProfile(ctx, profile)
	if err != nil {
		return ConsultRequest{}, fmt.Errorf("profile %q: %w", profile, ErrInvalidReference)
	}
	cr := ConsultRequest{Profile: name, Topic: topic, Notes: notes}
	if err := s.consults.Append(ctx, &cr); err != nil {
		return ConsultRequest{}, err
	}
	return cr, nil
}

// Consults returns the whole request queue in insertion order.
func (s *Service) Consults(ctx context.Context) ([]ConsultRequest, error) {
	return s.consults.Requests(ctx)
}

// RecentConsults returns the last min(n, len) requests in insertion order.
func (s *Service) RecentConsults(ctx context.Context, n int) ([]ConsultRequest, error) {
	if n <= 0 {
		return nil, fmt.Errorf("last must be positive: %w", ErrValidation)
	}
	requests, err := s.consults.Requests(ctx)
	if err != nil {
		return nil, err
	}
	if n < len(requests) {
		requests = requests[len(requests)-n:]
	}
	return requests, nil
}
