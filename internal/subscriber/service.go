package subscriber

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/lib/pq"
	"github.com/nicholas-fedor/shoutrrr"

	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/subscriber/entity"
	"github.com/ovaphlow/pitchfork/service-stefano-api/pkg/utilities"
)

// Store persists subscribers.
type Store interface {
	Create(ctx context.Context, s *entity.Subscriber) error
	List(ctx context.Context) ([]*entity.Subscriber, error)
}

var (
	ErrInvalidURL        = errors.New("a valid notification service url is required")
	ErrAlreadySubscribed = errors.New("target already subscribed")
	ErrLabelTooLong      = errors.New("label must be at most 64 characters")
)

// maxLabelLen matches the label column width.
const maxLabelLen = 64

// URLValidator reports whether a target URL names a usable delivery service.
type URLValidator func(rawURL string) error

// ShoutrrrValidator accepts URLs shoutrrr can build a sender for.
func ShoutrrrValidator(rawURL string) error {
	_, err := shoutrrr.CreateSender(rawURL)
	return err
}

type Service struct {
	store    Store
	validate URLValidator
}

// NewService returns a Service; a nil validator defaults to ShoutrrrValidator.
func NewService(s Store, validate URLValidator) *Service {
	if validate == nil {
		validate = ShoutrrrValidator
	}
	return &Service{store: s, validate: validate}
}

func (s *Service) Subscribe(ctx context.Context, rawURL, label string) (*entity.Subscriber, error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if rawURL == "" || err != nil || u.Scheme == "" {
		return nil, ErrInvalidURL
	}
	if err := s.validate(rawURL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	label = strings.TrimSpace(label)
	if utf8.RuneCountInString(label) > maxLabelLen {
		return nil, ErrLabelTooLong
	}
	sub := &entity.Subscriber{
		ID:    utilities.NewSnowflakeID(),
		URL:   rawURL,
		Label: label,
	}
	if err := s.store.Create(ctx, sub); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}
	return sub, nil
}

func (s *Service) List(ctx context.Context) ([]*entity.Subscriber, error) {
	return s.store.List(ctx)
}
