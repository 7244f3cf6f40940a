package member

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"strings"
	"sync"

	"devwrite/internal/domain/config"
	domainerr "devwrite/internal/domain/errors"
	devmail "devwrite/internal/mail"
)

var ErrAlreadyMember = errors.New("You are already a member")

// Application is the join form.
type Application struct {
	Name       string `form:"name" json:"name"`
	Email      string `form:"email" json:"email"`
	CareerPath string `form:"career_path" json:"careerPath"`
	Experience string `form:"experience" json:"experience"`
	PublishAt  string `form:"publish_at" json:"publishAt"`
	WhyJoin    string `form:"why_join" json:"whyJoin"`
}

func (a Application) Validate() error {
	var ve domainerr.ValidationError
	if strings.TrimSpace(a.Name) == "" {
		ve.Add("name", "is required")
	}
	if strings.TrimSpace(a.Email) == "" {
		ve.Add("email", "is required")
	} else if _, err := mail.ParseAddress(strings.TrimSpace(a.Email)); err != nil {
		ve.Add("email", "is not a valid address")
	}
	return ve.Err()
}

// Store is what Service needs from the database.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*Member, error)
	Insert(ctx context.Context, m *Member) error
}

var _ Store = (*Repository)(nil)

// Service registers members and welcomes them by mail.
type Service struct {
	store  Store
	sender devmail.Sender
	cfg    config.MailConfig

	wg sync.WaitGroup
}

func NewService(store Store, sender devmail.Sender, cfg config.MailConfig) *Service {
	return &Service{store: store, sender: sender, cfg: cfg}
}

// Join stores a new member. The welcome mail goes out in the background;
// a mail failure does not undo the registration.
func (s *Service) Join(ctx context.Context, a Application) (*Member, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.store.FindByEmail(ctx, a.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyMember
	}

	m := &Member{
		Name:       strings.TrimSpace(a.Name),
		Email:      a.Email,
		CareerPath: a.CareerPath,
		Experience: a.Experience,
		PublishAt:  a.PublishAt,
		WhyJoin:    a.WhyJoin,
	}
	if err := s.store.Insert(ctx, m); err != nil {
		return nil, err
	}
	log.Printf("[member] %s joined", m.Email)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.SendWelcome(m.Email, m.Name); err != nil {
			log.Printf("[member] welcome mail to %s failed: %v", m.Email, err)
		}
	}()
	return m, nil
}

// SendWelcome sends the welcome mail synchronously.
func (s *Service) SendWelcome(email, name string) error {
	return devmail.SendWelcome(s.sender, s.cfg, email, name)
}

// Wait blocks until background mails are done.
func (s *Service) Wait() {
	s.wg.Wait()
}
