package services

import (
	"context"
	"encoding/json"
	"regexp"
	"unicode/utf8"

	"github.com/numberwatch/gateway/internal/models"
	"go.uber.org/zap"
)

// ContactBackend is the interface that wraps the backend contact form endpoint
type ContactBackend interface {
	// Method SubmitContact forward a contact message and return the backend answer unchanged.
	SubmitContact(ctx context.Context, msg models.ContactMessage) (json.RawMessage, error)
}

const (
	minContactMessage = 10
	maxContactMessage = 1000
	minContactSubject = 5
	maxContactSubject = 200
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type contactService struct {
	backend ContactBackend
	logger  *zap.Logger
}

// NewContactService creates a new contact service
func NewContactService(backend ContactBackend, logger *zap.Logger) *contactService {
	return &contactService{
		backend: backend,
		logger:  logger,
	}
}

// Submit validates and forwards a contact message
func (s *contactService) Submit(ctx context.Context, msg *models.ContactMessage) (json.RawMessage, error) {
	if err := validateContact(msg); err != nil {
		return nil, err
	}

	resp, err := s.backend.SubmitContact(ctx, *msg)
	if err != nil {
		s.logger.Error("failed to submit contact form", zap.Error(err))
		return nil, relay(err, "Failed to submit contact form")
	}

	return resp, nil
}

// validateContact checks the fields in a fixed order and reports the first problem
func validateContact(msg *models.ContactMessage) error {
	if msg.Name == "" || msg.Email == "" || msg.Subject == "" || msg.Message == "" {
		return badRequest("All fields are required: name, email, subject, message")
	}

	if !emailPattern.MatchString(msg.Email) {
		return badRequest("Invalid email format")
	}

	messageLen := utf8.RuneCountInString(msg.Message)
	if messageLen < minContactMessage {
		return badRequest("Message must be at least 10 characters long")
	}
	if messageLen > maxContactMessage {
		return badRequest("Message must be less than 1000 characters")
	}

	subjectLen := utf8.RuneCountInString(msg.Subject)
	if subjectLen < minContactSubject {
		return badRequest("Subject must be at least 5 characters long")
	}
	if subjectLen > maxContactSubject {
		return badRequest("Subject must be less than 200 characters")
	}

	return nil
}
