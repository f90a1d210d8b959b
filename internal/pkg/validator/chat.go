package validator

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/northpole/elf-backend/internal/entity"
)

const (
	maxBudgetLength = 100
	maxAnswerLength = 2000
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateCreateChatLink validates CreateChatLinkRequest
func (v *Validator) ValidateCreateChatLink(req *entity.CreateChatLinkRequest) error {
	if req.NotificationEmail != nil && *req.NotificationEmail != "" {
		if _, err := mail.ParseAddress(*req.NotificationEmail); err != nil {
			return fmt.Errorf("%w: notification_email", entity.ErrInvalidFormat)
		}
	}

	if req.Budget != nil && len(*req.Budget) > maxBudgetLength {
		return fmt.Errorf("%w: budget exceeds %d characters", entity.ErrInvalidParameter, maxBudgetLength)
	}

	return nil
}

// ValidateSubmitAnswer validates answer submission
func (v *Validator) ValidateSubmitAnswer(req *entity.SubmitAnswerRequest) error {
	if strings.TrimSpace(req.Answer) == "" {
		return fmt.Errorf("%w: answer", entity.ErrMissingField)
	}

	if len(req.Answer) > maxAnswerLength {
		return fmt.Errorf("%w: answer exceeds %d characters", entity.ErrInvalidParameter, maxAnswerLength)
	}

	return nil
}
