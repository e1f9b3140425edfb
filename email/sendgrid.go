package email

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendgridService struct {
	client     *sendgrid.Client
	from       *sgmail.Email
	subjPrefix string
}

func NewSendGridService(key, appName, fromEmail string) Service {
	return &sendgridService{
		client:     sendgrid.NewSendClient(key),
		from:       sgmail.NewEmail(appName, fromEmail),
		subjPrefix: "[" + appName + "] ",
	}
}

func (s *sendgridService) Send(msg Message) error {
	m := sgmail.NewSingleEmail(
		s.from,
		s.subjPrefix+msg.Subject,
		sgmail.NewEmail("", msg.To),
		msg.Body,
		"",
	)
	resp, err := s.client.Send(m)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid responded with status %d", resp.StatusCode)
	}
	return nil
}
