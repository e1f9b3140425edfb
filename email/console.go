package email

import "log"

type consoleService struct {
	logger *log.Logger
}

func NewConsoleService(logger *log.Logger) Service {
	return &consoleService{logger: logger}
}

func (s *consoleService) Send(msg Message) error {
	s.logger.Printf("email to=%s subject=%q\n%s", msg.To, msg.Subject, msg.Body)
	return nil
}
