// Package sender доставляет напоминания об окончании абонемента по почте.
// Сообщения приходят из очереди уведомлений, письма уходят через SMTP.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/gym-access-manager/internal/lib/sl"
	"github.com/magabrotheeeer/gym-access-manager/internal/lib/smtp"
	"github.com/magabrotheeeer/gym-access-manager/internal/models"
)

// Service отправляет письма-напоминания клиентам зала.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendExpiringReminder разбирает сообщение очереди и отправляет клиенту
// письмо о скором окончании абонемента. Письма клиентам пишутся по-испански.
func (s *Service) SendExpiringReminder(body []byte) error {
	var reminder models.ClientReminder
	if err := json.Unmarshal(body, &reminder); err != nil {
		s.log.Error("failed to unmarshal reminder", sl.Err(err))
		return fmt.Errorf("error unmarshalling reminder: %w", err)
	}

	to := []string{reminder.Email}
	subject := "Tu membresia esta por vencer"
	bodyText := fmt.Sprintf(
		"Hola, %s!\n\nTu membresia del gimnasio vence el %s (quedan %d dias).\n\nPasa a recepcion para renovarla y seguir entrenando sin interrupciones.",
		reminder.Name, reminder.ExpirationDate, reminder.DaysRemaining)

	return s.sendEmail(to, subject, bodyText)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	// после Quit соединение уже закрыто, ошибка Close здесь не интересна
	defer func() { _ = client.Close() }()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("reminder sent", "to", to)
	return nil
}
