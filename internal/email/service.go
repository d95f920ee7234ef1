package email

import (
	"fmt"
	"net/smtp"
)

// Service handles email sending via SMTP
type Service struct {
	host string
	port string
	from string
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendPendingRequests tells the admin a user submitted requests that await approval
func (s *Service) SendPendingRequests(to, user, reqType string, lines []RequestLine) error {
	subject := fmt.Sprintf("[Stock Ledger] %d %s request(s) from %s awaiting approval", len(lines), reqType, user)
	body := BuildPendingRequestsBody(user, reqType, lines)
	return s.send(to, subject, body)
}

// SendNegativeStockAlert tells the admin an approval left an item below zero
func (s *Service) SendNegativeStockAlert(to string, alert StockAlert) error {
	subject := fmt.Sprintf("[Stock Ledger] %s (%s) stock is negative: %d", alert.Item, alert.ItemCode, alert.Stock)
	body := BuildNegativeStockBody(alert)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
