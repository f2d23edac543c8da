// Package consolemail logs outgoing mail instead of sending it. Used in
// development and in tests.
package consolemail

import (
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/smanielp/cactusgolf/core"
)

type Service struct {
	defaultFromEmail string
	subjPrefix       string
	logger           core.Logger

	mutex        sync.Mutex
	sentMessages []core.EmailMessage
}

var _ core.EmailService = (*Service)(nil)

func NewService(appName, defaultFromEmail string, logger core.Logger) *Service {
	return &Service{
		defaultFromEmail: defaultFromEmail,
		subjPrefix:       "[" + appName + "] ",
		logger:           logger,
	}
}

func (svc *Service) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if msg.HasRecipients() && msg.HasContent() {
			svc.send(*msg)
		}
	}
}

// SentMessages returns what was "sent" so far; tests assert on it.
func (svc *Service) SentMessages() []core.EmailMessage {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	msgs := make([]core.EmailMessage, len(svc.sentMessages))
	copy(msgs, svc.sentMessages)
	return msgs
}

func (svc *Service) send(msg core.EmailMessage) {
	body := &strings.Builder{}
	_, _ = fmt.Fprintf(body, "From: %s\r\n", svc.defaultFromEmail)
	_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n", svc.subjPrefix+msg.Subject)
	_, _ = fmt.Fprintf(body, "To: %s\r\n\r\n", svc.joinAddresses(msg.To))
	_, _ = fmt.Fprintf(body, "%s\r\n", msg.Body)

	svc.mutex.Lock()
	svc.sentMessages = append(svc.sentMessages, msg)
	svc.mutex.Unlock()

	svc.logger.Info(body.String())
}

func (svc *Service) joinAddresses(addrs []mail.Address) string {
	toJoin := make([]string, 0, len(addrs))
	for _, a := range addrs {
		toJoin = append(toJoin, a.String())
	}
	return strings.Join(toJoin, ", ")
}
