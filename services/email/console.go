package emailsvc

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/trezcool/darasa/core"
)

// consoleService prints emails to the console. Used in DEV & TEST modes.
type consoleService struct {
	conf *core.Config
	sync bool // render & print synchronously (tests)
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) *consoleService {
	return &consoleService{conf: conf}
}

// NewConsoleServiceMock sends synchronously so tests can assert right after.
func NewConsoleServiceMock(conf *core.Config) *consoleService {
	return &consoleService{conf: conf, sync: true}
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		msg := msg
		if svc.sync {
			svc.send(msg)
		} else {
			go svc.send(msg)
		}
	}
}

func (svc consoleService) send(msg *core.EmailMessage) {
	if err := msg.Render(svc.conf); err != nil {
		fmt.Printf("rendering email: %v\n", err)
		return
	}
	if !msg.HasRecipients() || !msg.HasContent() {
		return
	}

	tos := make([]string, 0, len(msg.To))
	for _, to := range msg.To {
		tos = append(tos, to.String())
	}
	from := svc.conf.DefaultFromEmail()

	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("From: %s\n", (&mail.Address{Name: from.Name, Address: from.Address}).String())
	fmt.Printf("To: %s\n", strings.Join(tos, ", "))
	fmt.Printf("Subject: [%s] %s\n", svc.conf.AppName, msg.Subject)
	fmt.Println(msg.TextContent)
	fmt.Println(strings.Repeat("-", 70))
}
