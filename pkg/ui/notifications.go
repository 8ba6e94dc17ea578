package ui

import (
	"fmt"
	"os/exec"
	"runtime"
)

// NotificationSender delivers one desktop notification
type NotificationSender interface {
	Send(title, message string) error
}

// commandSender runs a platform notification tool
type commandSender struct {
	name string
	args func(title, message string) []string
}

func (c commandSender) Send(title, message string) error {
	return exec.Command(c.name, c.args(title, message)...).Run()
}

const windowsToast = `$t = [Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime]
$x = $t::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::ToastText02)
$n = $x.GetElementsByTagName("text")
[void]$n.Item(0).AppendChild($x.CreateTextNode(%q))
[void]$n.Item(1).AppendChild($x.CreateTextNode(%q))
$t::CreateToastNotifier("freegrab").Show([Windows.UI.Notifications.ToastNotification]::new($x))`

// platformSenders maps GOOS to the tool used for notifications
var platformSenders = map[string]commandSender{
	"linux": {
		name: "notify-send",
		args: func(title, message string) []string {
			return []string{"--app-name=freegrab", title, message}
		},
	},
	"darwin": {
		name: "osascript",
		args: func(title, message string) []string {
			return []string{"-e", fmt.Sprintf(`display notification %q with title %q`, message, title)}
		},
	},
	"windows": {
		name: "powershell",
		args: func(title, message string) []string {
			return []string{"-NoProfile", "-NonInteractive", "-Command", fmt.Sprintf(windowsToast, title, message)}
		},
	},
}

// Notifier sends run events to the desktop
type Notifier struct {
	sender NotificationSender
}

// NewNotifier picks the sender for the current platform. On other
// platforms notifications are silently dropped.
func NewNotifier() *Notifier {
	if s, ok := platformSenders[runtime.GOOS]; ok {
		return NewNotifierWithSender(s)
	}
	return NewNotifierWithSender(nil)
}

// NewNotifierWithSender creates a Notifier using sender
func NewNotifierWithSender(sender NotificationSender) *Notifier {
	return &Notifier{sender: sender}
}

// Send delivers a notification. Errors are dropped so a missing
// notification daemon never interrupts a run.
func (n *Notifier) Send(title, message string) {
	if n == nil || n.sender == nil {
		return
	}
	_ = n.sender.Send(title, message)
}
