//go:build windows

package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

const toastScript = `[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType=Windows Runtime] > $null; ` +
	`$template = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::%s); ` +
	`$texts = $template.GetElementsByTagName("text"); ` +
	`$texts.Item(0).AppendChild($template.CreateTextNode(%s)) > $null; ` +
	`$texts.Item(1).AppendChild($template.CreateTextNode(%s)) > $null; ` +
	`%s` +
	`[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier(%s).Show([Windows.UI.Notifications.ToastNotification]::new($template));`

// send raises a toast through PowerShell.
func send(ctx context.Context, title, body string, opts Options) error {
	kind, image := "ToastText02", ""
	if icon := strings.TrimSpace(opts.IconPath); icon != "" {
		kind = "ToastImageAndText02"
		image = fmt.Sprintf(`$template.GetElementsByTagName("image").Item(0).SetAttribute("src", %s); `, psQuote(icon))
	}
	script := fmt.Sprintf(toastScript, kind, psQuote(title), psQuote(body), image, psQuote(AppName))
	return exec.CommandContext(ctx, "powershell.exe", "-NoProfile", "-Command", script).Run()
}
