package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskflowhq/taskflow/internal/core/notify"
	"github.com/taskflowhq/taskflow/internal/core/styles"
)

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// ToastView renders toast notifications as a right-aligned stack.
type ToastView struct {
	controller *ToastController
}

func NewToastView(controller *ToastController) *ToastView {
	return &ToastView{controller: controller}
}

// View renders the toast stack as a single string with toasts stacked
// vertically (oldest at top, newest at bottom).
func (v *ToastView) View() string {
	toasts := v.controller.Toasts()
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, renderToast(t))
	}

	return strings.Join(rendered, "\n")
}

func renderToast(t toast) string {
	var icon string
	var style lipgloss.Style

	switch t.notification.SeverityOrDefault() {
	case notify.SeverityError:
		icon = styles.IconNotifyError
		style = styles.ToastErrorStyle
	case notify.SeverityWarning:
		icon = styles.IconNotifyWarning
		style = styles.ToastWarningStyle
	case notify.SeveritySuccess:
		icon = styles.IconNotifySuccess
		style = styles.ToastSuccessStyle
	default:
		icon = styles.IconNotifyInfo
		style = styles.ToastInfoStyle
	}

	content := icon + " " + t.notification.Message
	return style.Width(toastWidth).Render(content)
}

// Footer renders the toast stack right-aligned in a band of the given
// width, for placement above the status bar.
func (v *ToastView) Footer(width int) string {
	content := v.View()
	if content == "" {
		return ""
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, content)
}
