package observer

import (
	"strings"
	"time"

	"github.com/MKhiriev/farmlink/models"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const toastDuration = 3 * time.Second

// StatusMsg carries a status change into a bubbletea program.
type StatusMsg struct {
	Status models.ConnectionStatus
}

type clearToastMsg struct {
	seq int
}

// WaitForStatus returns a command that blocks until the next status change.
// It yields nil once the observer is closed.
func WaitForStatus(o *StatusObserver) tea.Cmd {
	return func() tea.Msg {
		status, ok := <-o.Updates()
		if !ok {
			return nil
		}
		return StatusMsg{Status: status}
	}
}

// StatusModel is a status bar component: a badge, a spinner while the
// channel is (re)connecting and the latest toast for a few seconds.
type StatusModel struct {
	observer *StatusObserver
	spinner  spinner.Model
	status   models.ConnectionStatus
	toast    string
	toastSeq int
}

func NewStatusModel(o *StatusObserver) StatusModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return StatusModel{observer: o, spinner: s, status: o.Status()}
}

func (m StatusModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, WaitForStatus(m.observer))
}

func (m StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StatusMsg:
		wasBusy := m.busy()
		m.status = msg.Status

		cmds := []tea.Cmd{WaitForStatus(m.observer)}
		if toast, ok := m.observer.TakeToast(); ok {
			m.toast = toast
			m.toastSeq++
			cmds = append(cmds, clearToastAfter(m.toastSeq))
		}
		if m.busy() && !wasBusy {
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m StatusModel) View() string {
	var b strings.Builder
	if m.busy() {
		b.WriteString(m.spinner.View())
	}
	b.WriteString(Badge(m.status))
	if m.status.LastError != "" && m.status.State != models.StateConnected {
		b.WriteString(errorStyle.Render(m.status.LastError))
	}
	if m.toast != "" {
		b.WriteString("\n")
		b.WriteString(toastStyle.Render(m.toast))
	}
	return b.String()
}

// Toast returns the toast currently shown.
func (m StatusModel) Toast() string {
	return m.toast
}

// Status returns the status currently shown.
func (m StatusModel) Status() models.ConnectionStatus {
	return m.status
}

func (m StatusModel) busy() bool {
	return m.status.State == models.StateConnecting || m.status.State == models.StateReconnecting
}

func clearToastAfter(seq int) tea.Cmd {
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return clearToastMsg{seq: seq}
	})
}
