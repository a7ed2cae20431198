package wizard

import (
	"context"
	"sync"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/scriptwiz/internal/logger"
)

// ProgramSender is the subset of *tea.Program the adapter needs.
type ProgramSender interface {
	Send(msg tea.Msg)
}

// Navigator receives download locations from the controller and forwards
// them to the running program. It is created before the program exists,
// so the sender is attached later by Run.
type Navigator struct {
	mu     sync.Mutex
	sender ProgramSender
}

// NewNavigator creates a navigator with no program attached.
func NewNavigator() *Navigator {
	return &Navigator{}
}

// SetSender attaches the program that receives DownloadRequestedMsg.
func (n *Navigator) SetSender(s ProgramSender) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sender = s
}

// Navigate implements wizard.Navigator. It never blocks the caller.
func (n *Navigator) Navigate(_ context.Context, url string) {
	n.mu.Lock()
	s := n.sender
	n.mu.Unlock()

	if s == nil {
		logger.Warn("Download requested with no program attached: %s", url)
		return
	}
	go s.Send(DownloadRequestedMsg{URL: url})
}
