package progress

import (
	"fmt"
	"os"
	"sync"

	"github.com/chelnak/ysmrr"
	"github.com/mattn/go-isatty"

	"github.com/buildbeaver/chatdl/common/models"
)

// spinner is the part of a ysmrr spinner the observer drives.
type spinner interface {
	UpdateMessage(message string)
	Complete()
	Error()
}

// SpinnerObserver shows download progress on a terminal spinner.
type SpinnerObserver struct {
	manager   ysmrr.SpinnerManager
	spinner   spinner
	channelID models.ChannelID

	mu       sync.Mutex
	total    int
	finished bool
}

// IsTerminal returns true if progress can be drawn on stdout.
func IsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func NewSpinnerObserver(channelID models.ChannelID) *SpinnerObserver {
	manager := ysmrr.NewSpinnerManager()
	return newSpinnerObserver(manager, manager.AddSpinner(""), channelID)
}

func newSpinnerObserver(manager ysmrr.SpinnerManager, s spinner, channelID models.ChannelID) *SpinnerObserver {
	o := &SpinnerObserver{
		manager:   manager,
		spinner:   s,
		channelID: channelID,
	}
	s.UpdateMessage(o.message("starting"))
	return o
}

func (o *SpinnerObserver) Start() {
	if o.manager != nil {
		o.manager.Start()
	}
}

func (o *SpinnerObserver) PageFetched(page *models.Page, total int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.finished {
		return
	}
	o.total = total
	o.spinner.UpdateMessage(o.message(fmt.Sprintf("last status %d", page.StatusCode)))
}

func (o *SpinnerObserver) RateLimited() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.finished {
		return
	}
	o.spinner.UpdateMessage(o.message("rate limited, retrying"))
}

// Finish marks the spinner complete, or failed if err is not nil, and stops drawing.
// Further updates are ignored.
func (o *SpinnerObserver) Finish(err error) {
	o.mu.Lock()
	if !o.finished {
		o.finished = true
		if err != nil {
			o.spinner.UpdateMessage(o.message("failed"))
			o.spinner.Error()
		} else {
			o.spinner.UpdateMessage(o.message("done"))
			o.spinner.Complete()
		}
	}
	o.mu.Unlock()
	if o.manager != nil {
		o.manager.Stop()
	}
}

func (o *SpinnerObserver) message(state string) string {
	return fmt.Sprintf("channel %s: %d message(s), %s", o.channelID, o.total, state)
}
