package paymentdelivery

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matrix-system/matrix-pay/pkg/web"
)

// Notice is one user-facing message emitted by the payment pipeline.
type Notice struct {
	Message  string    `json:"message"`
	Severity string    `json:"severity"`
	Time     time.Time `json:"time"`
}

// noticeLimit bounds the retained notice history.
const noticeLimit = 20

// Notices retains the most recent payment notices and the section the client
// should be showing. It implements the pipeline's notifier contract.
type Notices struct {
	mu      sync.Mutex
	items   []Notice
	section string
}

func NewNotices() *Notices {
	return &Notices{section: "dashboard"}
}

// Notify appends a notice, dropping the oldest past the retention limit.
func (n *Notices) Notify(message, severity string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.items = append(n.items, Notice{
		Message:  message,
		Severity: severity,
		Time:     time.Now(),
	})

	if len(n.items) > noticeLimit {
		n.items = n.items[len(n.items)-noticeLimit:]
	}
}

// NavigateTo records the section the client should switch to.
func (n *Notices) NavigateTo(section string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.section = section
}

// List handles http request for the retained notices and current section.
func (n *Notices) List(gctx *gin.Context) {
	n.mu.Lock()
	items := make([]Notice, len(n.items))
	copy(items, n.items)
	section := n.section
	n.mu.Unlock()

	res := web.Response{
		Data: struct {
			Notices []Notice `json:"notices"`
			Section string   `json:"section"`
		}{
			Notices: items,
			Section: section,
		},
	}

	gctx.JSON(http.StatusOK, res)
}
