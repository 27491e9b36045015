// Package dispatch runs bulk message sends in the background. One batch
// runs at a time: contacts are messaged strictly in order with a pause
// between sends, every attempt is logged, and the in-memory status board
// can be polled while the batch runs. Cancelling stops the batch before
// the next send; contacts already sent keep their outcome.
package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	messagelogstore "github.com/Anaastro/landing-demo/internal/app/store/messagelog"
	"github.com/Anaastro/landing-demo/internal/app/system/mediatype"
	"github.com/Anaastro/landing-demo/internal/app/system/whatsapp"
	"github.com/Anaastro/landing-demo/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Per-contact delay bounds, in seconds.
const (
	MinDelaySeconds     = 1
	MaxDelaySeconds     = 10
	DefaultDelaySeconds = 2
)

// ErrBusy is returned by Start when a batch is already running.
var ErrBusy = errors.New("a dispatch is already in progress")

// ErrNoContacts is returned by Start when the request has no recipients.
var ErrNoContacts = errors.New("no contacts to send to")

// ConnectionErrorMessage is logged when the gateway could not be reached
// at all, as opposed to rejecting the message.
const ConnectionErrorMessage = "Error de conexión"

// Per-contact status values on the board. A contact starts pending, moves
// to sending when its attempt begins, and ends in exactly one terminal
// state.
const (
	StatusPending    = "pendiente"
	StatusSending    = "enviando"
	StatusSuccessful = models.MessageStatusSuccessful
	StatusError      = models.MessageStatusError
	StatusCancelled  = models.MessageStatusCancelled
)

// Sender delivers a single message. Implemented by the gateway client.
type Sender interface {
	Send(ctx context.Context, toNumber, messageType string, content models.MessageContent) error
}

// Request describes one batch.
type Request struct {
	Contacts []models.Contact
	Message  string
	MediaURL string // already hosted somewhere reachable, empty for text-only
	Delay    time.Duration
}

// ContactStatus is one row of the status board.
type ContactStatus struct {
	ContactID string `json:"contactId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// Snapshot is a point-in-time copy of a batch's progress. It is safe to
// retain after the batch finishes.
type Snapshot struct {
	BatchID    string          `json:"batchId"`
	Running    bool            `json:"running"`
	Cancelled  bool            `json:"cancelled"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt,omitempty"`
	Total      int             `json:"total"`
	Sent       int             `json:"sent"`
	Failed     int             `json:"failed"`
	Statuses   []ContactStatus `json:"statuses"`
}

// batch is the running (or last finished) dispatch.
type batch struct {
	id         string
	cancel     context.CancelFunc
	running    bool
	cancelled  bool
	startedAt  time.Time
	finishedAt time.Time
	statuses   []ContactStatus
}

// Engine owns the single dispatch slot.
type Engine struct {
	sender Sender
	logs   *messagelogstore.Store
	log    *zap.Logger

	mu   sync.Mutex
	cur  *batch
	wg   sync.WaitGroup
	base context.Context
	stop context.CancelFunc
}

// New creates a dispatch engine. Batches run on a context detached from
// request lifetimes; Shutdown cancels it.
func New(sender Sender, logs *messagelogstore.Store, log *zap.Logger) *Engine {
	base, stop := context.WithCancel(context.Background())
	return &Engine{
		sender: sender,
		logs:   logs,
		log:    log,
		base:   base,
		stop:   stop,
	}
}

// ClampDelay forces a per-contact delay into the allowed range. Zero or
// negative means the caller sent nothing usable, so the default applies.
func ClampDelay(seconds int) time.Duration {
	if seconds <= 0 {
		seconds = DefaultDelaySeconds
	}
	if seconds < MinDelaySeconds {
		seconds = MinDelaySeconds
	}
	if seconds > MaxDelaySeconds {
		seconds = MaxDelaySeconds
	}
	return time.Duration(seconds) * time.Second
}

// Personalize substitutes contact placeholders in a message template.
// Recognized placeholders are {nombre}, {apellido} and {nombreCompleto};
// anything else in braces is left as typed.
func Personalize(template string, contact models.Contact) string {
	r := strings.NewReplacer(
		"{nombre}", contact.FirstName,
		"{apellido}", contact.LastName,
		"{nombreCompleto}", contact.FullName(),
	)
	return r.Replace(template)
}

// Start begins a batch in the background and returns its id. Fails with
// ErrBusy if a batch is already running.
func (e *Engine) Start(req Request) (string, error) {
	if len(req.Contacts) == 0 {
		return "", ErrNoContacts
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cur != nil && e.cur.running {
		return "", ErrBusy
	}

	ctx, cancel := context.WithCancel(e.base)
	b := &batch{
		id:        uuid.New().String(),
		cancel:    cancel,
		running:   true,
		startedAt: time.Now().UTC(),
		statuses:  make([]ContactStatus, len(req.Contacts)),
	}
	for i, c := range req.Contacts {
		b.statuses[i] = ContactStatus{
			ContactID: c.ID.Hex(),
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Phone:     c.Phone,
			Status:    StatusPending,
		}
	}
	e.cur = b

	e.wg.Add(1)
	go e.run(ctx, b, req)

	e.log.Info("dispatch started",
		zap.String("batch_id", b.id),
		zap.Int("contacts", len(req.Contacts)),
		zap.Duration("delay", req.Delay))
	return b.id, nil
}

// Cancel stops the running batch before its next send. Contacts not yet
// attempted are marked cancelled; the contact currently sending finishes
// its attempt. No-op when nothing is running.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cur == nil || !e.cur.running {
		return
	}
	e.cur.cancelled = true
	e.cur.cancel()
	e.log.Info("dispatch cancel requested", zap.String("batch_id", e.cur.id))
}

// Status returns a snapshot of the current or most recent batch.
// ok is false when no batch has ever run.
func (e *Engine) Status() (Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cur == nil {
		return Snapshot{}, false
	}

	b := e.cur
	snap := Snapshot{
		BatchID:    b.id,
		Running:    b.running,
		Cancelled:  b.cancelled,
		StartedAt:  b.startedAt,
		FinishedAt: b.finishedAt,
		Total:      len(b.statuses),
		Statuses:   make([]ContactStatus, len(b.statuses)),
	}
	copy(snap.Statuses, b.statuses)
	for _, s := range snap.Statuses {
		switch s.Status {
		case StatusSuccessful:
			snap.Sent++
		case StatusError:
			snap.Failed++
		}
	}
	return snap, true
}

// Shutdown cancels any running batch and waits for its goroutine, within
// the deadline of ctx.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.stop()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) setStatus(b *batch, i int, status, errMsg string) {
	e.mu.Lock()
	b.statuses[i].Status = status
	b.statuses[i].Error = errMsg
	e.mu.Unlock()
}

func (e *Engine) run(ctx context.Context, b *batch, req Request) {
	defer e.wg.Done()

	// Resolve media once; every contact gets the same attachment.
	messageType := models.MessageTypeText
	var mimeType, fileName string
	if req.MediaURL != "" {
		mimeType = mediatype.ForURL(req.MediaURL)
		fileName = mediatype.FileNameFromURL(req.MediaURL)
		messageType = mediatype.MessageTypeForMime(mimeType)
	}
	delaySeconds := int(req.Delay / time.Second)

	for i, contact := range req.Contacts {
		if ctx.Err() != nil {
			e.markRemaining(b, i)
			break
		}

		e.setStatus(b, i, StatusSending, "")

		content := models.MessageContent{
			Text:     Personalize(req.Message, contact),
			MediaURL: req.MediaURL,
			MimeType: mimeType,
			FileName: fileName,
		}

		entry := models.MessageLog{
			BatchID:      b.id,
			ToNumber:     contact.Phone,
			Phone:        contact.Phone,
			FirstName:    contact.FirstName,
			LastName:     contact.LastName,
			MessageType:  messageType,
			Content:      content,
			DelaySeconds: delaySeconds,
		}

		err := e.sender.Send(ctx, contact.Phone, messageType, content)
		switch {
		case err == nil:
			entry.Status = models.MessageStatusSuccessful
			e.setStatus(b, i, StatusSuccessful, "")
		case ctx.Err() != nil:
			// Attempt interrupted by cancellation; count this contact as
			// not sent rather than failed.
			entry.Status = models.MessageStatusCancelled
			e.setStatus(b, i, StatusCancelled, "")
		default:
			msg := errorMessage(err)
			entry.Status = models.MessageStatusError
			entry.ErrorMessage = msg
			e.setStatus(b, i, StatusError, msg)
			e.log.Warn("send failed",
				zap.String("batch_id", b.id),
				zap.String("phone", contact.Phone),
				zap.Error(err))
		}

		// Log with a fresh context so a cancelled batch still records the
		// attempt it was in the middle of.
		logCtx, logCancel := context.WithTimeout(context.Background(), 10*time.Second)
		if logErr := e.logs.Insert(logCtx, entry); logErr != nil {
			e.log.Error("failed to record message log",
				zap.String("batch_id", b.id),
				zap.String("phone", contact.Phone),
				zap.Error(logErr))
		}
		logCancel()

		if i < len(req.Contacts)-1 {
			if !sleepCtx(ctx, req.Delay) {
				e.markRemaining(b, i+1)
				break
			}
		}
	}

	e.mu.Lock()
	b.running = false
	b.finishedAt = time.Now().UTC()
	cancelled := b.cancelled
	e.mu.Unlock()

	e.log.Info("dispatch finished",
		zap.String("batch_id", b.id),
		zap.Bool("cancelled", cancelled))
}

// markRemaining flips every still-pending contact from index i on to
// cancelled.
func (e *Engine) markRemaining(b *batch, i int) {
	e.mu.Lock()
	for ; i < len(b.statuses); i++ {
		if b.statuses[i].Status == StatusPending || b.statuses[i].Status == StatusSending {
			b.statuses[i].Status = StatusCancelled
		}
	}
	e.mu.Unlock()
}

// sleepCtx pauses for d, returning false if ctx was cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// errorMessage renders a send failure for the log record. Gateway
// rejections keep their message; transport failures collapse to a fixed
// connection error string.
func errorMessage(err error) string {
	var gerr *whatsapp.GatewayError
	if errors.As(err, &gerr) {
		return gerr.Error()
	}
	return ConnectionErrorMessage
}
