// internal/app/features/submissions/submissions.go
package submissions

import (
	"net/http"
	"sort"

	contentstore "github.com/Anaastro/landing-demo/internal/app/store/content"
	submissionstore "github.com/Anaastro/landing-demo/internal/app/store/submission"
	"github.com/Anaastro/landing-demo/internal/app/system/auditlog"
	"github.com/Anaastro/landing-demo/internal/app/system/auth"
	"github.com/Anaastro/landing-demo/internal/app/system/viewdata"
	"github.com/Anaastro/landing-demo/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler provides the contact submission admin pages.
type Handler struct {
	submissions *submissionstore.Store
	content     *contentstore.Store
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a new submissions Handler.
func NewHandler(db *mongo.Database, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		submissions: submissionstore.New(db),
		content:     contentstore.New(db),
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// Routes returns a chi.Router with submission routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/{id}/read", h.MarkRead)
	r.Post("/{id}/delete", h.Delete)
	return r
}

// SubmissionRow pairs a submission with its values ordered by the form
// field order, so the table columns line up across submissions.
type SubmissionRow struct {
	ID          string
	SubmittedAt string
	Read        bool
	Values      []string
}

// ListVM is the view model for the submissions page.
type ListVM struct {
	viewdata.BaseVM
	Columns []string
	Rows    []SubmissionRow
	Total   int
	Unread  int64
}

// List shows every submission, newest first. Column headers come from the
// current form config; values saved under field names no longer in the
// form are appended under their raw key.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.submissions.GetAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list submissions", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Columns follow the configured form; fall back to the union of keys
	// seen in the data when the form has no config.
	var fields []models.ContactFormField
	if content, err := h.content.Get(r.Context()); err == nil && content != nil && content.ContactForm != nil {
		fields = content.SortedFormFields()
		if fields == nil {
			fields = content.ContactForm.Fields
		}
	}

	var names, labels []string
	known := make(map[string]bool)
	for _, f := range fields {
		names = append(names, f.Name)
		labels = append(labels, f.Label)
		known[f.Name] = true
	}
	extra := make(map[string]bool)
	for _, s := range subs {
		for k := range s.FormData {
			if !known[k] && !extra[k] {
				extra[k] = true
			}
		}
	}
	extraNames := make([]string, 0, len(extra))
	for k := range extra {
		extraNames = append(extraNames, k)
	}
	sort.Strings(extraNames)
	names = append(names, extraNames...)
	labels = append(labels, extraNames...)

	unread, err := h.submissions.CountUnread(r.Context())
	if err != nil {
		h.logger.Warn("failed to count unread submissions", zap.Error(err))
	}

	vm := ListVM{
		BaseVM:  viewdata.New(r),
		Columns: labels,
		Total:   len(subs),
		Unread:  unread,
	}
	vm.Title = "Formularios de Contacto"
	vm.BackURL = "/admin"

	for _, s := range subs {
		row := SubmissionRow{
			ID:          s.ID.Hex(),
			SubmittedAt: s.SubmittedAt.Local().Format("02/01/2006 15:04"),
			Read:        s.Read,
		}
		for _, name := range names {
			row.Values = append(row.Values, s.FormData[name])
		}
		vm.Rows = append(vm.Rows, row)
	}

	templates.Render(w, r, "submissions/list", vm)
}

// MarkRead flips one submission to read. Safe to repeat; a submission
// never goes back to unread.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.submissions.MarkRead(r.Context(), id); err != nil {
		h.logger.Error("failed to mark submission read", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/submissions", http.StatusSeeOther)
}

// Delete removes one submission permanently.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.submissions.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete submission", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if u, ok := auth.CurrentUser(r); ok {
		h.auditLogger.SubmissionDeleted(r.Context(), r, u.UserID(), id.Hex())
	}
	http.Redirect(w, r, "/admin/submissions", http.StatusSeeOther)
}
