// internal/app/features/broadcast/broadcast.go
package broadcast

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	contactstore "github.com/Anaastro/landing-demo/internal/app/store/contact"
	messagelogstore "github.com/Anaastro/landing-demo/internal/app/store/messagelog"
	"github.com/Anaastro/landing-demo/internal/app/system/auditlog"
	"github.com/Anaastro/landing-demo/internal/app/system/auth"
	"github.com/Anaastro/landing-demo/internal/app/system/dispatch"
	"github.com/Anaastro/landing-demo/internal/app/system/inputval"
	"github.com/Anaastro/landing-demo/internal/app/system/jsonutil"
	"github.com/Anaastro/landing-demo/internal/app/system/normalize"
	"github.com/Anaastro/landing-demo/internal/app/system/uploader"
	"github.com/Anaastro/landing-demo/internal/app/system/viewdata"
	"github.com/Anaastro/landing-demo/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	maxImportSize = 10 << 20 // 10 MB spreadsheet
	maxMediaSize  = 32 << 20 // 32 MB attachment
	pageSize      = 25
)

// Handler provides the bulk messaging admin pages.
type Handler struct {
	contacts     *contactstore.Store
	logs         *messagelogstore.Store
	engine       *dispatch.Engine
	uploads      *uploader.Uploader
	sender       interface{ Configured() bool }
	auditLogger  *auditlog.Logger
	defaultDelay int
	logger       *zap.Logger
}

// NewHandler creates a new broadcast Handler. defaultDelay is the
// operator-configured per-message delay the compose form starts with;
// out-of-range values fall back to the engine default.
func NewHandler(
	db *mongo.Database,
	engine *dispatch.Engine,
	uploads *uploader.Uploader,
	sender interface{ Configured() bool },
	auditLogger *auditlog.Logger,
	defaultDelay int,
	logger *zap.Logger,
) *Handler {
	if defaultDelay < dispatch.MinDelaySeconds || defaultDelay > dispatch.MaxDelaySeconds {
		defaultDelay = dispatch.DefaultDelaySeconds
	}
	return &Handler{
		contacts:     contactstore.New(db),
		logs:         messagelogstore.New(db),
		engine:       engine,
		uploads:      uploads,
		sender:       sender,
		auditLogger:  auditLogger,
		defaultDelay: defaultDelay,
		logger:       logger,
	}
}

// actorID resolves the logged-in admin for audit entries.
func actorID(r *http.Request) primitive.ObjectID {
	if u, ok := auth.CurrentUser(r); ok {
		return u.UserID()
	}
	return primitive.NilObjectID
}

// Routes returns a chi.Router with broadcast routes mounted.
// Mounted under an admin-only gate in bootstrap.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Compose)
	r.Post("/contacts", h.AddContact)
	r.Post("/contacts/{id}/delete", h.DeleteContact)
	r.Post("/import", h.ImportContacts)
	r.Get("/template.csv", h.TemplateCSV)
	r.Get("/template.xlsx", h.TemplateXLSX)
	r.Post("/send", h.Send)
	r.Get("/status", h.Status)
	r.Post("/cancel", h.Cancel)
	r.Get("/history", h.History)
	return r
}

// ComposeVM is the view model for the compose page.
type ComposeVM struct {
	viewdata.BaseVM
	Contacts      []models.Contact
	Total         int64
	Page          int64
	TotalPages    int64
	PrevPage      int64
	NextPage      int64
	Query         string
	Configured    bool
	Running       bool
	MinDelay      int
	MaxDelay      int
	DefaultDelay  int
	Error         string
	Notice        string
	ImportSummary string
}

// Compose renders the contact list and message form.
func (h *Handler) Compose(w http.ResponseWriter, r *http.Request) {
	q := normalize.QueryParam(r.URL.Query().Get("q"))
	page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
	if page < 1 {
		page = 1
	}

	contacts, total, err := h.contacts.List(r.Context(), q, pageSize, page)
	if err != nil {
		h.logger.Error("failed to list contacts", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	snap, hasBatch := h.engine.Status()

	vm := ComposeVM{
		BaseVM:        viewdata.New(r),
		Contacts:      contacts,
		Total:         total,
		Page:          page,
		TotalPages:    (total + pageSize - 1) / pageSize,
		Query:         q,
		Configured:    h.sender.Configured(),
		Running:       hasBatch && snap.Running,
		MinDelay:      dispatch.MinDelaySeconds,
		MaxDelay:      dispatch.MaxDelaySeconds,
		DefaultDelay:  h.defaultDelay,
		Error:         r.URL.Query().Get("error"),
		Notice:        r.URL.Query().Get("notice"),
		ImportSummary: r.URL.Query().Get("import"),
	}
	if page > 1 {
		vm.PrevPage = page - 1
	}
	if page < vm.TotalPages {
		vm.NextPage = page + 1
	}
	vm.Title = "Mensajes Masivos"

	templates.Render(w, r, "broadcast/compose", vm)
}

// contactInput is the inline contact form, validated with inputval.
type contactInput struct {
	FirstName string `validate:"max=100" label:"El nombre"`
	LastName  string `validate:"max=100" label:"El apellido"`
	Phone     string `validate:"required,min=7,max=15" label:"El teléfono"`
}

// AddContact creates one contact from the inline form.
func (h *Handler) AddContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	phone := normalize.Phone(r.PostFormValue("phone"))
	input := contactInput{
		FirstName: strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:  strings.TrimSpace(r.PostFormValue("last_name")),
		Phone:     phone,
	}
	if res := inputval.Validate(input); res.HasErrors() {
		h.redirectCompose(w, r, "error", res.First())
		return
	}

	exists, err := h.contacts.PhoneExists(r.Context(), phone)
	if err != nil {
		h.logger.Error("failed to check phone", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if exists {
		h.redirectCompose(w, r, "error", "Ya existe un contacto con ese teléfono")
		return
	}

	_, err = h.contacts.Insert(r.Context(), models.Contact{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     phone,
	})
	if err != nil {
		h.logger.Error("failed to insert contact", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.redirectCompose(w, r, "notice", "Contacto agregado")
}

// DeleteContact removes one contact permanently.
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.contacts.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete contact", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.auditLogger.ContactsDeleted(r.Context(), r, actorID(r), 1)
	h.redirectCompose(w, r, "notice", "Contacto eliminado")
}

// ImportContacts ingests a CSV or XLSX upload and reports per-row counters.
func (h *Handler) ImportContacts(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		h.redirectCompose(w, r, "error", "El archivo es demasiado grande")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.redirectCompose(w, r, "error", "Selecciona un archivo para importar")
		return
	}
	defer file.Close()

	rows, err := ParseContactsFile(file, header.Filename)
	if err != nil {
		// Malformed file: zero progress, one error, nothing imported.
		h.logger.Warn("failed to parse import file",
			zap.String("filename", header.Filename), zap.Error(err))
		h.redirectCompose(w, r, "import", ImportResult{Errored: 1}.Summary())
		return
	}

	result, err := ImportRows(r.Context(), h.contacts, rows)
	if err != nil {
		h.logger.Error("import failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("contacts imported",
		zap.String("filename", header.Filename),
		zap.Int("total", result.TotalRead),
		zap.Int("added", result.Added),
		zap.Int("dup_file", result.SkippedInFile),
		zap.Int("dup_store", result.SkippedInStore),
		zap.Int("errors", result.Errored))
	h.auditLogger.ContactsImported(r.Context(), r, actorID(r), header.Filename,
		result.Added, result.SkippedInFile+result.SkippedInStore)
	h.redirectCompose(w, r, "import", result.Summary())
}

// TemplateCSV serves the importable example file as CSV.
func (h *Handler) TemplateCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="plantilla_contactos.csv"`)
	if err := WriteTemplateCSV(w); err != nil {
		h.logger.Error("failed to write csv template", zap.Error(err))
	}
}

// TemplateXLSX serves the importable example file as XLSX.
func (h *Handler) TemplateXLSX(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="plantilla_contactos.xlsx"`)
	if err := WriteTemplateXLSX(w); err != nil {
		h.logger.Error("failed to write xlsx template", zap.Error(err))
	}
}

// Send starts a background dispatch to the checked contacts. The posted
// id set is pruned against the store, so contacts removed since the page
// loaded are silently dropped rather than failing the batch.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	if !h.sender.Configured() {
		h.redirectCompose(w, r, "error", "La pasarela de WhatsApp no está configurada")
		return
	}

	if err := r.ParseMultipartForm(maxMediaSize); err != nil {
		h.redirectCompose(w, r, "error", "El archivo adjunto es demasiado grande")
		return
	}

	var ids []primitive.ObjectID
	for _, raw := range r.PostForm["contact_ids"] {
		if id, err := primitive.ObjectIDFromHex(raw); err == nil {
			ids = append(ids, id)
		}
	}
	contacts, err := h.contacts.GetByIDs(r.Context(), ids)
	if err != nil {
		h.logger.Error("failed to load selected contacts", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if len(contacts) == 0 {
		h.redirectCompose(w, r, "error", "Selecciona al menos un contacto")
		return
	}

	message := strings.TrimSpace(r.PostFormValue("message"))

	// Optional attachment: an uploaded file, or a pasted URL used as-is.
	var mediaURL string
	file, header, err := r.FormFile("media")
	switch {
	case err == nil:
		defer file.Close()
		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		_, mediaURL, err = h.uploads.Upload(r.Context(), "whatsapp", header.Filename, contentType, file)
		if err != nil {
			h.logger.Error("failed to upload media", zap.Error(err))
			h.redirectCompose(w, r, "error", "No se pudo subir el archivo adjunto")
			return
		}
	case errors.Is(err, http.ErrMissingFile):
		mediaURL = strings.TrimSpace(r.PostFormValue("media_url"))
	default:
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// Sending with no text needs either media or an explicit confirmation.
	if message == "" && mediaURL == "" && r.PostFormValue("confirm_empty") == "" {
		h.redirectCompose(w, r, "error", "El mensaje está vacío; confirma el envío sin texto")
		return
	}

	delaySeconds, _ := strconv.Atoi(r.PostFormValue("delay"))
	batchID, err := h.engine.Start(dispatch.Request{
		Contacts: contacts,
		Message:  message,
		MediaURL: mediaURL,
		Delay:    dispatch.ClampDelay(delaySeconds),
	})
	switch {
	case errors.Is(err, dispatch.ErrBusy):
		h.redirectCompose(w, r, "error", "Ya hay un envío en curso")
		return
	case err != nil:
		h.logger.Error("failed to start dispatch", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("dispatch accepted",
		zap.String("batch_id", batchID),
		zap.Int("contacts", len(contacts)))
	h.auditLogger.BroadcastStarted(r.Context(), r, actorID(r), batchID, len(contacts))
	h.redirectCompose(w, r, "notice", "Envío iniciado")
}

// Status returns the dispatch status board as JSON, polled by the
// compose page while a batch runs.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.engine.Status()
	if !ok {
		jsonutil.NotFound(w, "no dispatch has run")
		return
	}
	jsonutil.OK(w, snap)
}

// Cancel stops the running dispatch before its next send.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	if snap, ok := h.engine.Status(); ok && snap.Running {
		h.auditLogger.BroadcastCancelled(r.Context(), r, actorID(r), snap.BatchID)
	}
	h.engine.Cancel()
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		jsonutil.OK(w, map[string]string{"status": "cancelling"})
		return
	}
	h.redirectCompose(w, r, "notice", "Envío cancelado")
}

// HistoryVM is the view model for the delivery log page.
type HistoryVM struct {
	viewdata.BaseVM
	Entries    []models.MessageLog
	Total      int64
	Page       int64
	TotalPages int64
	PrevPage   int64
	NextPage   int64
}

// History lists past delivery attempts, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
	if page < 1 {
		page = 1
	}

	entries, total, err := h.logs.List(r.Context(), pageSize, page)
	if err != nil {
		h.logger.Error("failed to list message logs", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	vm := HistoryVM{
		BaseVM:     viewdata.New(r),
		Entries:    entries,
		Total:      total,
		Page:       page,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	if page > 1 {
		vm.PrevPage = page - 1
	}
	if page < vm.TotalPages {
		vm.NextPage = page + 1
	}
	vm.Title = "Historial de Envíos"
	vm.BackURL = "/admin/broadcast"

	templates.Render(w, r, "broadcast/history", vm)
}

func (h *Handler) redirectCompose(w http.ResponseWriter, r *http.Request, param, msg string) {
	http.Redirect(w, r, "/admin/broadcast?"+param+"="+url.QueryEscape(msg), http.StatusSeeOther)
}
