// internal/app/features/landing/landing.go
package landing

import (
	"html/template"
	"net/http"
	"strings"

	contentstore "github.com/Anaastro/landing-demo/internal/app/store/content"
	submissionstore "github.com/Anaastro/landing-demo/internal/app/store/submission"
	"github.com/Anaastro/landing-demo/internal/app/system/htmlsanitize"
	"github.com/Anaastro/landing-demo/internal/app/system/inputval"
	"github.com/Anaastro/landing-demo/internal/app/system/viewdata"
	"github.com/Anaastro/landing-demo/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler provides the public landing page.
type Handler struct {
	content     *contentstore.Store
	submissions *submissionstore.Store
	logger      *zap.Logger
}

// NewHandler creates a new landing Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		content:     contentstore.New(db),
		submissions: submissionstore.New(db),
		logger:      logger,
	}
}

// LandingVM is the view model for the landing page.
type LandingVM struct {
	viewdata.BaseVM
	Content    *models.LandingContent
	FormFields []models.ContactFormField
	FormSent   bool
	FormError  string
}

// FeatureVM is the view model for a feature detail page.
type FeatureVM struct {
	viewdata.BaseVM
	Feature *models.Feature
	// Description with admin-entered formatting, sanitized for rendering.
	Description template.HTML
}

// Routes returns a chi.Router with public landing routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Index)
	r.Post("/contact", h.SubmitContact)
	r.Get("/feature/{id}", h.ShowFeature)
	return r
}

// Index renders the landing page. The content document is seeded with
// defaults on the first visit.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	content, err := h.content.Load(r.Context())
	if err != nil {
		h.logger.Error("failed to load landing content", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	vm := LandingVM{
		BaseVM:     viewdata.New(r),
		Content:    content,
		FormFields: content.SortedFormFields(),
		FormSent:   r.URL.Query().Get("sent") == "1",
	}
	vm.Title = content.Logo.Text

	templates.Render(w, r, "landing/index", vm)
}

// ShowFeature renders the detail page for one feature.
func (h *Handler) ShowFeature(w http.ResponseWriter, r *http.Request) {
	content, err := h.content.Load(r.Context())
	if err != nil {
		h.logger.Error("failed to load landing content", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	feature := content.FeatureByID(chi.URLParam(r, "id"))
	if feature == nil {
		http.NotFound(w, r)
		return
	}

	vm := FeatureVM{
		BaseVM:      viewdata.New(r),
		Feature:     feature,
		Description: htmlsanitize.PrepareForDisplay(feature.Description),
	}
	vm.Title = feature.Title
	vm.BackURL = "/"

	templates.Render(w, r, "landing/feature", vm)
}

// SubmitContact accepts a visitor contact-form post. The stored form data
// only includes fields present in the current form config, so stray input
// names are dropped.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	content, err := h.content.Load(r.Context())
	if err != nil {
		h.logger.Error("failed to load landing content", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if content.ContactForm == nil || !content.ContactForm.Enabled {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	formData := make(map[string]string)
	var missing, invalid []string
	for _, field := range content.ContactForm.Fields {
		value := strings.TrimSpace(r.PostFormValue(field.Name))
		if field.Required && value == "" {
			missing = append(missing, field.Label)
			continue
		}
		if value == "" {
			continue
		}
		if field.Type == "email" && !inputval.IsValidEmail(value) {
			invalid = append(invalid, field.Label)
			continue
		}
		formData[field.Name] = value
	}

	var formError string
	switch {
	case len(missing) > 0:
		formError = "Completa los campos obligatorios: " + strings.Join(missing, ", ")
	case len(invalid) > 0:
		formError = "Revisa los campos con formato incorrecto: " + strings.Join(invalid, ", ")
	}
	if formError != "" {
		vm := LandingVM{
			BaseVM:     viewdata.New(r),
			Content:    content,
			FormFields: content.SortedFormFields(),
			FormError:  formError,
		}
		vm.Title = content.Logo.Text
		templates.Render(w, r, "landing/index", vm)
		return
	}

	if _, err := h.submissions.Insert(r.Context(), formData); err != nil {
		h.logger.Error("failed to save contact submission", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/?sent=1#contacto", http.StatusSeeOther)
}
