// internal/app/features/admin/admin.go
package admin

import (
	"net/http"

	contactstore "github.com/Anaastro/landing-demo/internal/app/store/contact"
	contentstore "github.com/Anaastro/landing-demo/internal/app/store/content"
	messagelogstore "github.com/Anaastro/landing-demo/internal/app/store/messagelog"
	submissionstore "github.com/Anaastro/landing-demo/internal/app/store/submission"
	"github.com/Anaastro/landing-demo/internal/app/system/auditlog"
	"github.com/Anaastro/landing-demo/internal/app/system/uploader"
	"github.com/Anaastro/landing-demo/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler provides the admin dashboard and landing content editors.
type Handler struct {
	content     *contentstore.Store
	contacts    *contactstore.Store
	submissions *submissionstore.Store
	logs        *messagelogstore.Store
	uploads     *uploader.Uploader
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a new admin Handler.
func NewHandler(db *mongo.Database, uploads *uploader.Uploader, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		content:     contentstore.New(db),
		contacts:    contactstore.New(db),
		submissions: submissionstore.New(db),
		logs:        messagelogstore.New(db),
		uploads:     uploads,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// Routes returns a chi.Router with admin routes mounted.
// Mounted under an admin-only gate in bootstrap.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Dashboard)

	r.Route("/content", func(r chi.Router) {
		r.Get("/logo", h.EditLogo)
		r.Post("/logo", h.SaveLogo)
		r.Get("/banner", h.EditBanner)
		r.Post("/banner", h.SaveBanner)
		r.Get("/stats", h.EditStats)
		r.Post("/stats", h.SaveStats)
		r.Get("/features", h.EditFeatures)
		r.Post("/features", h.SaveFeatures)
		r.Post("/features/image", h.UploadFeatureImage)
		r.Get("/products", h.EditProducts)
		r.Post("/products", h.SaveProducts)
		r.Post("/products/image", h.UploadProductImage)
		r.Get("/testimonials", h.EditTestimonials)
		r.Post("/testimonials", h.SaveTestimonials)
		r.Post("/testimonials/image", h.UploadTestimonialImage)
		r.Get("/cta", h.EditCTA)
		r.Post("/cta", h.SaveCTA)
		r.Get("/footer", h.EditFooter)
		r.Post("/footer", h.SaveFooter)
		r.Get("/form", h.EditContactForm)
		r.Post("/form", h.SaveContactForm)
	})
	return r
}

// DashboardVM is the view model for the admin dashboard.
type DashboardVM struct {
	viewdata.BaseVM
	ContactCount      int64
	SubmissionCount   int64
	UnreadCount       int64
	MessageCount      int64
	MessagesPerDay    float64
	MessagesByStatus  map[string]int64
	ContentUpdatedAt  string
}

// Dashboard renders headline numbers for the site.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vm := DashboardVM{BaseVM: viewdata.New(r)}
	vm.Title = "Panel de Administración"

	if n, err := h.contacts.Count(ctx); err == nil {
		vm.ContactCount = n
	} else {
		h.logger.Warn("failed to count contacts", zap.Error(err))
	}
	if n, err := h.submissions.Count(ctx); err == nil {
		vm.SubmissionCount = n
	} else {
		h.logger.Warn("failed to count submissions", zap.Error(err))
	}
	if n, err := h.submissions.CountUnread(ctx); err == nil {
		vm.UnreadCount = n
	} else {
		h.logger.Warn("failed to count unread submissions", zap.Error(err))
	}
	if n, err := h.logs.Count(ctx); err == nil {
		vm.MessageCount = n
	} else {
		h.logger.Warn("failed to count messages", zap.Error(err))
	}
	if avg, err := h.logs.AveragePerDay(ctx, 7); err == nil {
		vm.MessagesPerDay = avg
	} else {
		h.logger.Warn("failed to compute message average", zap.Error(err))
	}
	if counts, err := h.logs.CountByStatus(ctx); err == nil {
		vm.MessagesByStatus = counts
	} else {
		h.logger.Warn("failed to count messages by status", zap.Error(err))
	}
	if content, err := h.content.Get(ctx); err == nil && content != nil {
		vm.ContentUpdatedAt = content.UpdatedAt.Local().Format("02/01/2006 15:04")
	}

	templates.Render(w, r, "admin/dashboard", vm)
}
