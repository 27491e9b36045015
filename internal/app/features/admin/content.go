// internal/app/features/admin/content.go
package admin

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Anaastro/landing-demo/internal/app/system/auth"
	"github.com/Anaastro/landing-demo/internal/app/system/htmlsanitize"
	"github.com/Anaastro/landing-demo/internal/app/system/viewdata"
	"github.com/Anaastro/landing-demo/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxUploadSize = 32 << 20

// SectionVM is the shared view model for the content editor pages.
type SectionVM struct {
	viewdata.BaseVM
	Content *models.LandingContent
	Saved   bool
	Error   string
}

func (h *Handler) sectionVM(r *http.Request, title string, content *models.LandingContent) SectionVM {
	vm := SectionVM{
		BaseVM:  viewdata.New(r),
		Content: content,
		Saved:   r.URL.Query().Get("saved") == "1",
	}
	vm.Title = title
	vm.BackURL = "/admin"
	return vm
}

// loadContent fetches the landing document, seeding defaults on first
// access so editors never see a missing document.
func (h *Handler) loadContent(w http.ResponseWriter, r *http.Request) (*models.LandingContent, bool) {
	content, err := h.content.Load(r.Context())
	if err != nil {
		h.logger.Error("failed to load landing content", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	return content, true
}

// saveContent writes the whole document back and redirects to the editor.
func (h *Handler) saveContent(w http.ResponseWriter, r *http.Request, content *models.LandingContent, section string) {
	if err := h.content.Save(r.Context(), content); err != nil {
		h.logger.Error("failed to save landing content",
			zap.String("section", section), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if u, ok := auth.CurrentUser(r); ok {
		h.auditLogger.ContentUpdated(r.Context(), r, u.UserID(), section)
	}
	http.Redirect(w, r, "/admin/content/"+section+"?saved=1", http.StatusSeeOther)
}

// formImageURL uploads an optional image field and returns its public URL.
// Returns "" with ok=true when the field was left empty.
func (h *Handler) formImageURL(w http.ResponseWriter, r *http.Request, field, prefix string) (string, bool) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", true
	}
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return "", false
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, url, err := h.uploads.Upload(r.Context(), prefix, header.Filename, contentType, file)
	if err != nil {
		h.logger.Error("failed to upload image",
			zap.String("prefix", prefix), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return "", false
	}
	return url, true
}

/* ------------------------------- logo ------------------------------- */

func (h *Handler) EditLogo(w http.ResponseWriter, r *http.Request) {
	content, ok := h.loadContent(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "admin/logo", h.sectionVM(r, "Logo", content))
}

func (h *Handler) SaveLogo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	content, ok := h.loadContent(w, r)
	if !ok {
		return
	}

	content.Logo.Text = strings.TrimSpace(r.PostFormValue("text"))
	content.Logo.ShowImage = r.PostFormValue("show_image") != ""

	url, ok := h.formImageURL(w, r, "image", "logo")
	if !ok {
		return
	}
	if url != "" {
		content.Logo.ImageURL = url
	}

	h.saveContent(w, r, content, "logo")
}

/* ------------------------------ banner ------------------------------ */

func (h *Handler) EditBanner(w http.ResponseWriter, r *http.Request) {
	content, ok := h.loadContent(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "admin/banner", h.sectionVM(r, "Banner", content))
}

func (h *Handler) SaveBanner(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	content, ok := h.loadContent(w, r)
	if !ok {
		return
	}

	content.Banner.Title = strings.TrimSpace(r.PostFormValue("title"))
	content.Banner.Subtitle = strings.TrimSpace(r.PostFormValue("subtitle"))
	content.Banner.CTAText = strings.TrimSpace(r.PostFormValue("cta_text"))
	content.Banner.CTALink = strings.TrimSpace(r.PostFormValue("cta_link"))

	url, ok := h.formImageURL(w, r, "image", "banner")
	if !ok {
		return
	}
	if url != "" {
		content.Banner.ImageURL = url
	}

	h.saveContent(w, r, content, "banner")
}

/* ------------------------------- stats ------------------------------ */

func (h *Handler) EditStats(w http.ResponseWriter, r *http.Request) {
	content, ok := h.loadContent(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "admin/stats", h.sectionVM(r, "Estadísticas", content))
}

func (h *Handler) SaveStats(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	content, ok := h.loadContent(w, r)
	if !ok {
		return
	}

	content.Stats.Enabled = r.PostFormValue("enabled") != ""

	ids := r.PostForm["stat_id"]
	values := r.PostForm["stat_value"]
	labels := r.PostForm["stat_label"]
	icons := r.PostForm["stat_icon"]

	var stats []models.Stat
	for i := range values {
		value := strings.TrimSpace(values[i])
		label := strings.TrimSpace(formAt(labels, i))
		if value == "" && label == "" {
			continue
		}
		id := strings.TrimSpace(formAt(ids, i))
		if id == "" {
			id = uuid.New().String()
		}
		stats = append(stats, models.Stat{
			ID:    id,
			Value: value,
			Label: label,
			Icon:  strings.TrimSpace(formAt(icons, i)),
		})
	}
	content.Stats.Stats = stats

	h.saveContent(w, r, content, "stats")
}

/* ----------------------------- features ----------------------------- */

func (h *Handler) EditFeatures(w http.ResponseWriter, r *http.Request) {
	content, ok := h.loadContent(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "admin/features", h.sectionVM(r, "Características", content))
}

func (h *Handler) SaveFeatures(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	content, ok := h.loadContent(w, r)
	if !ok {
		return
	}

	ids := r.PostForm["feature_id"]
	titles := r.PostForm["feature_title"]
	descriptions := r.PostForm["feature_description"]
	icons := r.PostForm["feature_icon"]

	// Rebuild the list, keeping uploaded images of surviving entries.
	existing := make(map[string]string)
	for _, f := range content.Features {
		existing[f.ID] = f.ImageURL
	}

	var features []models.Feature
	for i := range titles {
		title := strings.TrimSpace(titles[i])
		if title == "" {
			continue
		}
		id := strings.TrimSpace(formAt(ids, i))
		if id == "" {
			id = uuid.New().String()
		}
		features = append(features, models.Feature{
			ID:          id,
			Title:       title,
			Description: htmlsanitize.Sanitize(strings.TrimSpace(formAt(descriptions, i))),
			Icon:        strings.TrimSpace(formAt(icons, i)),
			ImageURL:    existing[id],
		})
	}
	content.Features = features

	h.saveContent(w, r, content, "features")
}

// UploadFeatureImage attaches an image to one feature.
func (h *Handler) UploadFeatureImage(w http.ResponseWriter, r *http.Request) {
	h.uploadItemImage(w, r, "features", func(content *models.LandingContent, id, url string) bool {
		if f := content.FeatureByID(id); f != nil {
			f.ImageURL = url
			return true
		}
		return false
	})
}

/* ----------------------------- products ----------------------------- */

func (h *Handler) EditProducts(w http.ResponseWriter, r *http.Request) {
	content, ok := h.loadContent(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "admin/products", h.sectionVM(r, "Productos", content))
}

func (h *Handler) SaveProducts(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	content, ok := h.loadContent(w, r)
	if !ok {
		return
	}

	content.Products.Enabled = r.PostFormValue("enabled") != ""
	content.Products.Title = strings.TrimSpace(r.PostFormValue("title"))
	content.Products.Subtitle = strings.TrimSpace(r.PostFormValue("subtitle"))

	ids := r.PostForm["product_id"]
	names := r.PostForm["product_name"]
	descriptions := r.PostForm["product_description"]
	prices := r.PostForm["product_price"]
	featureLists := r.PostForm["product_features"]
	highlighted := toSet(r.PostForm["product_highlighted"])
	waEnabled := toSet(r.PostForm["product_wa_enabled"])
	waPhones := r.PostForm["product_wa_phone"]
	waMessages := r.PostForm["product_wa_message"]

	existing := make(map[string]string)
	for _, p := range content.Products.Products {
		existing[p.ID] = p.ImageURL
	}

	var products []models.Product
	for i := range names {
		name := strings.TrimSpace(names[i])
		if name == "" {
			continue
		}
		id := strings.TrimSpace(formAt(ids, i))
		if id == "" {
			id = uuid.New().String()
		}
		products = append(products, models.Product{
			ID:          id,
			Name:        name,
			Description: strings.TrimSpace(formAt(descriptions, i)),
			Price:       strings.TrimSpace(formAt(prices, i)),
			Features:    splitLines(formAt(featureLists, i)),
			Highlighted: highlighted[id],
			ImageURL:    existing[id],
			WhatsApp: models.ProductWhatsApp{
				Enabled:     waEnabled[id],
				PhoneNumber: strings.TrimSpace(formAt(waPhones, i)),
				Message:     strings.TrimSpace(formAt(waMessages, i)),
			},
		})
	}
	content.Products.Products = products

	h.saveContent(w, r, content, "products")
}

// UploadProductImage attaches an image to one product.
func (h *Handler) UploadProductImage(w http.ResponseWriter, r *http.Request) {
	h.uploadItemImage(w, r, "products", func(content *models.LandingContent, id, url string) bool {
		for i := range content.Products.Products {
			if content.Products.Products[i].ID == id {
				content.Products.Products[i].ImageURL = url
				return true
			}
		}
		return false
	})
}

/* --------------------------- testimonials --------------------------- */

func (h *Handler) EditTestimonials(w http.ResponseWriter, r *http.Request) {
	content, ok := h.loadContent(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "admin/testimonials", h.sectionVM(r, "Testimonios", content))
}

func (h *Handler) SaveTestimonials(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	content, ok := h.loadContent(w, r)
	if !ok {
		return
	}

	ids := r.PostForm["testimonial_id"]
	names := r.PostForm["testimonial_name"]
	roles := r.PostForm["testimonial_role"]
	texts := r.PostForm["testimonial_content"]
	ratings := r.PostForm["testimonial_rating"]

	existing := make(map[string]string)
	for _, t := range content.Testimonials {
		existing[t.ID] = t.AvatarURL
	}

	var testimonials []models.Testimonial
	for i := range names {
		name := strings.TrimSpace(names[i])
		if name == "" {
			continue
		}
		id := strings.TrimSpace(formAt(ids, i))
		if id == "" {
			id = uuid.New().String()
		}
		rating, _ := strconv.Atoi(formAt(ratings, i))
		if rating < 1 {
			rating = 1
		}
		if rating > 5 {
			rating = 5
		}
		testimonials = append(testimonials, models.Testimonial{
			ID:        id,
			Name:      name,
			Role:      strings.TrimSpace(formAt(roles, i)),
			Content:   strings.TrimSpace(formAt(texts, i)),
			Rating:    rating,
			AvatarURL: existing[id],
		})
	}
	content.Testimonials = testimonials

	h.saveContent(w, r, content, "testimonials")
}

// UploadTestimonialImage attaches an avatar to one testimonial.
func (h *Handler) UploadTestimonialImage(w http.ResponseWriter, r *http.Request) {
	h.uploadItemImage(w, r, "testimonials", func(content *models.LandingContent, id, url string) bool {
		for i := range content.Testimonials {
			if content.Testimonials[i].ID == id {
				content.Testimonials[i].AvatarURL = url
				return true
			}
		}
		return false
	})
}

/* -------------------------------- cta ------------------------------- */

func (h *Handler) EditCTA(w http.ResponseWriter, r *http.Request) {
	content, ok := h.loadContent(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "admin/cta", h.sectionVM(r, "Llamada a la Acción", content))
}

func (h *Handler) SaveCTA(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	content, ok := h.loadContent(w, r)
	if !ok {
		return
	}

	content.CTA.Title = strings.TrimSpace(r.PostFormValue("title"))
	content.CTA.Description = strings.TrimSpace(r.PostFormValue("description"))
	content.CTA.ButtonText = strings.TrimSpace(r.PostFormValue("button_text"))
	content.CTA.ButtonLink = strings.TrimSpace(r.PostFormValue("button_link"))

	url, ok := h.formImageURL(w, r, "background_image", "cta")
	if !ok {
		return
	}
	if url != "" {
		content.CTA.BackgroundImageURL = url
	}

	h.saveContent(w, r, content, "cta")
}

/* ------------------------------ footer ------------------------------ */

func (h *Handler) EditFooter(w http.ResponseWriter, r *http.Request) {
	content, ok := h.loadContent(w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "admin/footer", h.sectionVM(r, "Pie de Página", content))
}

func (h *Handler) SaveFooter(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	content, ok := h.loadContent(w, r)
	if !ok {
		return
	}

	content.Footer.CompanyName = strings.TrimSpace(r.PostFormValue("company_name"))
	content.Footer.Description = strings.TrimSpace(r.PostFormValue("description"))
	content.Footer.Email = strings.TrimSpace(r.PostFormValue("email"))
	content.Footer.Phone = strings.TrimSpace(r.PostFormValue("phone"))
	content.Footer.Address = strings.TrimSpace(r.PostFormValue("address"))
	content.Footer.SocialLinks = models.SocialLinks{
		Facebook:  strings.TrimSpace(r.PostFormValue("facebook")),
		Twitter:   strings.TrimSpace(r.PostFormValue("twitter")),
		Instagram: strings.TrimSpace(r.PostFormValue("instagram")),
		LinkedIn:  strings.TrimSpace(r.PostFormValue("linkedin")),
	}

	h.saveContent(w, r, content, "footer")
}

/* ---------------------------- contact form --------------------------- */

func (h *Handler) EditContactForm(w http.ResponseWriter, r *http.Request) {
	content, ok := h.loadContent(w, r)
	if !ok {
		return
	}
	if content.ContactForm == nil {
		content.ContactForm = models.DefaultLandingContent().ContactForm
	}
	templates.Render(w, r, "admin/form", h.sectionVM(r, "Formulario de Contacto", content))
}

func (h *Handler) SaveContactForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	content, ok := h.loadContent(w, r)
	if !ok {
		return
	}

	cfg := &models.ContactFormConfig{
		Enabled:        r.PostFormValue("enabled") != "",
		Title:          strings.TrimSpace(r.PostFormValue("title")),
		Subtitle:       strings.TrimSpace(r.PostFormValue("subtitle")),
		ButtonText:     strings.TrimSpace(r.PostFormValue("button_text")),
		SuccessMessage: strings.TrimSpace(r.PostFormValue("success_message")),
	}

	ids := r.PostForm["field_id"]
	names := r.PostForm["field_name"]
	labels := r.PostForm["field_label"]
	types := r.PostForm["field_type"]
	placeholders := r.PostForm["field_placeholder"]
	required := toSet(r.PostForm["field_required"])
	optionLists := r.PostForm["field_options"]

	for i := range names {
		name := strings.TrimSpace(names[i])
		if name == "" {
			continue
		}
		id := strings.TrimSpace(formAt(ids, i))
		if id == "" {
			id = uuid.New().String()
		}
		fieldType := formAt(types, i)
		if !models.IsValidFieldType(fieldType) {
			fieldType = models.FieldTypeText
		}
		field := models.ContactFormField{
			ID:          id,
			Name:        name,
			Label:       strings.TrimSpace(formAt(labels, i)),
			Type:        fieldType,
			Placeholder: strings.TrimSpace(formAt(placeholders, i)),
			Required:    required[id],
			Order:       i + 1,
		}
		if fieldType == models.FieldTypeSelect {
			field.Options = splitLines(formAt(optionLists, i))
		}
		cfg.Fields = append(cfg.Fields, field)
	}
	content.ContactForm = cfg

	h.saveContent(w, r, content, "form")
}

/* ------------------------------ helpers ------------------------------ */

// uploadItemImage handles the per-item image upload forms: a multipart
// post with an "id" naming the list entry and an "image" file.
func (h *Handler) uploadItemImage(
	w http.ResponseWriter,
	r *http.Request,
	section string,
	attach func(content *models.LandingContent, id, url string) bool,
) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	id := strings.TrimSpace(r.PostFormValue("id"))
	if id == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	content, ok := h.loadContent(w, r)
	if !ok {
		return
	}

	url, ok := h.formImageURL(w, r, "image", section)
	if !ok {
		return
	}
	if url == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if !attach(content, id, url) {
		http.NotFound(w, r)
		return
	}

	h.saveContent(w, r, content, section)
}

func formAt(values []string, i int) string {
	if i < 0 || i >= len(values) {
		return ""
	}
	return values[i]
}

// toSet turns posted checkbox values (entry ids) into a lookup set.
func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// splitLines turns textarea input into a trimmed, non-empty line list.
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
