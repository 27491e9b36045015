// internal/domain/models/content.go
package models

import (
	"time"
)

// LandingDocID is the fixed document id of the landing content singleton.
// The landing collection only ever holds one logical document; admin saves
// overwrite it wholesale (last writer wins).
const LandingDocID = "main"

// LogoConfig controls the navbar logo: either uploaded image, text, or both.
type LogoConfig struct {
	ImageURL  string `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	Text      string `bson:"text" json:"text"`
	ShowImage bool   `bson:"show_image" json:"showImage"`
}

// BannerContent is the hero section at the top of the landing page.
type BannerContent struct {
	Title    string `bson:"title" json:"title"`
	Subtitle string `bson:"subtitle" json:"subtitle"`
	ImageURL string `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	CTAText  string `bson:"cta_text" json:"ctaText"`
	CTALink  string `bson:"cta_link" json:"ctaLink"`
}

// Stat is a single headline number in the stats band.
type Stat struct {
	ID    string `bson:"id" json:"id"`
	Value string `bson:"value" json:"value"`
	Label string `bson:"label" json:"label"`
	Icon  string `bson:"icon" json:"icon"`
}

// StatsSection is the optional stats band.
type StatsSection struct {
	Enabled bool   `bson:"enabled" json:"enabled"`
	Stats   []Stat `bson:"stats" json:"stats"`
}

// Feature is one entry in the features grid. Each feature also gets a
// detail page at /feature/{id}.
type Feature struct {
	ID          string `bson:"id" json:"id"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
	Icon        string `bson:"icon" json:"icon"`
	ImageURL    string `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
}

// ProductWhatsApp is the optional click-to-chat config on a product card.
type ProductWhatsApp struct {
	Enabled     bool   `bson:"enabled" json:"enabled"`
	PhoneNumber string `bson:"phone_number" json:"phoneNumber"`
	Message     string `bson:"message" json:"message"`
}

// Product is a plan/product card.
type Product struct {
	ID          string          `bson:"id" json:"id"`
	Name        string          `bson:"name" json:"name"`
	Description string          `bson:"description" json:"description"`
	Price       string          `bson:"price" json:"price"`
	ImageURL    string          `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	Features    []string        `bson:"features" json:"features"`
	Highlighted bool            `bson:"highlighted,omitempty" json:"highlighted,omitempty"`
	WhatsApp    ProductWhatsApp `bson:"whatsapp,omitempty" json:"whatsapp,omitempty"`
}

// ProductsSection holds the product cards plus section heading.
type ProductsSection struct {
	Enabled  bool      `bson:"enabled" json:"enabled"`
	Title    string    `bson:"title" json:"title"`
	Subtitle string    `bson:"subtitle" json:"subtitle"`
	Products []Product `bson:"products" json:"products"`
}

// Testimonial is one customer quote.
type Testimonial struct {
	ID        string `bson:"id" json:"id"`
	Name      string `bson:"name" json:"name"`
	Role      string `bson:"role" json:"role"`
	Content   string `bson:"content" json:"content"`
	AvatarURL string `bson:"avatar_url,omitempty" json:"avatarUrl,omitempty"`
	Rating    int    `bson:"rating" json:"rating"`
}

// CTASection is the call-to-action block near the bottom of the page.
type CTASection struct {
	Title              string `bson:"title" json:"title"`
	Description        string `bson:"description" json:"description"`
	ButtonText         string `bson:"button_text" json:"buttonText"`
	ButtonLink         string `bson:"button_link" json:"buttonLink"`
	BackgroundImageURL string `bson:"background_image_url,omitempty" json:"backgroundImageUrl,omitempty"`
}

// SocialLinks are the footer social URLs; empty entries are not rendered.
type SocialLinks struct {
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	LinkedIn  string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
}

// FooterContent is the footer block.
type FooterContent struct {
	CompanyName string      `bson:"company_name" json:"companyName"`
	Description string      `bson:"description" json:"description"`
	Email       string      `bson:"email" json:"email"`
	Phone       string      `bson:"phone" json:"phone"`
	Address     string      `bson:"address" json:"address"`
	SocialLinks SocialLinks `bson:"social_links" json:"socialLinks"`
}

// Contact-form field types supported by the form builder.
const (
	FieldTypeText     = "text"
	FieldTypeEmail    = "email"
	FieldTypeTel      = "tel"
	FieldTypeTextarea = "textarea"
	FieldTypeSelect   = "select"
)

// ValidFieldTypes lists the field types the form builder accepts.
var ValidFieldTypes = []string{
	FieldTypeText,
	FieldTypeEmail,
	FieldTypeTel,
	FieldTypeTextarea,
	FieldTypeSelect,
}

// IsValidFieldType checks whether t is a supported form field type.
func IsValidFieldType(t string) bool {
	for _, v := range ValidFieldTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ContactFormField is one field of the configurable visitor contact form.
type ContactFormField struct {
	ID          string   `bson:"id" json:"id"`
	Name        string   `bson:"name" json:"name"`
	Label       string   `bson:"label" json:"label"`
	Type        string   `bson:"type" json:"type"`
	Placeholder string   `bson:"placeholder,omitempty" json:"placeholder,omitempty"`
	Required    bool     `bson:"required" json:"required"`
	Options     []string `bson:"options,omitempty" json:"options,omitempty"`
	Order       int      `bson:"order" json:"order"`
}

// ContactFormConfig is the visitor contact form schema plus copy.
type ContactFormConfig struct {
	Enabled        bool               `bson:"enabled" json:"enabled"`
	Title          string             `bson:"title" json:"title"`
	Subtitle       string             `bson:"subtitle" json:"subtitle"`
	ButtonText     string             `bson:"button_text" json:"buttonText"`
	SuccessMessage string             `bson:"success_message" json:"successMessage"`
	Fields         []ContactFormField `bson:"fields" json:"fields"`
}

// LandingContent is the whole landing page as a single document.
// The admin panel reads it, mutates a section, and writes the entire
// document back; there is no per-field update path.
type LandingContent struct {
	ID           string             `bson:"_id" json:"id"`
	Logo         LogoConfig         `bson:"logo" json:"logo"`
	Banner       BannerContent      `bson:"banner" json:"banner"`
	Stats        StatsSection       `bson:"stats" json:"stats"`
	Features     []Feature          `bson:"features" json:"features"`
	Products     ProductsSection    `bson:"products" json:"products"`
	Testimonials []Testimonial      `bson:"testimonials" json:"testimonials"`
	CTA          CTASection         `bson:"cta" json:"cta"`
	Footer       FooterContent      `bson:"footer" json:"footer"`
	ContactForm  *ContactFormConfig `bson:"contact_form,omitempty" json:"contactForm,omitempty"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// FeatureByID returns the feature with the given id, or nil.
func (c *LandingContent) FeatureByID(id string) *Feature {
	for i := range c.Features {
		if c.Features[i].ID == id {
			return &c.Features[i]
		}
	}
	return nil
}

// SortedFormFields returns the contact form fields ordered by Order.
// Returns nil when the form is absent or disabled.
func (c *LandingContent) SortedFormFields() []ContactFormField {
	if c.ContactForm == nil || !c.ContactForm.Enabled {
		return nil
	}
	fields := make([]ContactFormField, len(c.ContactForm.Fields))
	copy(fields, c.ContactForm.Fields)
	for i := 1; i < len(fields); i++ {
		for j := i; j > 0 && fields[j].Order < fields[j-1].Order; j-- {
			fields[j], fields[j-1] = fields[j-1], fields[j]
		}
	}
	return fields
}

// DefaultLandingContent returns the content document seeded when the site
// is first loaded and no document exists yet. Copy matches the original
// site defaults.
func DefaultLandingContent() *LandingContent {
	return &LandingContent{
		ID: LandingDocID,
		Logo: LogoConfig{
			Text:      "Mi Empresa",
			ShowImage: false,
		},
		Banner: BannerContent{
			Title:    "Bienvenido a Nuestra Plataforma",
			Subtitle: "La solución perfecta para tu negocio",
			CTAText:  "Comenzar Ahora",
			CTALink:  "#contacto",
		},
		Stats: StatsSection{
			Enabled: true,
			Stats: []Stat{
				{ID: "1", Value: "10K+", Label: "Clientes Felices", Icon: "👥"},
				{ID: "2", Value: "99%", Label: "Satisfacción", Icon: "⭐"},
				{ID: "3", Value: "24/7", Label: "Soporte", Icon: "💬"},
				{ID: "4", Value: "50+", Label: "Países", Icon: "🌍"},
			},
		},
		Features: []Feature{
			{ID: "1", Title: "Fácil de Usar", Description: "Interfaz intuitiva diseñada para todos", Icon: "🚀"},
			{ID: "2", Title: "Rápido y Confiable", Description: "Rendimiento optimizado garantizado", Icon: "⚡"},
			{ID: "3", Title: "Soporte 24/7", Description: "Siempre disponibles para ayudarte", Icon: "💬"},
		},
		Products: ProductsSection{
			Enabled:  false,
			Title:    "Nuestros Planes",
			Subtitle: "Elige el plan perfecto para tu negocio",
			Products: []Product{
				{
					ID: "1", Name: "Básico", Description: "Perfecto para empezar", Price: "$29/mes",
					Features: []string{"5 Usuarios", "10GB Almacenamiento", "Soporte Email"},
					WhatsApp: ProductWhatsApp{Message: "Hola, estoy interesado en el plan Básico"},
				},
				{
					ID: "2", Name: "Pro", Description: "Para equipos en crecimiento", Price: "$79/mes",
					Features:    []string{"Usuarios Ilimitados", "100GB Almacenamiento", "Soporte Prioritario", "API Access"},
					Highlighted: true,
					WhatsApp:    ProductWhatsApp{Message: "Hola, estoy interesado en el plan Pro"},
				},
				{
					ID: "3", Name: "Enterprise", Description: "Para grandes empresas", Price: "Personalizado",
					Features: []string{"Todo de Pro", "Almacenamiento Ilimitado", "Soporte 24/7", "Gestor Dedicado"},
					WhatsApp: ProductWhatsApp{Message: "Hola, estoy interesado en el plan Enterprise"},
				},
			},
		},
		Testimonials: []Testimonial{
			{
				ID: "1", Name: "Juan Pérez", Role: "CEO, Empresa XYZ",
				Content: "Esta plataforma transformó completamente nuestro negocio.",
				Rating:  5,
			},
		},
		CTA: CTASection{
			Title:       "¿Listo para empezar?",
			Description: "Únete a miles de empresas que ya confían en nosotros",
			ButtonText:  "Contactar Ahora",
			ButtonLink:  "#contacto",
		},
		Footer: FooterContent{
			CompanyName: "Mi Empresa",
			Description: "Innovación y excelencia desde 2025",
			Email:       "info@miempresa.com",
			Phone:       "+34 900 000 000",
			Address:     "Calle Principal 123, Madrid, España",
			SocialLinks: SocialLinks{
				Facebook:  "https://facebook.com",
				Twitter:   "https://twitter.com",
				Instagram: "https://instagram.com",
				LinkedIn:  "https://linkedin.com",
			},
		},
		ContactForm: &ContactFormConfig{
			Enabled:        true,
			Title:          "Contáctanos",
			Subtitle:       "Estamos aquí para ayudarte. Envíanos un mensaje y te responderemos pronto.",
			ButtonText:     "Enviar Mensaje",
			SuccessMessage: "¡Gracias por contactarnos! Te responderemos pronto.",
			Fields: []ContactFormField{
				{ID: "1", Name: "nombre", Label: "Nombre completo", Type: FieldTypeText, Placeholder: "Juan Pérez", Required: true, Order: 1},
				{ID: "2", Name: "email", Label: "Correo electrónico", Type: FieldTypeEmail, Placeholder: "juan@ejemplo.com", Required: true, Order: 2},
				{ID: "3", Name: "telefono", Label: "Teléfono", Type: FieldTypeTel, Placeholder: "+34 600 000 000", Required: false, Order: 3},
				{ID: "4", Name: "asunto", Label: "Asunto", Type: FieldTypeSelect, Placeholder: "Selecciona un asunto", Required: true,
					Options: []string{"Consulta general", "Soporte técnico", "Ventas", "Partnership", "Otro"}, Order: 4},
				{ID: "5", Name: "mensaje", Label: "Mensaje", Type: FieldTypeTextarea, Placeholder: "Escribe tu mensaje aquí...", Required: true, Order: 5},
			},
		},
	}
}

// DefaultSiteName is used in page titles when the content document has no
// logo text yet.
const DefaultSiteName = "Mi Empresa"
