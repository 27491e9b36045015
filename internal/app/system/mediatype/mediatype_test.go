package mediatype

import (
	"testing"

	"github.com/Anaastro/landing-demo/internal/domain/models"
)

func TestForExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{"jpg", "image/jpeg"},
		{".jpg", "image/jpeg"},
		{"JPG", "image/jpeg"},
		{" png ", "image/png"},
		{"mp4", "video/mp4"},
		{"mp3", "audio/mpeg"},
		{"pdf", "application/pdf"},
		{"xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{"", FallbackMime},
		{"exe", FallbackMime},
	}
	for _, tt := range tests {
		if got := ForExtension(tt.ext); got != tt.want {
			t.Errorf("ForExtension(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestForURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://cdn.example.com/media/foto.jpg", "image/jpeg"},
		{"https://cdn.example.com/media/video.mp4?token=abc", "video/mp4"},
		{"https://cdn.example.com/doc.pdf#page=2", "application/pdf"},
		{"media/archivo.png", "image/png"},
		{"https://cdn.example.com/sin-extension", FallbackMime},
	}
	for _, tt := range tests {
		if got := ForURL(tt.url); got != tt.want {
			t.Errorf("ForURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestFileNameFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://cdn.example.com/media/foto.jpg", "foto.jpg"},
		{"https://cdn.example.com/media/mi%20foto.jpg", "mi foto.jpg"},
		{"https://cdn.example.com/doc.pdf?v=3", "doc.pdf"},
		{"https://cdn.example.com/", "archivo"},
		{"", "archivo"},
	}
	for _, tt := range tests {
		if got := FileNameFromURL(tt.url); got != tt.want {
			t.Errorf("FileNameFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestMessageTypeForMime(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"image/jpeg", models.MessageTypeImage},
		{"image/png", models.MessageTypeImage},
		{"video/mp4", models.MessageTypeVideo},
		{"audio/mpeg", models.MessageTypeAudio},
		{"application/pdf", models.MessageTypeDocument},
		{"text/plain", models.MessageTypeDocument},
		{"", models.MessageTypeDocument},
	}
	for _, tt := range tests {
		if got := MessageTypeForMime(tt.mime); got != tt.want {
			t.Errorf("MessageTypeForMime(%q) = %q, want %q", tt.mime, got, tt.want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"foto.jpg", "foto.jpg"},
		{"mi foto.jpg", "mi_foto.jpg"},
		{"año-2024.pdf", "ao-2024.pdf"},
		{"../../etc/passwd", "....etcpasswd"},
		{"", "archivo"},
		{"¡¿!", "archivo"},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
