// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"context"
	"net/http"

	contentstore "github.com/Anaastro/landing-demo/internal/app/store/content"
	submissionstore "github.com/Anaastro/landing-demo/internal/app/store/submission"
	"github.com/Anaastro/landing-demo/internal/app/system/auth"
	"github.com/Anaastro/landing-demo/internal/app/system/authz"
	"github.com/Anaastro/landing-demo/internal/app/system/timeouts"
	"github.com/Anaastro/landing-demo/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/gorilla/csrf"
	"go.mongodb.org/mongo-driver/mongo"
)

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.New(r),
//	    // page-specific fields...
//	}
type BaseVM struct {
	// Branding (from the landing content document)
	SiteName      string
	LogoText      string
	LogoURL       string
	ShowLogoImage bool

	// User context (from auth middleware)
	IsLoggedIn bool
	UserID     string
	LoginID    string
	Role       string
	UserName   string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// Security
	CSRFToken string // CSRF token for forms (use in hidden input field)

	// Admin nav badge
	UnreadSubmissions int64
}

// storageProvider is set by Init and used to generate asset URLs.
var storageProvider storage.Store

// globalDB is set by Init and used by New() to load landing content.
var globalDB *mongo.Database

// Init sets the storage provider and database for viewdata.
// Call this once at startup from bootstrap.
func Init(store storage.Store, db *mongo.Database) {
	storageProvider = store
	globalDB = db
}

// NewBaseVM creates a fully populated BaseVM for a page.
//
// Parameters:
//   - r: the HTTP request
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	vm := New(r)
	vm.Title = title
	vm.BackURL = httpnav.ResolveBackURL(r, backDefault)
	return vm
}

// New creates a BaseVM with branding loaded from the landing content.
// This is the standard way to create a BaseVM for most handlers.
func New(r *http.Request) BaseVM {
	role, name, userID, signedIn := authz.UserCtx(r)

	vm := BaseVM{
		SiteName:    models.DefaultSiteName,
		LogoText:    models.DefaultSiteName,
		IsLoggedIn:  signedIn,
		UserID:      userID.Hex(),
		Role:        role,
		UserName:    name,
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}

	// Get LoginID from session if logged in
	if signedIn {
		if user, ok := auth.CurrentUser(r); ok {
			vm.LoginID = user.LoginID
		}
	}

	if globalDB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		content, err := contentstore.New(globalDB).Get(ctx)
		if err == nil && content != nil {
			if content.Logo.Text != "" {
				vm.SiteName = content.Logo.Text
				vm.LogoText = content.Logo.Text
			}
			vm.ShowLogoImage = content.Logo.ShowImage && content.Logo.ImageURL != ""
			if vm.ShowLogoImage {
				vm.LogoURL = content.Logo.ImageURL
			}
		}

		// Unread badge only matters on admin pages
		if signedIn {
			if n, err := submissionstore.New(globalDB).CountUnread(ctx); err == nil {
				vm.UnreadSubmissions = n
			}
		}
	}

	return vm
}

// GetSiteName returns the configured site name, or the default if the
// content document has not been created yet.
func GetSiteName(ctx context.Context, db *mongo.Database) string {
	if db == nil {
		return models.DefaultSiteName
	}
	content, err := contentstore.New(db).Get(ctx)
	if err != nil || content == nil || content.Logo.Text == "" {
		return models.DefaultSiteName
	}
	return content.Logo.Text
}
