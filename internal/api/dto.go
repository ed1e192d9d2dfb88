package api

import (
	"github.com/starford/aquatrack/internal/cache"
	"github.com/starford/aquatrack/internal/loader"
	"github.com/starford/aquatrack/internal/models"
	"github.com/starford/aquatrack/internal/storage"
)

// DocumentResponse is a loaded document with where it came from.
type DocumentResponse struct {
	Origin   loader.Origin    `json:"origin"`
	Source   string           `json:"source,omitempty"`
	Status   []models.Status  `json:"status"`
	Document *models.Document `json:"document"`
}

// UploadResponse is returned for a successful upload.
type UploadResponse struct {
	DocumentResponse
	// Location is the page that shows the uploaded document.
	Location string `json:"location"`
}

// DocumentListResponse lists the files in the document directory.
type DocumentListResponse struct {
	Documents []storage.DocumentInfo `json:"documents"`
}

// LoadListResponse lists recent load attempts.
type LoadListResponse struct {
	Loads []cache.LoadRecord `json:"loads"`
}

func documentResponse(res loader.Result) DocumentResponse {
	status := res.Status
	if status == nil {
		status = []models.Status{}
	}
	return DocumentResponse{Origin: res.Origin, Source: res.Source, Status: status, Document: res.Document}
}
