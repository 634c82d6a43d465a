package dto

import "studio-storefront/internal/model"

type AddItemRequest struct {
	ServiceID string `json:"serviceId"`
	// Quantity defaults to one only when absent.
	Quantity *int `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type PreferencesRequest struct {
	Preferences map[string]string `json:"preferences"`
}

type SetFilesRequest struct {
	Files FileList `json:"files"`
}

// UploadedFiles converts the request files, keeping each file's section.
func (r SetFilesRequest) UploadedFiles() []model.UploadedFile {
	return r.Files.UploadedFiles()
}

type CheckoutRequest struct {
	CustomerName   string `json:"customerName"`
	CustomerEmail  string `json:"customerEmail"`
	SocialPlatform string `json:"socialPlatform"`
	SocialUsername string `json:"socialUsername"`
}

type CheckoutResponse struct {
	SessionID string   `json:"sessionId"`
	URL       string   `json:"url"`
	Warnings  []string `json:"warnings,omitempty"`
}
