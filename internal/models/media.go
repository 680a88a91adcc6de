package models

// UploadCredential grants one direct PUT to object storage. UploadURL is
// single-use and expires shortly after issue; Key is the permanent opaque
// identifier the upload becomes addressable under.
type UploadCredential struct {
	UploadURL string `json:"uploadURL"`
	Key       string `json:"key"`
}
