package domain

// PackageUploadRequest describes a single file upload to the generic package registry.
type PackageUploadRequest struct {
	InstanceID     string `json:"instance_id"`
	ProjectID      string `json:"project_id"`
	PackageName    string `json:"package_name"`
	PackageVersion string `json:"package_version"`
	FileName       string `json:"file_name"`
	LocalFilePath  string `json:"file_path"`
}

// UploadResult confirms a successful package upload.
type UploadResult struct {
	Message string `json:"message"`
	URL     string `json:"url"`
	// PURL is the package URL (pkg:generic/...) of the uploaded package version.
	PURL string `json:"purl,omitempty"`
	Size int    `json:"size"`
}
