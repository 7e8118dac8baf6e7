package config

type ImageConfig interface {
	GetImageBackend() string
	GetImageUploadURL() string
	GetImageHostKey() string
	GetS3Bucket() string
	GetS3Region() string
	GetS3Endpoint() string
	GetS3KeyID() string
	GetS3Secret() string
	GetS3PublicBaseURL() string
}

type Images struct{}

var _ ImageConfig = Images{}

// GetImageBackend selects the uploader: "host" (imgbb compatible) or "s3".
func (Images) GetImageBackend() string {
	return GetEnv("IMAGE_BACKEND", "host")
}

func (Images) GetImageUploadURL() string {
	return GetEnv("IMAGE_UPLOAD_URL", "https://api.imgbb.com/1/upload")
}

func (Images) GetImageHostKey() string {
	return GetEnv("IMAGE_HOST_KEY", "")
}

func (Images) GetS3Bucket() string {
	return GetEnv("S3_BUCKET", "")
}

func (Images) GetS3Region() string {
	return GetEnv("S3_REGION", "us-east-1")
}

func (Images) GetS3Endpoint() string {
	return GetEnv("S3_ENDPOINT", "")
}

func (Images) GetS3KeyID() string {
	return GetEnv("S3_KEY_ID", "")
}

func (Images) GetS3Secret() string {
	return GetEnv("S3_SECRET", "")
}

func (Images) GetS3PublicBaseURL() string {
	return GetEnv("S3_PUBLIC_BASE_URL", "")
}
