package objectprovider

// Config configures the S3-compatible object-store provider. Works with
// AWS S3, MinIO, DigitalOcean Spaces, and Cloudflare R2, matching
// pkg/storage's s3Disk driver.
type Config struct {
	Endpoint        string // leave empty for real AWS
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	KeyPrefix       string
}

func (c Config) withDefaults() Config {
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	return c
}
