package config

// Storage backends.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// StorageConfig selects the file system behind the storage source.
type StorageConfig struct {
	Mode      string
	LocalDir  string
	Bucket    string
	Prefix    string
	AWSRegion string
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Mode:      getEnv("STORAGE_MODE", StorageLocal),
		LocalDir:  getEnv("STORAGE_LOCAL_DIR", "./data"),
		Bucket:    getEnv("AWS_BUCKET", ""),
		Prefix:    getEnv("STORAGE_S3_PREFIX", ""),
		AWSRegion: getEnv("AWS_REGION", "us-east-1"),
	}
}

func (c StorageConfig) validate() error {
	switch c.Mode {
	case StorageLocal:
		return nil
	case StorageS3:
		if c.Bucket == "" {
			return invalid("AWS_BUCKET", c.Bucket, "AWS_BUCKET is required when STORAGE_MODE is 's3'")
		}
		return nil
	default:
		return invalid("STORAGE_MODE", c.Mode, "STORAGE_MODE must be 'local' or 's3'")
	}
}
