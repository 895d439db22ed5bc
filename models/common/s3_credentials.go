package common

// S3Credentials contains the connection info for one S3-compatible
// storage provider.
type S3Credentials struct {
	Host      string
	KeyID     string
	SecretKey string
}
