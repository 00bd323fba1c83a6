package types

type Config struct {
	Environment      string `envconfig:"ENVIRONMENT" default:"development"`
	Version          string `envconfig:"APP_VERSION" default:"1.0.0"`
	ServerPort       uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL      string `envconfig:"DATABASE_URL"`
	DatabaseSchema   string `envconfig:"DATABASE_SCHEMA" default:"voterroll"`
	DatabaseMaxConns int32  `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	ReadTimeoutSec   uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec  uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"60"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`

	// Uploads
	UploadMaxBytes   int64  `envconfig:"UPLOAD_MAX_BYTES" default:"10485760"` // 10 MiB
	UploadTempDir    string `envconfig:"UPLOAD_TEMP_DIR"`
	UploadTimeoutSec uint   `envconfig:"UPLOAD_TIMEOUT_SEC" default:"900"` // upload route only

	// HTTP edges
	CORSOrigin      string `envconfig:"CORS_ORIGIN" default:"*"`
	SearchRateLimit string `envconfig:"SEARCH_RATE_LIMIT" default:"120-M"`

	// Bearer auth for admin routes. Either a shared HMAC secret or a JWKS URL.
	AuthJWTSecret string `envconfig:"AUTH_JWT_SECRET"`
	AuthJWKSURL   string `envconfig:"AUTH_JWKS_URL"`
	AuthIssuer    string `envconfig:"AUTH_ISSUER" default:"voterroll"`

	// Remote "system enabled" flag. Empty URL disables the gate.
	SystemGateURL    string `envconfig:"SYSTEM_GATE_URL"`
	SystemGateTTLSec uint   `envconfig:"SYSTEM_GATE_TTL_SEC" default:"60"`

	// Upload archive. Empty bucket disables archiving.
	ArchiveBucket string `envconfig:"ARCHIVE_BUCKET"`
	ArchivePrefix string `envconfig:"ARCHIVE_PREFIX" default:"uploads/"`

	PosterPath string `envconfig:"POSTER_PATH" default:"images/poster.jpg"`
}
