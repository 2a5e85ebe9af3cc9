package config

// Config holds runtime settings for the Caminho client.
//
// Sources are layered: built-in defaults, then a JSON file (-c/-config),
// then command-line flags. Later sources override earlier ones.
type Config struct {
	// APIBaseURL is the root of the backend HTTP API.
	APIBaseURL string
	// RequestsPerSecond throttles outbound API calls.
	RequestsPerSecond float64

	// Object storage for media uploads.
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	// MediaBaseURL is the public prefix durable media URLs are built from.
	// Empty means the S3 endpoint itself serves them.
	MediaBaseURL string

	// VAPIDPublicKey identifies the application to the push service.
	VAPIDPublicKey string

	// DBPath is the local episode cache (sqlite). Empty disables caching.
	DBPath string

	// FFmpegBin and FFprobeBin locate the media tools used for recording
	// and duration probing.
	FFmpegBin  string
	FFprobeBin string

	// MetricsAddr exposes Prometheus metrics when non-empty, e.g. ":9090".
	MetricsAddr string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.RequestsPerSecond = 10
	c.S3Region = "us-east-1"
	c.S3Bucket = "caminho-media"
	c.DBPath = "caminho.db"
	c.FFmpegBin = "ffmpeg"
	c.FFprobeBin = "ffprobe"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
