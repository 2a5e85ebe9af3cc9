package config

import (
	"encoding/json"
	"os"

	"github.com/caminho-app/caminho/internal/flagx"
)

// jsonConfig is the DTO for the optional JSON config file. Only fields
// present in the file overlay the running Config.
type jsonConfig struct {
	APIBaseURL        *string  `json:"api_base_url"`
	RequestsPerSecond *float64 `json:"requests_per_second"`
	S3Endpoint        *string  `json:"s3_endpoint"`
	S3Region          *string  `json:"s3_region"`
	S3Bucket          *string  `json:"s3_bucket"`
	S3AccessKey       *string  `json:"s3_access_key"`
	S3SecretKey       *string  `json:"s3_secret_key"`
	MediaBaseURL      *string  `json:"media_base_url"`
	VAPIDPublicKey    *string  `json:"vapid_public_key"`
	DBPath            *string  `json:"db_path"`
	FFmpegBin         *string  `json:"ffmpeg_bin"`
	FFprobeBin        *string  `json:"ffprobe_bin"`
	MetricsAddr       *string  `json:"metrics_addr"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// the -c/-config flag. Absent flag means no file is read. Read or decode
// errors panic; configuration is unrecoverable this early in startup.
func parseJson(cfg *Config) {
	path := flagx.JSONConfigPath()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	if jc.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *jc.RequestsPerSecond
	}
	setString(&cfg.S3Endpoint, jc.S3Endpoint)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setString(&cfg.MediaBaseURL, jc.MediaBaseURL)
	setString(&cfg.VAPIDPublicKey, jc.VAPIDPublicKey)
	setString(&cfg.DBPath, jc.DBPath)
	setString(&cfg.FFmpegBin, jc.FFmpegBin)
	setString(&cfg.FFprobeBin, jc.FFprobeBin)
	setString(&cfg.MetricsAddr, jc.MetricsAddr)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
