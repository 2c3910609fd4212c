package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"goldrush.ai/internal/persistence/s3mirror"
)

// buildMirror reads GR_S3_* and returns nil when mirroring is off.
func buildMirror(dataDir string, logger *log.Logger) (*s3mirror.Mirror, error) {
	if !envBool("GR_S3_MIRROR", false) {
		return nil, nil
	}
	client, err := s3mirror.NewClient(s3mirror.ClientConfig{
		Endpoint:        os.Getenv("GR_S3_ENDPOINT"),
		Bucket:          os.Getenv("GR_S3_BUCKET"),
		Region:          os.Getenv("GR_S3_REGION"),
		AccessKeyID:     os.Getenv("GR_S3_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("GR_S3_SECRET_ACCESS_KEY"),
	})
	if err != nil {
		return nil, fmt.Errorf("GR_S3_MIRROR=true: %w", err)
	}
	return s3mirror.New(client, dataDir, s3mirror.Options{
		Prefix:  os.Getenv("GR_S3_PREFIX"),
		Workers: envInt("GR_S3_UPLOAD_WORKERS", 2),
	}, logger), nil
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
