package s3minio

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Host      string `yaml:"host" env:"HOST" env-default:"localhost"`
	Port      string `yaml:"port" env:"PORT" env-default:"9000"`
	AccessKey string `yaml:"access_key" env:"ACCESS_KEY" env-required:"true"`
	SecretKey string `yaml:"secret_key" env:"SECRET_KEY" env-required:"true"`
	Bucket    string `yaml:"bucket" env:"BUCKET" env-default:"avatars"`
	PublicURL string `yaml:"public_url" env:"PUBLIC_URL" env-required:"true"`
}

func (c *Config) Endpoint() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func NewConn(config *Config) (*minio.Client, error) {
	useSSL := false

	minioClient, err := minio.New(
		config.Endpoint(), &minio.Options{
			Creds: credentials.NewStaticV4(
				config.AccessKey,
				config.SecretKey,
				"",
			),
			Secure: useSSL,
		},
	)
	if err != nil {
		return nil, err
	}

	_, err = minioClient.ListBuckets(context.Background())
	if err != nil {
		return nil, err
	}

	return minioClient, nil
}

// AvatarStorage — обёртка над бакетом с загруженными пользователями фото.
// Сами загрузки идут через отдельный upload-путь; здесь только адресация.
type AvatarStorage struct {
	Session   *minio.Client
	bucket    string
	publicURL string
}

func New(sess *minio.Client, config *Config) *AvatarStorage {
	return &AvatarStorage{
		Session:   sess,
		bucket:    config.Bucket,
		publicURL: strings.TrimRight(config.PublicURL, "/"),
	}
}

func (s *AvatarStorage) EnsureBucket(ctx context.Context) error {
	found, err := s.Session.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if found {
		return nil
	}

	err = s.Session.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

func (s *AvatarStorage) ObjectURL(name string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, name)
}

// Owns сообщает, указывает ли URL на объект нашего хранилища.
// Такие фото загружены пользователем вручную и не перезаписываются
// фотографиями из Telegram.
func (s *AvatarStorage) Owns(url string) bool {
	if url == "" {
		return false
	}

	return strings.HasPrefix(url, s.publicURL+"/"+s.bucket+"/")
}
