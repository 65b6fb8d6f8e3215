package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/bryanwahyu/automaton-forensics/internal/domain/analysis"
)

type Store struct {
	client     *minio.Client
	bucketName string
	region     string
}

// New buat koneksi MinIO
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket, region: region}, nil
}

// Register implements the EvidenceRegistry port: upload the tool artifact
// under a deterministic case-scoped key, tag it with run metadata, and
// remove the local copy.
func (s *Store) Register(ctx context.Context, tenant, caseID string, tool domain.Tool, localPath string, meta map[string]string) (domain.EvidenceRef, error) {
	key := fmt.Sprintf("%s/%s/%s/%s-%s", tenant, caseID, tool, uuid.New().String()[:8], filepath.Base(localPath))

	contentType := "application/octet-stream"
	switch filepath.Ext(localPath) {
	case ".json", ".jsonl":
		contentType = "application/json"
	case ".html":
		contentType = "text/html"
	case ".csv":
		contentType = "text/csv"
	}

	userMeta := map[string]string{"tool": string(tool), "case": caseID}
	for k, v := range meta {
		userMeta[k] = v
	}

	_, err := s.client.FPutObject(ctx, s.bucketName, key, localPath, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: userMeta,
	})
	if err != nil {
		return domain.EvidenceRef{}, err
	}

	// hapus file lokal setelah berhasil upload
	if removeErr := os.Remove(localPath); removeErr != nil {
		// upload sudah berhasil, jangan return error
		fmt.Printf("Warning: failed to remove local file %s: %v\n", localPath, removeErr)
	}

	// URL publik (jika bucket public), kalau private harus generate presigned URL
	url := fmt.Sprintf("http://%s/%s/%s", s.client.EndpointURL().Host, s.bucketName, key)
	return domain.EvidenceRef{ID: key, URL: url}, nil
}
