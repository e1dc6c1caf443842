package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/deckbinder/deckbinder/binder"
)

// SpacesDatasetService pulls versioned dataset snapshots from the
// S3-compatible bucket they are published to. Snapshots live under
// <root>/<version>/ and mirror the dataset checkout layout ImportDir reads.
type SpacesDatasetService struct {
	client *s3.Client
	bucket string
	root   string
}

func NewSpacesDatasetService(ctx context.Context, cfg binder.SpacesConfig) (*SpacesDatasetService, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure spaces client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &SpacesDatasetService{
		client: client,
		bucket: cfg.Bucket,
		root:   strings.Trim(cfg.Root, "/"),
	}, nil
}

// ListSnapshots returns the published dataset versions, newest last.
func (s *SpacesDatasetService) ListSnapshots(ctx context.Context) ([]string, error) {
	prefix := s.root
	if prefix != "" {
		prefix += "/"
	}

	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	versions := make([]string, 0, len(out.CommonPrefixes))
	for _, p := range out.CommonPrefixes {
		if p.Prefix == nil {
			continue
		}
		v := strings.TrimSuffix(strings.TrimPrefix(*p.Prefix, prefix), "/")
		if v != "" {
			versions = append(versions, v)
		}
	}
	sort.Strings(versions)
	return versions, nil
}

// DownloadSnapshot mirrors one snapshot into destDir so ImportDir can read
// it.
func (s *SpacesDatasetService) DownloadSnapshot(ctx context.Context, version, destDir string) error {
	start := time.Now()
	prefix := path.Join(s.root, version) + "/"

	var token *string
	files := 0
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return fmt.Errorf("failed to list snapshot %s: %w", version, err)
		}

		for _, obj := range out.Contents {
			if obj.Key == nil {
				continue
			}
			rel := strings.TrimPrefix(*obj.Key, prefix)
			if rel == "" {
				continue
			}
			if err := s.downloadObject(ctx, *obj.Key, filepath.Join(destDir, filepath.FromSlash(rel))); err != nil {
				return err
			}
			files++
		}

		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		token = out.NextContinuationToken
	}

	slog.Info("Snapshot downloaded",
		slog.String("type", "sys"),
		slog.String("version", version),
		slog.Int("files", files),
		slog.Duration("took", time.Since(start)))
	return nil
}

func (s *SpacesDatasetService) downloadObject(ctx context.Context, key, dest string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", key, err)
	}
	defer out.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, out.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}
