package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/havers0n/my-awesome-project-sub004/internal/storage"
)

func downloadFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "endpoint", Usage: "Object storage endpoint", EnvVars: []string{"INGEST_ENDPOINT"}},
		&cli.StringFlag{Name: "access-key", Usage: "Object storage access key", EnvVars: []string{"INGEST_ACCESS_KEY"}},
		&cli.StringFlag{Name: "secret-key", Usage: "Object storage secret key", EnvVars: []string{"INGEST_SECRET_KEY"}},
		&cli.StringFlag{Name: "bucket", Usage: "Bucket holding the seed files", EnvVars: []string{"INGEST_BUCKET"}},
		&cli.StringFlag{Name: "region", Usage: "Bucket region", EnvVars: []string{"INGEST_REGION"}},
		&cli.BoolFlag{Name: "use-ssl", Usage: "Use TLS for the storage endpoint", Value: true, EnvVars: []string{"INGEST_USE_SSL"}},
		&cli.StringFlag{Name: "prefix", Usage: "Key prefix to download", Value: "seeds/", EnvVars: []string{"INGEST_PREFIX"}},
	}
}

func newStorageClient(c *cli.Context) (*storage.MinioClient, error) {
	return storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  c.String("endpoint"),
		AccessKey: c.String("access-key"),
		SecretKey: c.String("secret-key"),
		Bucket:    c.String("bucket"),
		Region:    c.String("region"),
		UseSSL:    c.Bool("use-ssl"),
	})
}

func downloadSeeds(c *cli.Context) error {
	client, err := newStorageClient(c)
	if err != nil {
		return err
	}

	destDir := c.String("dest")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure download dir %s: %w", destDir, err)
	}

	prefix := strings.TrimSpace(c.String("prefix"))
	objects, err := client.ListObjects(c.Context, prefix)
	if err != nil {
		return fmt.Errorf("failed to list objects for prefix %s: %w", prefix, err)
	}

	var keys []string
	for _, obj := range objects {
		if strings.HasSuffix(strings.ToLower(obj.Key), ".csv") {
			keys = append(keys, obj.Key)
		}
	}
	if len(keys) == 0 {
		return fmt.Errorf("no CSV files found for prefix %s", prefix)
	}
	sort.Strings(keys)

	for _, key := range keys {
		localPath := filepath.Join(destDir, objectRelativePath(prefix, key))
		if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
			return fmt.Errorf("failed to prepare directory for %s: %w", localPath, err)
		}
		if err := client.DownloadObject(c.Context, key, localPath); err != nil {
			return err
		}
		log.Printf("Downloaded %s -> %s", key, localPath)
	}

	return nil
}

func uploadSeeds(c *cli.Context) error {
	client, err := newStorageClient(c)
	if err != nil {
		return err
	}

	srcDir := c.String("src")
	if _, err := os.Stat(srcDir); err != nil {
		return fmt.Errorf("source directory %s: %w", srcDir, err)
	}

	count, err := storage.UploadDirectory(c.Context, client, srcDir, c.String("prefix"))
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("no files found under %s", srcDir)
	}

	log.Printf("Uploaded %d seed files from %s", count, srcDir)
	return nil
}

func objectRelativePath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	prefixTrimmed := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	rel := strings.TrimPrefix(key, prefixTrimmed+"/")
	if rel == "" {
		return filepath.Base(key)
	}
	return rel
}
