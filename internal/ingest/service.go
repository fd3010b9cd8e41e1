package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/havers0n/my-awesome-project-sub004/internal/domain"
	"github.com/havers0n/my-awesome-project-sub004/internal/service"
	"github.com/havers0n/my-awesome-project-sub004/internal/storage"
)

// Result summarizes one movement file ingest.
type Result struct {
	Key      string `json:"key"`
	Appended int    `json:"appended"`
	Skipped  int    `json:"skipped"`
}

// Service pulls movement CSV files from object storage and appends their rows
// to the ledger. A movement file has the columns product_id, entry_type,
// change, timestamp (RFC3339; optional).
type Service struct {
	objects     storage.ObjectStorage
	ledger      *service.LedgerService
	downloadDir string
}

func NewService(objects storage.ObjectStorage, ledger *service.LedgerService, downloadDir string) *Service {
	if downloadDir == "" {
		downloadDir = os.TempDir()
	}
	return &Service{
		objects:     objects,
		ledger:      ledger,
		downloadDir: downloadDir,
	}
}

// ListFiles lists the movement files currently under the prefix.
func (s *Service) ListFiles(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	objects, err := s.objects.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}

	files := make([]storage.ObjectInfo, 0, len(objects))
	for _, obj := range objects {
		if strings.ToLower(filepath.Ext(obj.Key)) != ".csv" {
			continue
		}
		files = append(files, obj)
	}
	return files, nil
}

// IngestObject downloads the object and appends its rows. Malformed rows and
// rows for unknown products are logged and skipped; the file keeps going.
func (s *Service) IngestObject(ctx context.Context, key string) (*Result, error) {
	localPath := filepath.Join(s.downloadDir, filepath.Base(key))
	if err := s.objects.DownloadObject(ctx, key, localPath); err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	defer os.Remove(localPath)

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	result, err := s.ingestCSV(ctx, key, f)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("key", key).
		Int("appended", result.Appended).
		Int("skipped", result.Skipped).
		Msg("movement file ingested")

	return result, nil
}

func (s *Service) ingestCSV(ctx context.Context, key string, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	colMap := make(map[string]int)
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range []string{"product_id", "entry_type", "change"} {
		if _, ok := colMap[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	result := &Result{Key: key}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Warn().Err(err).Str("key", key).Int("line", line).Msg("ingest: unreadable row skipped")
			result.Skipped++
			continue
		}

		if err := s.appendRow(ctx, record, colMap); err != nil {
			log.Warn().Err(err).Str("key", key).Int("line", line).Msg("ingest: row skipped")
			result.Skipped++
			continue
		}
		result.Appended++
	}

	return result, nil
}

func (s *Service) appendRow(ctx context.Context, record []string, colMap map[string]int) error {
	getValue := func(colName string) string {
		if idx, ok := colMap[colName]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	productID := getValue("product_id")
	if productID == "" {
		return fmt.Errorf("empty product_id")
	}

	entryType := domain.EntryType(strings.ToLower(getValue("entry_type")))

	change, err := strconv.Atoi(getValue("change"))
	if err != nil {
		return fmt.Errorf("bad change value %q: %w", getValue("change"), err)
	}

	var ts time.Time
	if raw := getValue("timestamp"); raw != "" {
		ts, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("bad timestamp %q: %w", raw, err)
		}
	}

	if _, err := s.ledger.AppendEntry(ctx, productID, entryType, change, ts); err != nil {
		return err
	}
	return nil
}
