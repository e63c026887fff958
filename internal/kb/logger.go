// Package kb persists agent exchanges to Azure Blob Storage as a knowledge
// base for later analysis and search indexing. Logging is strictly
// best-effort: a storage failure is logged and never surfaces to the caller.
package kb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"go.uber.org/zap"

	"cloudpasture.io/maintwatch/internal/config"
	"cloudpasture.io/maintwatch/internal/pkg/logger"
	"cloudpasture.io/maintwatch/internal/pkg/worker"
)

// uploadTimeout bounds one blob upload on the storage pool.
const uploadTimeout = 30 * time.Second

// Uploader stores one blob. Satisfied by the azblob-backed store and by test
// fakes.
type Uploader interface {
	Upload(ctx context.Context, blobName string, data []byte) error
}

// blobStore uploads into one container of a storage account.
type blobStore struct {
	client    *azblob.Client
	container string
}

func (s *blobStore) Upload(ctx context.Context, blobName string, data []byte) error {
	_, err := s.client.UploadBuffer(ctx, s.container, blobName, data, nil)
	return err
}

// logEntry is the stored JSON document.
type logEntry struct {
	Version        string         `json:"version"`
	Timestamp      string         `json:"timestamp"`
	ConversationID string         `json:"conversation_id"`
	Request        requestRecord  `json:"request"`
	Response       responseRecord `json:"response"`
	Metadata       metadataRecord `json:"metadata"`
	Indexing       indexingRecord `json:"indexing"`
}

type requestRecord struct {
	Query string `json:"query"`
}

type responseRecord struct {
	Content string `json:"content"`
	Status  string `json:"status"`
}

type metadataRecord struct {
	ExecutionTimeMS   int64    `json:"execution_time_ms"`
	ExtractedEntities Entities `json:"extracted_entities"`
}

type indexingRecord struct {
	Indexed bool `json:"indexed"`
}

// ResponseLogger writes agent exchanges to blob storage through the storage
// worker pool. A disabled logger is a no-op and always safe to call.
type ResponseLogger struct {
	uploader      Uploader
	pools         *worker.Pools
	schemaVersion string
	enabled       bool

	now func() time.Time
}

// NewResponseLogger builds the logger and ensures the container exists.
// A disabled configuration yields a no-op logger and no error.
func NewResponseLogger(ctx context.Context, cfg config.KnowledgeBaseConfig, pools *worker.Pools) (*ResponseLogger, error) {
	if !cfg.Enabled {
		return &ResponseLogger{enabled: false}, nil
	}

	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("build blob client: %w", err)
	}

	if _, err := client.CreateContainer(ctx, cfg.Container, nil); err != nil {
		if !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			return nil, fmt.Errorf("ensure container %s: %w", cfg.Container, err)
		}
	}

	logger.Info("knowledge base logger initialized",
		zap.String("container", cfg.Container),
	)
	return &ResponseLogger{
		uploader:      &blobStore{client: client, container: cfg.Container},
		pools:         pools,
		schemaVersion: cfg.SchemaVersion,
		enabled:       true,
		now:           time.Now,
	}, nil
}

// Enabled reports whether exchanges are being persisted.
func (l *ResponseLogger) Enabled() bool {
	return l.enabled
}

// LogResponse queues one exchange for upload. The handler never waits on the
// storage account; failures are logged on the worker.
func (l *ResponseLogger) LogResponse(query, response, conversationID, status string, executionTime time.Duration) {
	if !l.enabled {
		return
	}

	timestamp := l.now().UTC()
	entry := logEntry{
		Version:        l.schemaVersion,
		Timestamp:      timestamp.Format(time.RFC3339Nano),
		ConversationID: conversationID,
		Request:        requestRecord{Query: query},
		Response:       responseRecord{Content: response, Status: status},
		Metadata: metadataRecord{
			ExecutionTimeMS:   executionTime.Milliseconds(),
			ExtractedEntities: extractEntities(response),
		},
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		logger.Error("knowledge base entry encode failed", zap.Error(err))
		return
	}
	path := blobPath(timestamp, conversationID)

	err = l.pools.SubmitDetached("storage", func(ctx context.Context) {
		uploadCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
		defer cancel()

		if err := l.uploader.Upload(uploadCtx, path, data); err != nil {
			logger.Error("knowledge base upload failed",
				zap.String("blob", path),
				zap.Error(err),
			)
			return
		}
		logger.Debug("knowledge base entry stored", zap.String("blob", path))
	})
	if err != nil {
		logger.Warn("knowledge base upload not queued",
			zap.String("blob", path),
			zap.Error(err),
		)
	}
}

// blobPath builds the hierarchical storage path:
// responses/YYYY/MM/DD/<timestamp>-<conversation>.json
func blobPath(t time.Time, conversationID string) string {
	return fmt.Sprintf("responses/%s/%s-%03d-%s.json",
		t.Format("2006/01/02"),
		t.Format("20060102-150405"),
		t.Nanosecond()/int(time.Millisecond),
		conversationID,
	)
}
