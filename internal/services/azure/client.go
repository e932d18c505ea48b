package azure

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"chartertrack/internal/backupfile"
	"chartertrack/internal/config"
	"chartertrack/internal/logging"
	"chartertrack/internal/services"
)

// blobPrefix narrows container listings to full backup archives.
const blobPrefix = "full"

// Client is the Azure Blob Storage backup source.
type Client struct {
	container *container.Client
	cacheDir  string
	retries   int
	logger    *slog.Logger

	// progress is swapped out in tests; defaults to a byte progress bar on
	// a TTY and a silent counter elsewhere.
	progress func(size int64, description string) io.Writer
}

// NewClient builds a client from the configured credentials: a container
// SAS URL wins, otherwise a connection string plus container name.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	var (
		containerClient *container.Client
		err             error
	)
	switch {
	case cfg.Azure.ContainerSASURL != "":
		containerClient, err = container.NewClientWithNoCredential(cfg.Azure.ContainerSASURL, nil)
	case cfg.Azure.ConnectionString != "" && cfg.Azure.ContainerName != "":
		containerClient, err = container.NewClientFromConnectionString(cfg.Azure.ConnectionString, cfg.Azure.ContainerName, nil)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "azure", "new client",
			"need azure.container_sas_url or azure.connection_string plus azure.container_name", nil)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "azure", "new client", "", err)
	}

	return &Client{
		container: containerClient,
		cacheDir:  cfg.Backups.CacheDir,
		retries:   cfg.Backups.DownloadRetries,
		logger:    logging.NewComponentLogger(logger, "azure"),
		progress:  progressWriter,
	}, nil
}

// ListBackups returns every full backup blob name, chronologically sorted.
func (c *Client) ListBackups(ctx context.Context) ([]string, error) {
	var names []string
	pager := c.container.NewListBlobsFlatPager(&container.ListBlobsFlatOptions{
		Prefix: to.Ptr(blobPrefix),
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, services.Wrap(services.ErrTransient, "azure", "list backups", "", err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			if strings.HasSuffix(*item.Name, ".zip") && backupfile.IsBackupFilename(*item.Name) {
				names = append(names, *item.Name)
			}
		}
	}
	sort.Strings(names)
	c.logger.Debug("listed container backups", logging.Int("count", len(names)))
	return names, nil
}

// FetchBackup returns the local path of a validated backup archive,
// downloading it when the cache has no intact copy.
func (c *Client) FetchBackup(ctx context.Context, filename string) (string, error) {
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "azure", "fetch backup", "create cache dir", err)
	}

	cachePath := filepath.Join(c.cacheDir, filename)
	if info, err := os.Stat(cachePath); err == nil {
		if info.Size() > 0 && ValidateArchive(cachePath) == nil {
			return cachePath, nil
		}
		c.logger.Warn("cached backup is corrupted, re-downloading",
			logging.String(logging.FieldBackup, filename),
		)
		if err := os.Remove(cachePath); err != nil {
			return "", services.Wrap(services.ErrTransient, "azure", "fetch backup", "remove corrupt cache entry", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", services.Wrap(services.ErrTransient, "azure", "fetch backup", "stat cache entry", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := c.download(ctx, filename, cachePath); err != nil {
			_ = os.Remove(cachePath)
			lastErr = err
			c.logger.Warn("backup download failed",
				logging.String(logging.FieldBackup, filename),
				logging.Int("attempt", attempt),
				logging.Int("max_attempts", c.retries),
				logging.Error(err),
			)
			continue
		}
		if err := ValidateArchive(cachePath); err != nil {
			_ = os.Remove(cachePath)
			lastErr = err
			c.logger.Warn("downloaded backup is not a valid archive",
				logging.String(logging.FieldBackup, filename),
				logging.Int("attempt", attempt),
				logging.Error(err),
			)
			continue
		}
		return cachePath, nil
	}
	return "", services.Wrap(services.ErrTransient, "azure", "fetch backup", filename, lastErr)
}

// download streams one blob to the cache path, writing to a temporary file
// first so an interrupted transfer never masquerades as a cache hit.
func (c *Client) download(ctx context.Context, filename, cachePath string) error {
	blobClient := c.container.NewBlobClient(filename)

	var size int64
	if props, err := blobClient.GetProperties(ctx, nil); err == nil && props.ContentLength != nil {
		size = *props.ContentLength
	}

	resp, err := blobClient.DownloadStream(ctx, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tmpPath := cachePath + ".partial"
	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmpPath) }()

	writer := io.Writer(file)
	if c.progress != nil {
		writer = io.MultiWriter(file, c.progress(size, "downloading "+filename))
	}
	if _, err := io.Copy(writer, resp.Body); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, cachePath)
}
