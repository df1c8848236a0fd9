package cdn

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bitrise-io/go-cdnclient/hostenv"
	"github.com/bitrise-io/go-cdnclient/transport"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/docker/go-units"
	"github.com/hashicorp/go-retryablehttp"
)

// DefaultBaseURL is the origin of the storage service.
const DefaultBaseURL = "https://api.cdnstorage.io"

// MaxFileSize is the largest file the service accepts in a single upload.
const MaxFileSize int64 = 5 * units.GiB

const (
	// APIKeyEnvKey ...
	APIKeyEnvKey = "CDN_API_KEY"
	// StorageNameEnvKey ...
	StorageNameEnvKey = "CDN_STORAGE_NAME"
	// BaseURLEnvKey ...
	BaseURLEnvKey = "CDN_BASE_URL"
)

var (
	// ErrMissingAPIKey ...
	ErrMissingAPIKey = errors.New("API key is required")
	// ErrMissingStorageName is reported by storage scoped operations.
	ErrMissingStorageName = errors.New("storage name is required")
)

// Config holds the client settings. Only APIKey is required.
type Config struct {
	APIKey string
	// StorageName scopes requests to a named storage. GetStorageInfo and
	// ListFiles need it.
	StorageName string
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// Host defaults to the detected host.
	Host hostenv.Host
	// Logger defaults to log.NewLogger().
	Logger log.Logger
	// HTTPClient is used by the primary transport backend. If nil, a client
	// without retries is created.
	HTTPClient *retryablehttp.Client
	// Transport replaces the host selected transport entirely.
	Transport transport.Transport
	// Presigner replaces the service's upload URL endpoint.
	Presigner Presigner
}

// ConfigFromEnv reads the API key, storage name and base URL from the given
// environment repository.
func ConfigFromEnv(envRepo env.Repository) (Config, error) {
	config := Config{
		APIKey:      strings.TrimSpace(envRepo.Get(APIKeyEnvKey)),
		StorageName: strings.TrimSpace(envRepo.Get(StorageNameEnvKey)),
		BaseURL:     strings.TrimSpace(envRepo.Get(BaseURLEnvKey)),
	}
	if config.APIKey == "" {
		return Config{}, fmt.Errorf("%s is not set: %w", APIKeyEnvKey, ErrMissingAPIKey)
	}
	return config, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func (c Config) serviceHeaders() map[string]string {
	headers := map[string]string{
		"Authorization": fmt.Sprintf("ApiKey %s", c.APIKey),
		"Content-Type":  "application/json",
	}
	if c.StorageName != "" {
		headers["Storage"] = fmt.Sprintf("Storage %s", c.StorageName)
	}
	return headers
}
