// Package cdn is the client of the storage service: presigned uploads of
// single files and batches, deletion by key, and storage metadata queries.
// Every operation returns an envelope.Result; only NewClient returns an error.
package cdn

import (
	"strings"

	"github.com/bitrise-io/go-cdnclient/hostenv"
	"github.com/bitrise-io/go-cdnclient/transport"
	"github.com/bitrise-io/go-utils/v2/log"
)

// Client ...
type Client struct {
	config    Config
	host      hostenv.Host
	transport transport.Transport
	presigner Presigner
	logger    log.Logger
}

// NewClient validates the config and selects the transport for the host.
func NewClient(config Config) (*Client, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Logger == nil {
		config.Logger = log.NewLogger()
	}

	host := config.Host.Resolve()

	t := config.Transport
	if t == nil {
		tc := transport.ForHost(host, transport.Config{
			BaseURL: config.BaseURL,
			Headers: config.serviceHeaders(),
			Logger:  config.Logger,
		}, config.HTTPClient)
		config.Logger.Debugf("Using %s transport on %s host", tc.Backend(), host)
		t = tc
	}

	presigner := config.Presigner
	if presigner == nil {
		presigner = servicePresigner{transport: t}
	}

	return &Client{
		config:    config,
		host:      host,
		transport: t,
		presigner: presigner,
		logger:    config.Logger,
	}, nil
}

// Host returns the host capability the client was built for.
func (c *Client) Host() hostenv.Host {
	return c.host
}

// StorageName ...
func (c *Client) StorageName() string {
	return c.config.StorageName
}
