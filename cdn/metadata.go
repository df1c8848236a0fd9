package cdn

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bitrise-io/go-cdnclient/envelope"
	"github.com/bitrise-io/go-cdnclient/transport"
)

// ListOptions filter ListFiles. Zero values are left out of the query.
type ListOptions struct {
	Limit  int
	Prefix string
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Prefix != "" {
		q.Set("prefix", o.Prefix)
	}
	return q
}

// GetStorageInfo returns the service's description of the configured storage.
func (c *Client) GetStorageInfo(ctx context.Context) envelope.Result {
	if c.config.StorageName == "" {
		return envelope.Fail("%s", ErrMissingStorageName)
	}

	return c.transport.Execute(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    c.storagePath(),
	})
}

// ListFiles lists the objects of the configured storage.
func (c *Client) ListFiles(ctx context.Context, opts ListOptions) envelope.Result {
	if c.config.StorageName == "" {
		return envelope.Fail("%s", ErrMissingStorageName)
	}
	if opts.Limit < 0 {
		return envelope.Fail("limit must not be negative, got %d", opts.Limit)
	}

	path := c.storagePath() + "files/"
	if q := opts.query(); len(q) > 0 {
		path += "?" + q.Encode()
	}

	return c.transport.Execute(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    path,
	})
}

func (c *Client) storagePath() string {
	return fmt.Sprintf("/cdn/storages/%s/", url.PathEscape(c.config.StorageName))
}
