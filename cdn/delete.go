package cdn

import (
	"context"
	"net/http"
	"strings"

	"github.com/bitrise-io/go-cdnclient/envelope"
	"github.com/bitrise-io/go-cdnclient/transport"
)

const deletePath = "/cdn/delete-object/"

// DeleteFile removes the object stored under key. The service is not asked
// whether the object exists first; a missing object comes back as the
// service's error response.
func (c *Client) DeleteFile(ctx context.Context, key string) envelope.Result {
	if strings.TrimSpace(key) == "" {
		return envelope.Fail("object key is empty")
	}

	c.logger.Debugf("Delete %s", key)
	result := c.transport.Execute(ctx, transport.Request{
		Method: http.MethodDelete,
		URL:    deletePath,
		JSON:   map[string]string{"key": key},
	})
	if !result.Success {
		c.logger.Errorf("Failed to delete %s: %s", key, result.Message)
		return result
	}
	if result.Message == "" {
		result.Message = "delete succeeded"
	}
	return result
}
