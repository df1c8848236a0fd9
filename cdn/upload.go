package cdn

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bitrise-io/go-cdnclient/envelope"
	"github.com/bitrise-io/go-cdnclient/source"
	"github.com/bitrise-io/go-cdnclient/transport"
	"github.com/docker/go-units"
)

const uploadSucceeded = "upload succeeded"

// UploadOption ...
type UploadOption func(*uploadOptions)

type uploadOptions struct {
	onProgress transport.ProgressFunc
}

// WithProgress registers a callback receiving the upload progress in percent.
// It is only called on hosts whose transport can observe the request body.
func WithProgress(fn func(percent int)) UploadOption {
	return func(o *uploadOptions) {
		o.onProgress = fn
	}
}

// UploadFile asks the service for a presigned URL and streams the source to it.
// On success data.key holds the object key. If the upload to the presigned URL
// fails the key is dropped; uploading again requests a new URL.
func (c *Client) UploadFile(ctx context.Context, src source.Source, opts ...UploadOption) envelope.Result {
	var options uploadOptions
	for _, opt := range opts {
		opt(&options)
	}

	adapter, err := source.AdapterFor(c.host, src)
	if err != nil {
		return envelope.Fail("%s", err)
	}

	resolved, err := adapter.Resolve(src)
	if err != nil {
		return envelope.Fail("%s", err)
	}
	defer func() {
		if err := resolved.Close(); err != nil {
			c.logger.Warnf("Failed to close %s: %s", resolved.Name, err)
		}
	}()

	if resolved.Size > MaxFileSize {
		return envelope.Fail("file %s is %s, larger than the %s limit", resolved.Name,
			humanSize(resolved.Size), humanSize(MaxFileSize))
	}

	c.logger.Debugf("Get upload URL for %s (%s, %s)", resolved.Name, resolved.ContentType, humanSize(resolved.Size))
	presigned := c.presigner.Presign(ctx, PresignRequest{
		FileName: resolved.Name,
		FileType: resolved.ContentType,
		FileSize: resolved.Size,
	})
	if !presigned.Success {
		c.logger.Errorf("Failed to get upload URL for %s: %s", resolved.Name, presigned.Message)
		return presigned
	}

	var grant PresignGrant
	if err := presigned.Decode(&grant); err != nil || grant.URL == "" || grant.Key == "" {
		return envelope.FailStatus(presigned.Status, "invalid upload URL response: url and key are required")
	}

	c.logger.Debugf("Upload %s as %s", resolved.Name, grant.Key)
	put := c.transport.Execute(ctx, transport.Request{
		Method:        http.MethodPut,
		URL:           grant.URL,
		Headers:       map[string]string{"Content-Type": resolved.ContentType},
		Body:          resolved.Body,
		ContentLength: resolved.Size,
		OnProgress:    options.onProgress,
		Raw:           true,
	})
	if !put.Success {
		message := putFailureMessage(put)
		c.logger.Errorf("Failed to upload %s: %s", resolved.Name, message)
		return envelope.FailStatus(put.Status, message)
	}

	return envelope.OK(put.Status, map[string]string{"key": grant.Key}, uploadSucceeded)
}

func putFailureMessage(put envelope.Result) string {
	if strings.HasPrefix(put.Message, "connection failed") {
		return fmt.Sprintf("upload failed: %s", put.Message)
	}
	return fmt.Sprintf("upload failed: HTTP %d %s", put.Status, http.StatusText(put.Status))
}

func humanSize(size int64) string {
	return units.HumanSizeWithPrecision(float64(size), 3)
}
