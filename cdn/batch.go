package cdn

import (
	"context"

	"github.com/bitrise-io/go-cdnclient/cdn/batch"
	"github.com/bitrise-io/go-cdnclient/envelope"
	"github.com/bitrise-io/go-cdnclient/source"
)

// BatchOption ...
type BatchOption func(*batchOptions)

type batchOptions struct {
	config     batch.Config
	onProgress func(fileName string, percent int)
}

// Sequential uploads the files one at a time, in order.
func Sequential() BatchOption {
	return func(o *batchOptions) {
		o.config.Sequential = true
	}
}

// MaxConcurrent sets how many uploads run together in concurrent mode.
func MaxConcurrent(n int) BatchOption {
	return func(o *batchOptions) {
		o.config.MaxConcurrent = n
	}
}

// WithFileProgress reports per file upload progress.
func WithFileProgress(fn func(fileName string, percent int)) BatchOption {
	return func(o *batchOptions) {
		o.onProgress = fn
	}
}

// UploadMultipleFiles uploads every source and returns one result per source,
// in input order, tagged with the file name. By default uploads run in chunks
// of batch.DefaultMaxConcurrent; a failing file never stops the others.
// An empty input yields a single failure result.
func (c *Client) UploadMultipleFiles(ctx context.Context, sources []source.Source, opts ...BatchOption) []envelope.Result {
	if len(sources) == 0 {
		return []envelope.Result{envelope.Fail("no files to upload")}
	}

	options := batchOptions{config: batch.DefaultConfig()}
	for _, opt := range opts {
		opt(&options)
	}

	scheduler := batch.New(options.config, c.logger)
	results := scheduler.Run(len(sources), func(index int) envelope.Result {
		src := sources[index]
		var uploadOpts []UploadOption
		if options.onProgress != nil {
			name := src.Name()
			uploadOpts = append(uploadOpts, WithProgress(func(percent int) {
				options.onProgress(name, percent)
			}))
		}
		return c.UploadFile(ctx, src, uploadOpts...)
	})

	succeeded := 0
	for i := range results {
		results[i] = results[i].WithFileName(sources[i].Name())
		if results[i].Success {
			succeeded++
		}
	}

	c.logger.Donef("Uploaded %d/%d file(s)", succeeded, len(sources))
	return results
}
