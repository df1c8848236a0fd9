package cdn

import (
	"context"
	"net/http"

	"github.com/bitrise-io/go-cdnclient/envelope"
	"github.com/bitrise-io/go-cdnclient/transport"
)

const presignPath = "/cdn/upload-url/"

// PresignRequest is the body of the upload URL request.
type PresignRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
}

// PresignGrant is a single-use upload URL and the key the object will get.
type PresignGrant struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Presigner hands out upload URLs. A successful Result carries a PresignGrant
// as data; a failed one is returned to the caller unchanged.
type Presigner interface {
	Presign(ctx context.Context, req PresignRequest) envelope.Result
}

type servicePresigner struct {
	transport transport.Transport
}

func (p servicePresigner) Presign(ctx context.Context, req PresignRequest) envelope.Result {
	return p.transport.Execute(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    presignPath,
		JSON:   req,
	})
}
