package s3store

import (
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
)

func TestIsBucketExists(t *testing.T) {
	assert.True(t, IsBucketExists(&types.BucketAlreadyOwnedByYou{}))
	assert.True(t, IsBucketExists(&types.BucketAlreadyExists{}))
	assert.False(t, IsBucketExists(errors.New("access denied")))
	assert.False(t, IsBucketExists(nil))
}

func TestSignedURLFromRequest(t *testing.T) {
	header := http.Header{}
	header.Set("Host", "uploads.example")
	header.Set("X-Amz-Content-Sha256", "UNSIGNED-PAYLOAD")

	signed := signedURLFromRequest("https://uploads.example/drawing.dwg?sig=abc", http.MethodPut, header)

	assert.Equal(t, "https://uploads.example/drawing.dwg?sig=abc", signed.URL)
	assert.Equal(t, http.MethodPut, signed.Verb)
	assert.Equal(t, "uploads.example", signed.Headers["Host"])
	assert.Equal(t, "UNSIGNED-PAYLOAD", signed.Headers["X-Amz-Content-Sha256"])
}
