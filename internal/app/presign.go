package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Presign returns a time-limited URL granting anonymous GET or PUT on one
// object. Pure passthrough to the gateway.
func (a *App) Presign(ctx context.Context, bucket, key, method string, expiry time.Duration) (*url.URL, error) {
	switch strings.ToUpper(method) {
	case "GET":
		return a.client.PresignGet(ctx, bucket, key, expiry)
	case "PUT":
		return a.client.PresignPut(ctx, bucket, key, expiry)
	default:
		return nil, fmt.Errorf("unsupported presign method %q (want GET or PUT)", method)
	}
}
