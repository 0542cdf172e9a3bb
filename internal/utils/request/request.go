package request

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// New builds the resty client the provider clients share: environment-proxy
// aware, with a hard per-request timeout. No client-level retries; failures
// surface to the caller and the next scheduled pass tries again.
func New(timeout time.Duration) *resty.Client {
	return resty.New().
		SetTransport(&http.Transport{
			Proxy: http.ProxyFromEnvironment, // 通用适配环境变量
		}).
		SetTimeout(timeout)
}
