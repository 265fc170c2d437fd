// internal/pkg/httpclient/client.go
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"stockpile/internal/pkg/nacos"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Client 是一个可追踪的 HTTP 客户端。
// 目标地址通过 Nacos 服务发现解析，Trace 上下文随请求头传播。
type Client struct {
	Tracer     trace.Tracer
	HTTPClient *http.Client
	Nacos      *nacos.Client
}

// NewClient 创建客户端。不设置全局 Timeout，
// 超时完全由每次请求传入的 context 控制。
func NewClient(tracer trace.Tracer, naming *nacos.Client) *Client {
	return &Client{
		Tracer: tracer,
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
			},
		},
		Nacos: naming,
	}
}

// resolve 把服务名解析为具体实例地址。
func (c *Client) resolve(serviceName, path string) (string, error) {
	ip, port, err := c.Nacos.DiscoverServiceInstance(serviceName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://%s:%d%s", ip, port, path), nil
}

// CallService 对目标服务发起 POST 调用，只关心成功与否。
func (c *Client) CallService(ctx context.Context, serviceName, path string, params url.Values) error {
	_, err := c.do(ctx, http.MethodPost, serviceName, path, params)
	return err
}

// GetJSON 对目标服务发起 GET 调用，并把响应体反序列化到 out。
func (c *Client) GetJSON(ctx context.Context, serviceName, path string, params url.Values, out interface{}) error {
	body, err := c.do(ctx, http.MethodGet, serviceName, path, params)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// StatusError 表示下游返回了非 2xx 状态码。
type StatusError struct {
	Code    int
	Service string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("service %s returned status %d", e.Service, e.Code)
}

func (c *Client) do(ctx context.Context, method, serviceName, path string, params url.Values) ([]byte, error) {
	ctx, span := c.Tracer.Start(ctx, fmt.Sprintf("call-%s", serviceName), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	target, err := c.resolve(serviceName, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	downstreamURL, err := url.Parse(target)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	q := downstreamURL.Query()
	for key, values := range params {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	downstreamURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, method, downstreamURL.String(), nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("http.url", downstreamURL.String()),
		attribute.String("http.method", method),
		attribute.String("peer.service", serviceName),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Code: resp.StatusCode, Service: serviceName}
		span.RecordError(statusErr)
		span.SetStatus(codes.Error, statusErr.Error())
		return body, statusErr
	}
	return body, nil
}
