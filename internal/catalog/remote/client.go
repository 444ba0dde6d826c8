package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/domain"
	"github.com/railzwaylabs/catalogadmin/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const productsPath = "/api/products"

type Params struct {
	fx.In

	Cfg   config.Config
	Log   *zap.Logger
	GenID *snowflake.Node
}

// Client talks to the product API. Every failure, transport or status, wraps
// domain.ErrRemoteUnavailable.
type Client struct {
	baseURL string
	client  *http.Client
	genID   *snowflake.Node
	log     *zap.Logger
	tracer  trace.Tracer
}

func New(p Params) domain.RemoteCatalog {
	return NewClient(p.Cfg.Remote.BaseURL, &http.Client{Timeout: p.Cfg.Remote.Timeout}, p.GenID, p.Log)
}

func NewClient(baseURL string, httpClient *http.Client, genID *snowflake.Node, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  httpClient,
		genID:   genID,
		log:     log.Named("catalog.remote"),
		tracer:  otel.Tracer("catalog.remote"),
	}
}

func (c *Client) List(ctx context.Context) (_ []domain.Product, err error) {
	ctx, span := c.tracer.Start(ctx, "catalog.remote.list")
	defer func() { endSpan(span, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+productsPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req, span)
	if err != nil {
		return nil, unavailable("list products", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError("list products", resp)
	}

	var products []domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, unavailable("decode products", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (c *Client) Create(ctx context.Context, in domain.CreateRequest) (_ *domain.Product, err error) {
	ctx, span := c.tracer.Start(ctx, "catalog.remote.create")
	defer func() { endSpan(span, err) }()

	body, contentType, err := encodeCreate(in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+productsPath, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if key := c.idempotencyKey(in); key != "" {
		req.Header.Set("Idempotency-Key", key)
	}

	resp, err := c.do(req, span)
	if err != nil {
		return nil, unavailable("create product", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, statusError("create product", resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var created domain.Product
	if err := json.Unmarshal(raw, &created); err != nil {
		c.log.Debug("create response is not a product", zap.Error(err))
		return nil, nil
	}
	return &created, nil
}

func (c *Client) Update(ctx context.Context, id int64, fields domain.EditBuffer) (err error) {
	ctx, span := c.tracer.Start(ctx, "catalog.remote.update", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer func() { endSpan(span, err) }()

	payload, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.productURL(id), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req, span)
	if err != nil {
		return unavailable("update product", err)
	}
	defer drain(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError("update product", resp)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := c.tracer.Start(ctx, "catalog.remote.delete", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer func() { endSpan(span, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.productURL(id), nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req, span)
	if err != nil {
		return unavailable("delete product", err)
	}
	defer drain(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError("delete product", resp)
	}
	return nil
}

func (c *Client) do(req *http.Request, span trace.Span) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return resp, nil
}

func (c *Client) idempotencyKey(in domain.CreateRequest) string {
	if key := strings.TrimSpace(in.IdempotencyKey); key != "" {
		return key
	}
	if c.genID == nil {
		return ""
	}
	return c.genID.Generate().String()
}

func (c *Client) productURL(id int64) string {
	return c.baseURL + productsPath + "/" + strconv.FormatInt(id, 10)
}

func encodeCreate(in domain.CreateRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{domain.FieldName, in.Name},
		{domain.FieldDetails, in.Details},
		{domain.FieldPrice, string(in.Price)},
	}
	if in.Category != "" {
		fields = append(fields, [2]string{domain.FieldCategory, in.Category})
	}
	if in.Size != "" {
		fields = append(fields, [2]string{domain.FieldSize, in.Size})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if in.Image != nil {
		contentType := in.Image.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(in.Image.Data)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, domain.FieldProductImage, in.Image.Filename))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(in.Image.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrRemoteUnavailable, op, err)
}

func statusError(op string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		return fmt.Errorf("%w: %s: status=%d", domain.ErrRemoteUnavailable, op, resp.StatusCode)
	}
	return fmt.Errorf("%w: %s: status=%d body=%s", domain.ErrRemoteUnavailable, op, resp.StatusCode, msg)
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
