package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/balt0r/entrega-backend/internal/docstore"
)

const catalogTimeout = 3 * time.Second

var (
	ErrCatalogBadStatus   = errors.New("catalog bad status")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// CatalogClient resolves products through a remote products API that speaks
// the same {"response": record} envelope this service exposes.
type CatalogClient struct {
	BaseURL string
	Client  *http.Client
}

func NewCatalogClient(baseURL string) *CatalogClient {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &CatalogClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: catalogTimeout},
	}
}

func (c *CatalogClient) Get(ctx context.Context, id string) (docstore.Record, bool, error) {
	const op = "catalog.get"

	u := fmt.Sprintf("%s/api/products/%s", c.BaseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, &docstore.Error{Kind: docstore.KindStorageRead, Op: op, Err: err}
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, false, &docstore.Error{
			Kind: docstore.KindStorageTimeout,
			Op:   op,
			Msg:  "catalog unavailable",
			Err:  errors.Join(ErrCatalogUnavailable, err),
		}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, false, nil
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, false, &docstore.Error{
			Kind: docstore.KindStorageRead,
			Op:   op,
			Err:  fmt.Errorf("%w: status=%d", ErrCatalogBadStatus, resp.StatusCode),
		}
	}

	var env struct {
		Response docstore.Record `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, false, &docstore.Error{Kind: docstore.KindStorageRead, Op: op, Err: fmt.Errorf("decode product: %w", err)}
	}
	if env.Response.ID() == "" {
		return nil, false, &docstore.Error{Kind: docstore.KindStorageRead, Op: op, Msg: "product without id"}
	}
	return env.Response, true, nil
}
