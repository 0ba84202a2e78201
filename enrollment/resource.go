package enrollment

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-enrollment-client/httpclient"
	"github.com/jrsteele09/go-enrollment-client/internal/errors"
)

// Resource is a typed CRUD client for one backend collection. Responses may
// come wrapped in the backend's envelope; they are normalised before decoding.
type Resource[T any] struct {
	client *httpclient.Client
	path   string // Collection path, e.g. "/students"
}

func NewResource[T any](client *httpclient.Client, path string) *Resource[T] {
	return &Resource[T]{client: client, path: "/" + strings.Trim(path, "/")}
}

func (r *Resource[T]) Path() string {
	return r.path
}

func (r *Resource[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	path := r.path
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	body, err := r.client.Raw(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return httpclient.DecodeList[T](body)
}

func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	path, err := r.itemPath(id)
	if err != nil {
		return nil, err
	}
	var out T
	if err := r.client.Get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T]) Create(ctx context.Context, item T) (*T, error) {
	var out T
	if err := r.client.Post(ctx, r.path, item, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T]) Update(ctx context.Context, id string, item T) (*T, error) {
	path, err := r.itemPath(id)
	if err != nil {
		return nil, err
	}
	var out T
	if err := r.client.Put(ctx, path, item, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	path, err := r.itemPath(id)
	if err != nil {
		return err
	}
	return r.client.Delete(ctx, path)
}

func (r *Resource[T]) itemPath(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", errors.Wrapf(errors.ErrInvalidRequest, "[enrollment %s] empty id", r.path)
	}
	return r.path + "/" + url.PathEscape(id), nil
}
