// Package marketplace is the typed client for the LocalChef Bazaar REST backend.
package marketplace

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jrsteele09/localchef-bazaar/gateway"
	"github.com/jrsteele09/localchef-bazaar/images"
	"github.com/jrsteele09/localchef-bazaar/internal/errors"
)

var (
	ErrRequestAlreadySent = errors.New("request already sent")
	ErrAlreadyFavorite    = errors.New("meal is already in favorites")
	ErrAccountRestricted  = fmt.Errorf("account restricted: %w", errors.ErrForbidden)
	ErrUploaderRequired   = errors.New("image uploader is not configured")
)

// Client calls the backend. Signed-in resources go through the secure gateway,
// which carries the session; the few open endpoints use the public one.
type Client struct {
	secure   *gateway.Client
	public   *gateway.Client
	uploader images.Uploader
}

type Option func(*Client)

// WithPublic sets the gateway used for endpoints that need no session
func WithPublic(public *gateway.Client) Option {
	return func(c *Client) {
		c.public = public
	}
}

// WithUploader sets the image host used when inputs carry image content
func WithUploader(u images.Uploader) Option {
	return func(c *Client) {
		c.uploader = u
	}
}

// New returns a marketplace client. Without WithPublic the secure gateway
// serves the open endpoints too.
func New(secure *gateway.Client, opts ...Option) (*Client, error) {
	if secure == nil {
		return nil, fmt.Errorf("[marketplace.New] secure gateway is required")
	}
	c := &Client{secure: secure}
	for _, opt := range opts {
		opt(c)
	}
	if c.public == nil {
		c.public = secure
	}
	return c, nil
}

func (c *Client) uploadImage(ctx context.Context, prefix, name string, content io.Reader) (string, error) {
	if c.uploader == nil {
		return "", ErrUploaderRequired
	}
	url, err := c.uploader.Upload(ctx, images.NewKey(prefix, name), content)
	if err != nil {
		return "", errors.Wrapf(err, "upload image")
	}
	return url, nil
}

// conflictAs maps a 409 from the backend to sentinel, keeping the original error in the chain
func conflictAs(err, sentinel error) error {
	if gateway.StatusCode(err) == http.StatusConflict {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}

func emailQuery(email string) url.Values {
	return url.Values{"email": {email}}
}

func pathID(prefix, id string) string {
	return prefix + "/" + url.PathEscape(id)
}
