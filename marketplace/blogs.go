package marketplace

import (
	"context"
	"strings"
	"time"

	"github.com/jrsteele09/localchef-bazaar/internal/errors"
	"github.com/jrsteele09/localchef-bazaar/users"
)

func (c *Client) Blogs(ctx context.Context) ([]Blog, error) {
	var out []Blog
	if err := c.secure.Get(ctx, "/blogs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Blog(ctx context.Context, id string) (*Blog, error) {
	var out Blog
	if err := c.secure.Get(ctx, pathID("/blogs", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBlog publishes a post by author, dated now
func (c *Client) CreateBlog(ctx context.Context, author *users.Profile, in BlogInput, now time.Time) (*Blog, error) {
	if author == nil {
		return nil, errors.ErrNoSession
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	image := strings.TrimSpace(in.ImageURL)
	if in.Image != nil {
		var err error
		if image, err = c.uploadImage(ctx, "blogs", in.ImageName, in.Image); err != nil {
			return nil, err
		}
	}

	blog := &Blog{
		Title:       strings.TrimSpace(in.Title),
		Category:    strings.TrimSpace(in.Category),
		Content:     in.Content,
		Image:       image,
		Author:      BlogAuthor(author.DisplayName),
		AuthorEmail: author.Email,
		Date:        BlogDate(now),
	}
	var res InsertResult
	if err := c.secure.Post(ctx, "/blogs", blog, &res); err != nil {
		return nil, err
	}
	blog.ID = res.InsertedID
	return blog, nil
}

func (c *Client) DeleteBlog(ctx context.Context, id string) (*DeleteResult, error) {
	var out DeleteResult
	if err := c.secure.Delete(ctx, pathID("/blogs", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
