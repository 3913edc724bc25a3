// Package content stores the marketing records edited from the admin
// dashboard: completed projects, customer reviews and blog posts.
package content

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes record types sharing the content_records table.
type Kind string

const (
	KindProject Kind = "project"
	KindReview  Kind = "review"
	KindPost    Kind = "post"
)

// Record is implemented by every storable content type. Normalize returns a
// cleaned copy (trimmed strings, derived defaults) and is applied before
// Validate on every write.
type Record[T any] interface {
	Kind() Kind
	Normalize() T
	Validate() error
	SlugValue() string
	IsPublished() bool
}

// Entry is a stored record with its identity and timestamps.
type Entry[T any] struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Data      T         `json:"data"`
}

// Project is a completed job shown in the portfolio.
type Project struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	ServiceID   string   `json:"serviceId,omitempty"`
	City        string   `json:"city,omitempty"`
	Images      []string `json:"images,omitempty"`
	CompletedOn string   `json:"completedOn,omitempty"`
	Published   bool     `json:"published"`
	Featured    bool     `json:"featured"`
}

func (Project) Kind() Kind { return KindProject }
func (p Project) SlugValue() string { return "" }
func (p Project) IsPublished() bool { return p.Published }

func (p Project) Normalize() Project {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.City = strings.TrimSpace(p.City)
	p.Images = compact(p.Images)
	return p
}

func (p Project) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if p.CompletedOn != "" {
		if _, err := time.Parse(time.DateOnly, p.CompletedOn); err != nil {
			return fmt.Errorf("%w: completedOn must be YYYY-MM-DD", ErrInvalid)
		}
	}
	return nil
}

// Review is a customer testimonial.
type Review struct {
	Author    string `json:"author"`
	Rating    int    `json:"rating"`
	Body      string `json:"body"`
	ServiceID string `json:"serviceId,omitempty"`
	City      string `json:"city,omitempty"`
	Published bool   `json:"published"`
}

func (Review) Kind() Kind { return KindReview }
func (r Review) SlugValue() string { return "" }
func (r Review) IsPublished() bool { return r.Published }

func (r Review) Normalize() Review {
	r.Author = strings.TrimSpace(r.Author)
	r.Body = strings.TrimSpace(r.Body)
	r.City = strings.TrimSpace(r.City)
	return r
}

func (r Review) Validate() error {
	switch {
	case r.Author == "":
		return fmt.Errorf("%w: author is required", ErrInvalid)
	case r.Body == "":
		return fmt.Errorf("%w: body is required", ErrInvalid)
	case r.Rating < 1 || r.Rating > 5:
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalid)
	}
	return nil
}

// PostFormat is the markup of a post body. Rendering happens client side.
type PostFormat string

const (
	FormatMarkdown PostFormat = "markdown"
	FormatHTML     PostFormat = "html"
)

// Post is a blog article.
type Post struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Body        string     `json:"body"`
	Format      PostFormat `json:"format"`
	CoverImage  string     `json:"coverImage,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

func (Post) Kind() Kind { return KindPost }
func (p Post) SlugValue() string { return p.Slug }
func (p Post) IsPublished() bool { return p.Published }

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func (p Post) Normalize() Post {
	p.Title = strings.TrimSpace(p.Title)
	p.Slug = strings.TrimSpace(p.Slug)
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if p.Format == "" {
		p.Format = FormatMarkdown
	}
	p.Tags = compact(p.Tags)
	return p
}

func (p Post) Validate() error {
	switch {
	case p.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalid)
	case !slugPattern.MatchString(p.Slug):
		return fmt.Errorf("%w: slug %q must be lowercase words joined by dashes", ErrInvalid, p.Slug)
	case p.Format != FormatMarkdown && p.Format != FormatHTML:
		return fmt.Errorf("%w: format must be markdown or html", ErrInvalid)
	case p.Published && strings.TrimSpace(p.Body) == "":
		return fmt.Errorf("%w: a published post needs a body", ErrInvalid)
	}
	return nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	s = nonSlug.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

func compact(items []string) []string {
	out := items[:0:0]
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
