// client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gkirkpatrick/magic-notes/domain"
)

// API is the note-service surface consumed by notelist.List. *Client is the
// real implementation; tests substitute fakes.
type API interface {
	ListNotes(ctx context.Context, f domain.Filter, p domain.Page) (domain.NoteList, error)
	CreateNote(ctx context.Context, in domain.NoteInput) (domain.Note, error)
	UpdateNote(ctx context.Context, id int64, in domain.NoteInput) (domain.Note, error)
	DeleteNote(ctx context.Context, id int64) error
	ListTags(ctx context.Context) ([]domain.Tag, error)
	CreateTag(ctx context.Context, name string) (domain.Tag, error)
}

// Client is a typed wrapper over the notes REST API.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	log     zerolog.Logger
}

type Option func(*Client)

// WithToken sets the shared API token sent in X-Notes-Token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListNotes(ctx context.Context, f domain.Filter, p domain.Page) (domain.NoteList, error) {
	q := url.Values{}
	if f.BodyText != "" {
		q.Set("body_text", f.BodyText)
	}
	if f.TitleText != "" {
		q.Set("title_text", f.TitleText)
	}
	for _, tag := range f.Tags {
		q.Add("tags", tag)
	}
	p = p.Clamped()
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("page_size", strconv.Itoa(p.PageSize))

	var wire noteListWire
	if err := c.do(ctx, http.MethodGet, "/notes?"+q.Encode(), nil, &wire); err != nil {
		return domain.NoteList{}, err
	}
	if bad := wire.violations(); len(bad) > 0 {
		return domain.NoteList{}, &SchemaError{Fields: bad}
	}

	items := make([]domain.Note, len(*wire.Items))
	for i, item := range *wire.Items {
		items[i] = item.toDomain()
	}
	return domain.NoteList{
		Items:      items,
		Total:      *wire.Total,
		Page:       *wire.Page,
		PageSize:   *wire.PageSize,
		TotalPages: *wire.TotalPages,
	}, nil
}

func (c *Client) CreateNote(ctx context.Context, in domain.NoteInput) (domain.Note, error) {
	in, err := validateInput(in)
	if err != nil {
		return domain.Note{}, err
	}
	return c.noteRequest(ctx, http.MethodPost, "/notes", in)
}

func (c *Client) UpdateNote(ctx context.Context, id int64, in domain.NoteInput) (domain.Note, error) {
	in, err := validateInput(in)
	if err != nil {
		return domain.Note{}, err
	}
	return c.noteRequest(ctx, http.MethodPut, fmt.Sprintf("/notes/%d", id), in)
}

func (c *Client) DeleteNote(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/notes/%d", id), nil, nil)
}

func (c *Client) ListTags(ctx context.Context) ([]domain.Tag, error) {
	var wires []tagWire
	if err := c.do(ctx, http.MethodGet, "/tags", nil, &wires); err != nil {
		return nil, err
	}

	var bad []string
	tags := make([]domain.Tag, 0, len(wires))
	for i, w := range wires {
		if v := w.violations(itemPrefix(i)); len(v) > 0 {
			bad = append(bad, v...)
			continue
		}
		tags = append(tags, w.toDomain())
	}
	if len(bad) > 0 {
		return nil, &SchemaError{Fields: bad}
	}
	return tags, nil
}

func (c *Client) CreateTag(ctx context.Context, name string) (domain.Tag, error) {
	in, err := domain.TagInput{Name: name}.Normalized()
	if err != nil {
		var fe domain.FieldErrors
		errors.As(err, &fe)
		return domain.Tag{}, &ValidationError{Fields: fe}
	}

	var wire tagWire
	if err := c.do(ctx, http.MethodPost, "/tags", in, &wire); err != nil {
		return domain.Tag{}, err
	}
	if bad := wire.violations(""); len(bad) > 0 {
		return domain.Tag{}, &SchemaError{Fields: bad}
	}
	return wire.toDomain(), nil
}

func (c *Client) noteRequest(ctx context.Context, method, path string, in domain.NoteInput) (domain.Note, error) {
	var wire noteWire
	if err := c.do(ctx, method, path, in, &wire); err != nil {
		return domain.Note{}, err
	}
	if bad := wire.violations(""); len(bad) > 0 {
		return domain.Note{}, &SchemaError{Fields: bad}
	}
	return wire.toDomain(), nil
}

// validateInput runs the shared domain rules locally; invalid input never
// reaches the network.
func validateInput(in domain.NoteInput) (domain.NoteInput, error) {
	in, err := in.Normalized()
	if err != nil {
		var fe domain.FieldErrors
		errors.As(err, &fe)
		return domain.NoteInput{}, &ValidationError{Fields: fe}
	}
	return in, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("X-Notes-Token", c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request transport failure")
		return &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{StatusCode: resp.StatusCode, Message: serverMessage(resp)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &SchemaError{Fields: []string{"body"}}
	}
	return nil
}

func serverMessage(resp *http.Response) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ""
	}
	return payload.Error
}
