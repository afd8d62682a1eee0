package e2etest

import (
	"bytes"
	"context"
	"fmt"
	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/sentinels/internal/errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	neturl "net/url"
	"time"
)

// Client is an HTTP client keeping the session and CSRF cookies of one visitor.
type Client struct {
	client *http.Client
	url    string
}

// NewClient creates a cookie-aware HTTP client for the server at url.
func NewClient(url string) (*Client, error) {
	jar, err := newUnsafeCookieJar()
	if err != nil {
		return nil, errors.Wrap(err, "create unsafe cookie jar")
	}
	return &Client{
		client: &http.Client{Jar: jar},
		url:    url,
	}, nil
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			c.url+urlPath,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = c.client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	if req, err = c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil); err != nil {
		return nil, errors.Wrap(err, "create request with context")
	}
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

// GetDoc fetches a URL and returns a goquery document. Any status other than 200 is an error.
func (c *Client) GetDoc(ctx context.Context, urlPath string) (*goquery.Document, error) {
	var (
		err  error
		resp *http.Response
		doc  *goquery.Document
	)
	if resp, err = c.Get(ctx, urlPath); err != nil {
		return nil, errors.Wrap(err, "client get")
	}
	if http.StatusOK != resp.StatusCode {
		_ = resp.Body.Close()
		return nil, errors.New("unexpected status code", slog.Int("status", resp.StatusCode))
	}
	if doc, err = ReadDoc(resp); err != nil {
		return nil, errors.Wrap(err, "read document")
	}
	return doc, nil
}

// ReadDoc parses the response body as HTML and closes it.
func ReadDoc(resp *http.Response) (*goquery.Document, error) {
	defer func() {
		_ = resp.Body.Close()
	}()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "create document from reader")
	}
	return doc, nil
}

// newRequestWithContext creates a new HTTP request to the server that respects the given context.
func (c *Client) newRequestWithContext(
	ctx context.Context,
	method, urlPath string,
	body io.Reader,
) (*http.Request, error) {
	var (
		req *http.Request
		err error
	)
	if req, err = http.NewRequestWithContext(ctx, method, c.url+urlPath, body); err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	return req, nil
}

func (c *Client) extractCSRFToken(doc *goquery.Document, formActionURLPath string) (string, error) {
	formSelector := fmt.Sprintf("form[action='%s']", formActionURLPath)
	form := doc.Find(formSelector)
	csrfToken, ok := form.Find("input[name=csrf_token]").Attr("value")
	if !ok {
		return "", errors.New("csrf_token not found in form", slog.String("form", formSelector))
	}
	return csrfToken, nil
}

// FormFile is a file attached to a multipart form submission.
type FormFile struct {
	FieldName   string
	Filename    string
	ContentType string
	Content     []byte
}

// Form is the data submitted with [Client.SubmitForm].
type Form struct {
	Values neturl.Values
	Files  []FormFile
	// HTMX sends the submission the way htmx does, with the HX-Request header.
	HTMX bool
}

// SubmitForm loads the page at formURLPath, submits the form with action formActionURLPath as multipart/form-data
// including the page's CSRF token and returns the response. The caller must close the response body.
//
// Redirects are followed, so a successful post-redirect-get returns the final page.
func (c *Client) SubmitForm(
	ctx context.Context,
	formURLPath string,
	formActionURLPath string,
	form Form,
) (*http.Response, error) {
	var (
		doc *goquery.Document
		err error
	)
	if doc, err = c.GetDoc(ctx, formURLPath); err != nil {
		return nil, errors.Wrap(err, "get document")
	}

	var csrfToken string
	if csrfToken, err = c.extractCSRFToken(doc, formActionURLPath); err != nil {
		return nil, errors.Wrap(err, "extract CSRF token")
	}

	var (
		body        bytes.Buffer
		contentType string
	)
	if contentType, err = writeMultipart(&body, csrfToken, form); err != nil {
		return nil, errors.Wrap(err, "write multipart body")
	}

	var req *http.Request
	if req, err = c.newRequestWithContext(ctx, http.MethodPost, formActionURLPath, &body); err != nil {
		return nil, errors.Wrap(err, "new request with context")
	}
	req.Header.Set("Content-Type", contentType)
	if form.HTMX {
		req.Header.Set("HX-Request", "true")
		req.Header.Set("HX-Current-URL", c.url+formURLPath)
	}
	var resp *http.Response
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

func writeMultipart(w io.Writer, csrfToken string, form Form) (string, error) {
	mw := multipart.NewWriter(w)
	if err := mw.WriteField("csrf_token", csrfToken); err != nil {
		return "", errors.Wrap(err, "write csrf token")
	}
	for name, values := range form.Values {
		for _, value := range values {
			if err := mw.WriteField(name, value); err != nil {
				return "", errors.Wrap(err, "write field", slog.String("field", name))
			}
		}
	}
	for _, file := range form.Files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, file.FieldName, file.Filename))
		header.Set("Content-Type", file.ContentType)
		part, err := mw.CreatePart(header)
		if err != nil {
			return "", errors.Wrap(err, "create file part", slog.String("field", file.FieldName))
		}
		if _, err = part.Write(file.Content); err != nil {
			return "", errors.Wrap(err, "write file part", slog.String("field", file.FieldName))
		}
	}
	if err := mw.Close(); err != nil {
		return "", errors.Wrap(err, "close multipart writer")
	}
	return mw.FormDataContentType(), nil
}
