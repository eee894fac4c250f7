package whttp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/xlsxcalendar/xlsxcalendar/internal/utils"
	"golang.org/x/net/html"
)

const userAgent = "xlsxcalendar (+https://github.com/xlsxcalendar/xlsxcalendar)"

// AcceptHeader builds the Accept header sent with Fetch.
func AcceptHeader(mediaTypes ...string) WHTTPHeader {
	return WHTTPHeader{Name: "Accept", Value: strings.Join(mediaTypes, ", ")}
}

type WHTTPHeader struct {
	Name  string
	Value string
}

type WHTTPReq struct {
	URL     string
	Method  string
	Headers []WHTTPHeader
}

type WHTTPRes struct {
	StatusCode  int
	ContentType string
	HTTPTitle   string
	Body        []byte
}

// IsRemote reports whether a configured file location is an http(s) URL.
func IsRemote(location string) bool {
	l := strings.ToLower(strings.TrimSpace(location))
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// logrusAdapter routes retryablehttp's leveled logging into utils.Log.
type logrusAdapter struct{}

func (logrusAdapter) Error(msg string, kv ...interface{}) { utils.Log.WithFields(fields(kv)).Error(msg) }
func (logrusAdapter) Info(msg string, kv ...interface{})  { utils.Log.WithFields(fields(kv)).Debug(msg) }
func (logrusAdapter) Debug(msg string, kv ...interface{}) { utils.Log.WithFields(fields(kv)).Debug(msg) }
func (logrusAdapter) Warn(msg string, kv ...interface{})  { utils.Log.WithFields(fields(kv)).Warn(msg) }

func fields(kv []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return out
}

// NewClient returns a retrying client. retries <= 0 disables retries.
func NewClient(retries int, timeout time.Duration) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	if retries < 0 {
		retries = 0
	}
	c.RetryMax = retries
	c.RetryWaitMin = 200 * time.Millisecond
	c.RetryWaitMax = 2 * time.Second
	c.HTTPClient.Timeout = timeout
	c.Logger = logrusAdapter{}
	return c
}

func SendHTTPRequest(ctx context.Context, wReq *WHTTPReq, client *retryablehttp.Client) (*WHTTPRes, error) {
	method := wReq.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, wReq.URL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cache-Control", "no-transform")
	req.Header.Set("Accept-Language", "en")
	for _, h := range wReq.Headers {
		req.Header.Add(h.Name, h.Value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	wRes := &WHTTPRes{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}
	if strings.Contains(wRes.ContentType, "html") {
		if title, ok := getHTMLTitle(string(body)); ok {
			wRes.HTTPTitle = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(title, "\n", ""), "\r", ""))
		}
	}
	return wRes, nil
}

// Fetch GETs url with the extra headers and returns the body of a 2xx response.
func Fetch(ctx context.Context, client *retryablehttp.Client, url string, headers ...WHTTPHeader) ([]byte, error) {
	res, err := SendHTTPRequest(ctx, &WHTTPReq{URL: url, Headers: headers}, client)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		if res.HTTPTitle != "" {
			return nil, fmt.Errorf("fetching %s: unexpected status %d (%s)", url, res.StatusCode, res.HTTPTitle)
		}
		return nil, fmt.Errorf("fetching %s: unexpected status %d", url, res.StatusCode)
	}
	return res.Body, nil
}

// Download stores the body of url in dir, keeping the last path segment as
// file name so that importers can still tell formats apart by extension.
func Download(ctx context.Context, client *retryablehttp.Client, url, dir string) (string, error) {
	body, err := Fetch(ctx, client, url)
	if err != nil {
		return "", err
	}
	name := path.Base(strings.SplitN(url, "?", 2)[0])
	if name == "" || name == "/" || name == "." {
		name = "import.csv"
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, body, 0o600); err != nil {
		return "", err
	}
	utils.Log.Debugf("Downloaded %s to %s (%d bytes)", url, target, len(body))
	return target, nil
}

func isTitleElement(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "title"
}

func traverse(n *html.Node) (string, bool) {
	if isTitleElement(n) {
		if n.FirstChild != nil {
			return n.FirstChild.Data, true
		}
		return "", true
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		result, ok := traverse(c)
		if ok {
			return result, ok
		}
	}

	return "", false
}

func getHTMLTitle(body string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", false
	}
	return traverse(doc)
}
