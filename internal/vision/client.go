// Package vision turns product images into search keywords using a
// Google-Vision-shaped image annotation collaborator.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/donaldgifford/pricelens/internal/metrics"
)

// Sentinel errors for annotation failures.
var (
	// ErrUnsupportedImage means the submitted bytes are empty or not an image.
	ErrUnsupportedImage = errors.New("unsupported image")

	// ErrAnalysisUnavailable means the annotation collaborator could not be
	// reached or returned a payload that could not be interpreted.
	ErrAnalysisUnavailable = errors.New("image analysis unavailable")
)

// Annotation holds the collaborator's findings for one image.
type Annotation struct {
	Labels  []string
	Logos   []string
	Objects []string
	// FullText is the single best full-text annotation, verbatim.
	FullText string
}

// Client annotates product images.
type Client interface {
	Annotate(ctx context.Context, image []byte) (*Annotation, error)
}

// RESTClient implements Client against an images:annotate HTTP endpoint.
type RESTClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// RESTOption configures the RESTClient.
type RESTOption func(*RESTClient)

// WithAPIKey attaches an API key to every annotate request.
func WithAPIKey(key string) RESTOption {
	return func(c *RESTClient) {
		c.apiKey = key
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) RESTOption {
	return func(c *RESTClient) {
		c.client = hc
	}
}

// NewRESTClient creates a client for the given annotate endpoint.
func NewRESTClient(endpoint string, opts ...RESTOption) *RESTClient {
	c := &RESTClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image    imageContent `json:"image"`
	Features []feature    `json:"features"`
}

type imageContent struct {
	Content string `json:"content"`
}

type feature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults,omitempty"`
}

type annotateResponse struct {
	Responses []imageResponse `json:"responses"`
}

type imageResponse struct {
	LabelAnnotations           []entityAnnotation `json:"labelAnnotations"`
	LogoAnnotations            []entityAnnotation `json:"logoAnnotations"`
	TextAnnotations            []entityAnnotation `json:"textAnnotations"`
	LocalizedObjectAnnotations []objectAnnotation `json:"localizedObjectAnnotations"`
	Error                      *statusError       `json:"error"`
}

type entityAnnotation struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

type objectAnnotation struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type statusError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Annotate sends one annotation request for the image. It makes exactly one
// attempt; transient collaborator failures surface as ErrAnalysisUnavailable
// and the caller decides whether the search continues without keywords.
func (c *RESTClient) Annotate(ctx context.Context, image []byte) (*Annotation, error) {
	if err := CheckImage(image); err != nil {
		return nil, err
	}

	metrics.VisionCallsTotal.Inc()
	start := time.Now()
	defer func() {
		metrics.VisionCallDuration.Observe(time.Since(start).Seconds())
	}()

	reqBody := annotateRequest{
		Requests: []imageRequest{{
			Image: imageContent{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []feature{
				{Type: "LABEL_DETECTION", MaxResults: 10},
				{Type: "LOGO_DETECTION", MaxResults: 5},
				{Type: "TEXT_DETECTION"},
				{Type: "OBJECT_LOCALIZATION", MaxResults: 10},
			},
		}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encoding annotate request: %w", err)
	}

	u := c.endpoint
	if c.apiKey != "" {
		u += "?key=" + c.apiKey
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating annotate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		metrics.VisionFailuresTotal.Inc()
		return nil, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.VisionFailuresTotal.Inc()
		return nil, fmt.Errorf("%w: reading response: %v", ErrAnalysisUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.VisionFailuresTotal.Inc()
		return nil, fmt.Errorf("%w: status %d", ErrAnalysisUnavailable, resp.StatusCode)
	}

	var apiResp annotateResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		metrics.VisionFailuresTotal.Inc()
		return nil, fmt.Errorf("%w: parsing response: %v", ErrAnalysisUnavailable, err)
	}

	if len(apiResp.Responses) == 0 {
		metrics.VisionFailuresTotal.Inc()
		return nil, fmt.Errorf("%w: empty response set", ErrAnalysisUnavailable)
	}

	r := apiResp.Responses[0]
	if r.Error != nil {
		metrics.VisionFailuresTotal.Inc()
		return nil, fmt.Errorf("%w: %s (code %d)", ErrAnalysisUnavailable, r.Error.Message, r.Error.Code)
	}

	ann := &Annotation{}
	for _, l := range r.LabelAnnotations {
		ann.Labels = append(ann.Labels, l.Description)
	}
	for _, l := range r.LogoAnnotations {
		ann.Logos = append(ann.Logos, l.Description)
	}
	for _, o := range r.LocalizedObjectAnnotations {
		ann.Objects = append(ann.Objects, o.Name)
	}
	// The first text annotation covers the whole image; the rest repeat it
	// word by word.
	if len(r.TextAnnotations) > 0 {
		ann.FullText = r.TextAnnotations[0].Description
	}

	return ann, nil
}

// CheckImage validates that the bytes look like an image before they are
// shipped to the collaborator.
func CheckImage(image []byte) error {
	if len(image) == 0 {
		return fmt.Errorf("%w: empty payload", ErrUnsupportedImage)
	}
	contentType := http.DetectContentType(image)
	if len(contentType) < 6 || contentType[:6] != "image/" {
		return fmt.Errorf("%w: detected %s", ErrUnsupportedImage, contentType)
	}
	return nil
}
