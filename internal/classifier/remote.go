package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Remote scores inputs against an external model service over HTTP. The
// service contract is a JSON batch API: POST /v1/scores with the input
// batch, GET /v1/metadata for the static input/output contract, and
// GET /health for liveness.
type Remote struct {
	name       string
	baseURL    string
	meta       Metadata
	httpClient *http.Client
}

type scoreRequest struct {
	Inputs [][]float64 `json:"inputs"`
}

type scoreResponse struct {
	Scores [][]float64 `json:"scores"`
	Labels []int       `json:"labels"`
}

type metadataResponse struct {
	Name       string  `json:"name"`
	InputShape []int   `json:"input_shape"`
	NumClasses int     `json:"num_classes"`
	MinValue   float64 `json:"min_value"`
	MaxValue   float64 `json:"max_value"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// NewRemote fetches the service metadata once and returns a classifier
// bound to it.
func NewRemote(ctx context.Context, baseURL string) (*Remote, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	c := &Remote{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	var meta metadataResponse
	if err := c.getJSON(ctx, "/v1/metadata", &meta); err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}
	if meta.NumClasses < 2 || len(meta.InputShape) == 0 {
		return nil, fmt.Errorf("service metadata incomplete: classes=%d shape=%v", meta.NumClasses, meta.InputShape)
	}

	c.name = meta.Name
	if c.name == "" {
		c.name = baseURL
	}
	c.meta = Metadata{
		InputShape: meta.InputShape,
		NumClasses: meta.NumClasses,
		MinValue:   meta.MinValue,
		MaxValue:   meta.MaxValue,
	}
	return c, nil
}

func (c *Remote) Name() string {
	return c.name
}

func (c *Remote) Metadata() Metadata {
	return c.meta
}

func (c *Remote) Health(ctx context.Context) error {
	var health healthResponse
	if err := c.getJSON(ctx, "/health", &health); err != nil {
		return err
	}
	if health.Status != "healthy" {
		return fmt.Errorf("service unhealthy: %s", health.Status)
	}
	return nil
}

func (c *Remote) Scores(ctx context.Context, batch [][]float64) ([][]float64, []int, error) {
	payload, err := json.Marshal(scoreRequest{Inputs: batch})
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/scores", bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, nil, fmt.Errorf("score request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var scored scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&scored); err != nil {
		return nil, nil, err
	}
	if len(scored.Scores) != len(batch) || len(scored.Labels) != len(batch) {
		return nil, nil, fmt.Errorf("%w: scores=%d labels=%d want=%d",
			ErrMalformedResponse, len(scored.Scores), len(scored.Labels), len(batch))
	}
	return scored.Scores, scored.Labels, nil
}

func (c *Remote) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request %s failed: status=%d body=%s", path, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
