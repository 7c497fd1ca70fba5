package hunyuan

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	service   = "ai3d"
	version   = "2024-12-23"
	algorithm = "TC3-HMAC-SHA256"

	actionSubmit = "SubmitHunyuanTo3DProJob"
	actionQuery  = "QueryHunyuanTo3DProJob"

	maxImageBytes = 20 << 20
	maxAssetBytes = 200 << 20
)

type JobStatus string

const (
	StatusQueued  JobStatus = "queued"
	StatusRunning JobStatus = "running"
	StatusDone    JobStatus = "done"
	StatusFailed  JobStatus = "failed"
)

// JobResult is the normalized outcome of a job query.
type JobResult struct {
	Status       JobStatus
	AssetURL     string
	PreviewURL   string
	ErrorMessage string
}

type Options struct {
	Endpoint     string
	Region       string
	SecretID     string
	SecretKey    string
	GenerateType string
	Timeout      time.Duration
}

type Client struct {
	endpoint     string
	host         string
	region       string
	secretID     string
	secretKey    string
	generateType string
	httpClient   *http.Client
	now          func() time.Time
	backoffs     []time.Duration
}

// APIError is an error envelope returned by the Tencent Cloud API.
type APIError struct {
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hunyuan api error: %s - %s (request %s)", e.Code, e.Message, e.RequestID)
}

type envelope struct {
	Response json.RawMessage `json:"Response"`
}

type responseMeta struct {
	RequestID string `json:"RequestId"`
	Error     *struct {
		Code    string `json:"Code"`
		Message string `json:"Message"`
	} `json:"Error,omitempty"`
}

type submitResponse struct {
	JobID string `json:"JobId"`
}

type resultFile struct {
	Type            string `json:"Type"`
	URL             string `json:"Url"`
	PreviewImageURL string `json:"PreviewImageUrl"`
}

type queryResponse struct {
	Status        string       `json:"Status"`
	ErrorCode     string       `json:"ErrorCode"`
	ErrorMessage  string       `json:"ErrorMessage"`
	ResultFile3Ds []resultFile `json:"ResultFile3Ds"`
}

func NewClient(opts Options) (*Client, error) {
	endpoint := strings.TrimSuffix(opts.Endpoint, "/")
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid hunyuan endpoint %q", opts.Endpoint)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	generateType := opts.GenerateType
	if generateType == "" {
		generateType = "Normal"
	}

	return &Client{
		endpoint:     endpoint,
		host:         u.Host,
		region:       opts.Region,
		secretID:     opts.SecretID,
		secretKey:    opts.SecretKey,
		generateType: generateType,
		httpClient:   &http.Client{Timeout: timeout},
		now:          time.Now,
		backoffs:     []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}, nil
}

// SetBackoffs overrides the retry schedule used for downloads.
func (c *Client) SetBackoffs(backoffs []time.Duration) {
	c.backoffs = backoffs
}

// SubmitJob downloads the source image and submits it for 3D generation,
// returning the provider's job id.
func (c *Client) SubmitJob(ctx context.Context, imageURL string) (string, error) {
	image, _, err := c.download(ctx, imageURL, maxImageBytes)
	if err != nil {
		return "", fmt.Errorf("failed to fetch source image: %w", err)
	}

	var result submitResponse
	err = c.call(ctx, actionSubmit, map[string]string{
		"ImageBase64":  base64.StdEncoding.EncodeToString(image),
		"GenerateType": c.generateType,
	}, &result)
	if err != nil {
		return "", err
	}
	if result.JobID == "" {
		return "", fmt.Errorf("JobId is empty in submit response")
	}
	return result.JobID, nil
}

// QueryJob reports the current state of a job.
func (c *Client) QueryJob(ctx context.Context, jobID string) (*JobResult, error) {
	var result queryResponse
	if err := c.call(ctx, actionQuery, map[string]string{"JobId": jobID}, &result); err != nil {
		return nil, err
	}

	switch result.Status {
	case "WAIT":
		return &JobResult{Status: StatusQueued}, nil
	case "RUN":
		return &JobResult{Status: StatusRunning}, nil
	case "FAIL":
		msg := result.ErrorMessage
		if msg == "" {
			msg = "Model generation failed"
		}
		if result.ErrorCode != "" {
			msg = result.ErrorCode + ": " + msg
		}
		return &JobResult{Status: StatusFailed, ErrorMessage: msg}, nil
	case "DONE":
		out := &JobResult{Status: StatusDone}
		if f := pickGLB(result.ResultFile3Ds); f != nil {
			out.AssetURL = f.URL
			out.PreviewURL = f.PreviewImageURL
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected job status %q", result.Status)
	}
}

// DownloadAsset fetches a generated asset, retrying transient failures.
func (c *Client) DownloadAsset(ctx context.Context, assetURL string) ([]byte, string, error) {
	var (
		data        []byte
		contentType string
	)
	err := c.RetryWithBackoff(ctx, func() error {
		var err error
		data, contentType, err = c.download(ctx, assetURL, maxAssetBytes)
		return err
	}, len(c.backoffs)+1)
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}

// RetryWithBackoff executes fn until it succeeds, sleeping between attempts.
func (c *Client) RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if i == maxRetries-1 || i >= len(c.backoffs) {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoffs[i]):
		}
	}
	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func (c *Client) call(ctx context.Context, action string, params interface{}, out interface{}) error {
	payload, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range c.sign(action, payload, c.now()) {
		req.Header.Set(k, v)
	}
	req.Host = c.host

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to call %s: status %d, body: %s", action, resp.StatusCode, string(body))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Response) == 0 {
		return fmt.Errorf("failed to decode response: body: %s", string(body))
	}
	var meta responseMeta
	if err := json.Unmarshal(env.Response, &meta); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if meta.Error != nil {
		return &APIError{Code: meta.Error.Code, Message: meta.Error.Message, RequestID: meta.RequestID}
	}
	if err := json.Unmarshal(env.Response, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", action, err)
	}
	return nil
}

// sign builds the TC3-HMAC-SHA256 headers for a JSON POST to the API root.
func (c *Client) sign(action string, payload []byte, now time.Time) map[string]string {
	timestamp := now.Unix()
	date := time.Unix(timestamp, 0).UTC().Format("2006-01-02")
	contentType := "application/json; charset=utf-8"

	canonicalHeaders := fmt.Sprintf("content-type:%s\nhost:%s\nx-tc-action:%s\n",
		contentType, c.host, strings.ToLower(action))
	signedHeaders := "content-type;host;x-tc-action"
	canonicalRequest := strings.Join([]string{
		http.MethodPost,
		"/",
		"",
		canonicalHeaders,
		signedHeaders,
		sha256Hex(payload),
	}, "\n")

	credentialScope := date + "/" + service + "/tc3_request"
	stringToSign := strings.Join([]string{
		algorithm,
		strconv.FormatInt(timestamp, 10),
		credentialScope,
		sha256Hex([]byte(canonicalRequest)),
	}, "\n")

	secretDate := hmacSHA256([]byte("TC3"+c.secretKey), date)
	secretService := hmacSHA256(secretDate, service)
	secretSigning := hmacSHA256(secretService, "tc3_request")
	signature := hex.EncodeToString(hmacSHA256(secretSigning, stringToSign))

	headers := map[string]string{
		"Content-Type":   contentType,
		"X-TC-Action":    action,
		"X-TC-Version":   version,
		"X-TC-Timestamp": strconv.FormatInt(timestamp, 10),
		"Authorization": fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
			algorithm, c.secretID, credentialScope, signedHeaders, signature),
	}
	if c.region != "" {
		headers["X-TC-Region"] = c.region
	}
	return headers
}

func (c *Client) download(ctx context.Context, rawURL string, limit int64) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, "", fmt.Errorf("failed to download %s: status %d, body: %s", rawURL, resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read download body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, "", fmt.Errorf("download %s exceeds %d bytes", rawURL, limit)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func pickGLB(files []resultFile) *resultFile {
	for i := range files {
		f := &files[i]
		if strings.EqualFold(f.Type, "glb") || strings.HasSuffix(strings.ToLower(pathOf(f.URL)), ".glb") {
			return f
		}
	}
	return nil
}

func pathOf(raw string) string {
	if u, err := url.Parse(raw); err == nil {
		return u.Path
	}
	return raw
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key []byte, msg string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(msg))
	return h.Sum(nil)
}
