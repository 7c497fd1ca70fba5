package hunyuan

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	c, err := NewClient(Options{
		Endpoint:  endpoint,
		Region:    "ap-guangzhou",
		SecretID:  "AKIDEXAMPLE",
		SecretKey: "secret",
	})
	require.NoError(t, err)
	c.SetBackoffs([]time.Duration{time.Millisecond, time.Millisecond})
	return c
}

func apiServer(t *testing.T, handle func(action string, body map[string]string) string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("png-bytes"))
			return
		}
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, handle(r.Header.Get("X-TC-Action"), body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSignHeaders(t *testing.T) {
	c := newTestClient(t, "https://ai3d.tencentcloudapi.com")
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	h := c.sign(actionQuery, []byte(`{"JobId":"1"}`), now)

	assert.Equal(t, actionQuery, h["X-TC-Action"])
	assert.Equal(t, version, h["X-TC-Version"])
	assert.Equal(t, "ap-guangzhou", h["X-TC-Region"])
	assert.Equal(t, "1741064767", h["X-TC-Timestamp"])
	assert.True(t, strings.HasPrefix(h["Authorization"],
		"TC3-HMAC-SHA256 Credential=AKIDEXAMPLE/2025-03-04/ai3d/tc3_request, SignedHeaders=content-type;host;x-tc-action, Signature="))

	again := c.sign(actionQuery, []byte(`{"JobId":"1"}`), now)
	assert.Equal(t, h["Authorization"], again["Authorization"])

	other := c.sign(actionQuery, []byte(`{"JobId":"2"}`), now)
	assert.NotEqual(t, h["Authorization"], other["Authorization"])
}

func TestSubmitJobSendsBase64Image(t *testing.T) {
	var got map[string]string
	srv := apiServer(t, func(action string, body map[string]string) string {
		assert.Equal(t, actionSubmit, action)
		got = body
		return `{"Response":{"JobId":"job-123","RequestId":"r1"}}`
	})
	c := newTestClient(t, srv.URL)

	jobID, err := c.SubmitJob(context.Background(), srv.URL+"/dog.png")
	require.NoError(t, err)
	assert.Equal(t, "job-123", jobID)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("png-bytes")), got["ImageBase64"])
	assert.Equal(t, "Normal", got["GenerateType"])
}

func TestSubmitJobAPIError(t *testing.T) {
	srv := apiServer(t, func(string, map[string]string) string {
		return `{"Response":{"Error":{"Code":"AuthFailure.SignatureFailure","Message":"bad signature"},"RequestId":"r2"}}`
	})
	c := newTestClient(t, srv.URL)

	_, err := c.SubmitJob(context.Background(), srv.URL+"/dog.png")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "AuthFailure.SignatureFailure", apiErr.Code)
	assert.Equal(t, "r2", apiErr.RequestID)
}

func TestQueryJobStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     JobResult
	}{
		{"wait", `{"Response":{"Status":"WAIT"}}`, JobResult{Status: StatusQueued}},
		{"run", `{"Response":{"Status":"RUN"}}`, JobResult{Status: StatusRunning}},
		{"fail", `{"Response":{"Status":"FAIL","ErrorCode":"InvalidImage","ErrorMessage":"no subject"}}`,
			JobResult{Status: StatusFailed, ErrorMessage: "InvalidImage: no subject"}},
		{"fail without message", `{"Response":{"Status":"FAIL"}}`,
			JobResult{Status: StatusFailed, ErrorMessage: "Model generation failed"}},
		{"done", `{"Response":{"Status":"DONE","ResultFile3Ds":[
			{"Type":"OBJ","Url":"https://cos.example.com/a.obj"},
			{"Type":"GLB","Url":"https://cos.example.com/a.glb?sign=x","PreviewImageUrl":"https://cos.example.com/a.png"}]}}`,
			JobResult{Status: StatusDone, AssetURL: "https://cos.example.com/a.glb?sign=x", PreviewURL: "https://cos.example.com/a.png"}},
		{"done without glb", `{"Response":{"Status":"DONE","ResultFile3Ds":[]}}`, JobResult{Status: StatusDone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apiServer(t, func(action string, body map[string]string) string {
				assert.Equal(t, actionQuery, action)
				assert.Equal(t, "job-1", body["JobId"])
				return tt.response
			})
			c := newTestClient(t, srv.URL)

			res, err := c.QueryJob(context.Background(), "job-1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, *res)
		})
	}
}

func TestQueryJobHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	_, err := c.QueryJob(context.Background(), "job-1")
	assert.ErrorContains(t, err, "status 502")
}

func TestDownloadAssetRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "model/gltf-binary")
		w.Write([]byte("glTF"))
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	data, contentType, err := c.DownloadAsset(context.Background(), srv.URL+"/a.glb")
	require.NoError(t, err)
	assert.Equal(t, []byte("glTF"), data)
	assert.Equal(t, "model/gltf-binary", contentType)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDownloadAssetGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	_, _, err := c.DownloadAsset(context.Background(), srv.URL+"/a.glb")
	assert.ErrorContains(t, err, "failed after 3 retries")
}
