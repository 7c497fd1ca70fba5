package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"pet3d-backend/internal/hunyuan"
	"pet3d-backend/internal/paypal"
)

type memoryStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	failPut bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{blobs: make(map[string][]byte)}
}

func (m *memoryStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut {
		return "", errors.New("bucket unavailable")
	}
	m.blobs[key] = append([]byte(nil), data...)
	return "https://cdn.test/" + key, nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

func (m *memoryStore) keys(suffix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.blobs {
		if strings.HasSuffix(k, suffix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

type fakeGenerator struct {
	mu         sync.Mutex
	submitErr  error
	queryErr   error
	result     hunyuan.JobResult
	queryDelay time.Duration
	assets     map[string][]byte
	submitted  []string
	queries    atomic.Int32
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{
		result: hunyuan.JobResult{Status: hunyuan.StatusRunning},
		assets: map[string][]byte{
			"https://provider.test/out.glb":     []byte("glTF-binary"),
			"https://provider.test/preview.png": []byte("\x89PNG preview"),
		},
	}
}

func (f *fakeGenerator) SubmitJob(_ context.Context, imageURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submitted = append(f.submitted, imageURL)
	return fmt.Sprintf("job-%d", len(f.submitted)), nil
}

func (f *fakeGenerator) QueryJob(ctx context.Context, _ string) (*hunyuan.JobResult, error) {
	f.queries.Add(1)
	if f.queryDelay > 0 {
		select {
		case <-time.After(f.queryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	res := f.result
	return &res, nil
}

func (f *fakeGenerator) DownloadAsset(_ context.Context, url string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.assets[url]
	if !ok {
		return nil, "", fmt.Errorf("GET %s: 404", url)
	}
	if strings.HasSuffix(url, ".png") {
		return data, "image/png", nil
	}
	return data, "application/octet-stream", nil
}

func (f *fakeGenerator) set(res hunyuan.JobResult, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.result = res
	f.queryErr = err
}

type fakePayPal struct {
	mu            sync.Mutex
	created       []paypal.CreateOrderInput
	createErr     error
	noApproval    bool
	captureStatus string
	captureErr    error
	noCaptureID   bool
	orderStatus   string
	getErr        error
	captures      atomic.Int32
	gets          atomic.Int32
}

func newFakePayPal() *fakePayPal {
	return &fakePayPal{captureStatus: paypal.StatusCompleted}
}

func (f *fakePayPal) CreateOrder(_ context.Context, in paypal.CreateOrderInput) (*paypal.CreatedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, in)
	id := fmt.Sprintf("PP-%d", len(f.created))
	out := &paypal.CreatedOrder{
		ID:     id,
		Status: "CREATED",
		Raw:    []byte(`{"id":"` + id + `","status":"CREATED"}`),
	}
	if !f.noApproval {
		out.ApprovalURL = "https://www.sandbox.paypal.com/checkoutnow?token=" + id
	}
	return out, nil
}

func (f *fakePayPal) CaptureOrder(_ context.Context, orderID string) (*paypal.CaptureResult, error) {
	f.captures.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	res := &paypal.CaptureResult{
		OrderID: orderID,
		Status:  f.captureStatus,
		Raw:     []byte(`{"id":"` + orderID + `","status":"` + f.captureStatus + `"}`),
	}
	if f.captureStatus == paypal.StatusCompleted {
		if !f.noCaptureID {
			res.CaptureID = "CAP-" + orderID
		}
		res.PayerEmail = "buyer@example.com"
		res.PayerID = "PAYER1"
	}
	return res, nil
}

func (f *fakePayPal) GetOrder(_ context.Context, orderID string) (*paypal.CaptureResult, error) {
	f.gets.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	status := f.orderStatus
	if status == "" {
		status = "APPROVED"
	}
	res := &paypal.CaptureResult{
		OrderID: orderID,
		Status:  status,
		Raw:     []byte(`{"id":"` + orderID + `","status":"` + status + `"}`),
	}
	if status == paypal.StatusCompleted {
		res.CaptureID = "CAP-" + orderID
		res.PayerEmail = "buyer@example.com"
	}
	return res, nil
}

func (f *fakePayPal) Currency() string { return "USD" }

func (f *fakePayPal) lastAmount() decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created[len(f.created)-1].Amount
}

type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
	bodies []string
}

func (r *recordingNotifier) Dispatch(title, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	r.bodies = append(r.bodies, content)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.titles)
}
