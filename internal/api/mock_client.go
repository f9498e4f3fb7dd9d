package api

import (
	"context"
	"io"
	"sync"

	"github.com/diogo/ragchat/internal/models"
)

// MockGatewayClient is a mock implementation of GatewayClientInterface for testing
type MockGatewayClient struct {
	mu sync.Mutex

	// Mock return values
	BaseURLVal     string
	HealthVal      *models.HealthStatus
	HealthErr      error
	ChatChunks     []string
	ChatErr        error
	UploadVal      *models.UploadResult
	UploadErr      error
	UploadErrs     map[string]error
	ListVal        *models.RemoteDocuments
	ListErr        error
	ClearMessage   string
	ClearErr       error
	RAGVal         *models.RAGAnswer
	RAGErr         error
	BlockUntilDone bool

	// Call counters/recorders
	HealthCalls   int
	ChatRequests  []models.ChatRequest
	UploadedNames []string
	UploadedData  map[string]string
	ClearCalled   bool
	RAGQueries    []models.RAGQuery
	CloseCalled   bool
}

// Ensure MockGatewayClient implements GatewayClientInterface
var _ GatewayClientInterface = (*MockGatewayClient)(nil)

func (m *MockGatewayClient) BaseURL() string {
	if m.BaseURLVal == "" {
		return "http://localhost:8000/api"
	}
	return m.BaseURLVal
}

func (m *MockGatewayClient) Health(ctx context.Context) (*models.HealthStatus, error) {
	m.mu.Lock()
	m.HealthCalls++
	m.mu.Unlock()

	if m.HealthErr != nil {
		return nil, m.HealthErr
	}
	if m.HealthVal == nil {
		return &models.HealthStatus{Status: "ok"}, nil
	}
	return m.HealthVal, nil
}

// StreamChat emits ChatChunks in order, then returns ChatErr. With
// BlockUntilDone it waits for ctx to end after the chunks.
func (m *MockGatewayClient) StreamChat(ctx context.Context, req models.ChatRequest, onChunk func(chunk string)) error {
	m.mu.Lock()
	m.ChatRequests = append(m.ChatRequests, req)
	m.mu.Unlock()

	for _, chunk := range m.ChatChunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if onChunk != nil {
			onChunk(chunk)
		}
	}
	if m.BlockUntilDone {
		<-ctx.Done()
		return ctx.Err()
	}
	return m.ChatErr
}

func (m *MockGatewayClient) UploadDocument(ctx context.Context, upload DocumentUpload) (*models.UploadResult, error) {
	var data []byte
	if upload.Reader != nil {
		data, _ = io.ReadAll(upload.Reader)
	}

	m.mu.Lock()
	m.UploadedNames = append(m.UploadedNames, upload.Name)
	if m.UploadedData == nil {
		m.UploadedData = make(map[string]string)
	}
	m.UploadedData[upload.Name] = string(data)
	m.mu.Unlock()

	if err, ok := m.UploadErrs[upload.Name]; ok {
		return nil, err
	}
	if m.UploadErr != nil {
		return nil, m.UploadErr
	}
	if m.UploadVal == nil {
		return &models.UploadResult{}, nil
	}
	result := *m.UploadVal
	return &result, nil
}

func (m *MockGatewayClient) ListDocuments(ctx context.Context) (*models.RemoteDocuments, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	if m.ListVal == nil {
		return &models.RemoteDocuments{}, nil
	}
	return m.ListVal, nil
}

func (m *MockGatewayClient) ClearDocuments(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.ClearCalled = true
	m.mu.Unlock()
	return m.ClearMessage, m.ClearErr
}

func (m *MockGatewayClient) RAGQuery(ctx context.Context, query models.RAGQuery) (*models.RAGAnswer, error) {
	m.mu.Lock()
	m.RAGQueries = append(m.RAGQueries, query)
	m.mu.Unlock()
	return m.RAGVal, m.RAGErr
}

func (m *MockGatewayClient) Close() {
	m.CloseCalled = true
}

// ChatRequestCount returns how many chat requests were made
func (m *MockGatewayClient) ChatRequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ChatRequests)
}
