package mocks

import (
	"sync"

	"github.com/hdwhdw/pathmap/pkg/gnoi"
)

// Client is a mock implementation of Client for testing
type Client struct {
	mu sync.Mutex

	// Services
	fileService *FileService

	// Mock behaviors
	DialErr   error
	CloseFunc func() error

	// Call tracking
	DialedEndpoints []string
	CloseCalls      int
}

// NewClient creates a new mock client with default behaviors
func NewClient() *Client {
	return &Client{
		fileService: NewFileService(),
		CloseFunc: func() error {
			return nil
		},
	}
}

// Dial stands in for client.NewClient and hands out this mock
func (m *Client) Dial(endpoint string) (gnoi.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DialedEndpoints = append(m.DialedEndpoints, endpoint)
	if m.DialErr != nil {
		return nil, m.DialErr
	}
	return m, nil
}

// File returns the mock File service
func (m *Client) File() gnoi.FileService {
	return m.fileService
}

// Close closes the mock connection
func (m *Client) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CloseCalls++
	return m.CloseFunc()
}

// GetFileService returns the mock file service for test assertions
func (m *Client) GetFileService() *FileService {
	return m.fileService
}

// ResetCalls resets all call tracking
func (m *Client) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fileService.ResetCalls()
	m.DialedEndpoints = nil
	m.CloseCalls = 0
}

// Ensure Client implements gnoi.Client interface
var _ gnoi.Client = (*Client)(nil)
