package mocks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/hdwhdw/pathmap/pkg/gnoi"
)

// FileService is a mock implementation of FileService
type FileService struct {
	mu sync.Mutex

	// Mock behavior
	StatFunc             func(ctx context.Context, logicalPath string) ([]gnoi.FileInfo, error)
	GetFunc              func(ctx context.Context, logicalPath string, w io.Writer) (int64, error)
	TransferToRemoteFunc func(ctx context.Context, sourceURL, logicalPath string) error

	// Call tracking
	StatCalls             []string
	GetCalls              []string
	TransferToRemoteCalls []TransferToRemoteCall
}

type TransferToRemoteCall struct {
	SourceURL   string
	LogicalPath string
}

// NewFileService creates a new mock file service with default behaviors
func NewFileService() *FileService {
	return &FileService{
		StatFunc: func(ctx context.Context, logicalPath string) ([]gnoi.FileInfo, error) {
			return nil, nil
		},
		GetFunc: func(ctx context.Context, logicalPath string, w io.Writer) (int64, error) {
			return 0, nil
		},
		TransferToRemoteFunc: func(ctx context.Context, sourceURL, logicalPath string) error {
			return nil
		},
	}
}

// Stat implements FileService.Stat
func (f *FileService) Stat(ctx context.Context, logicalPath string) ([]gnoi.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.StatCalls = append(f.StatCalls, logicalPath)
	return f.StatFunc(ctx, logicalPath)
}

// Get implements FileService.Get
func (f *FileService) Get(ctx context.Context, logicalPath string, w io.Writer) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.GetCalls = append(f.GetCalls, logicalPath)
	return f.GetFunc(ctx, logicalPath, w)
}

// TransferToRemote implements FileService.TransferToRemote
func (f *FileService) TransferToRemote(ctx context.Context, sourceURL, logicalPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.TransferToRemoteCalls = append(f.TransferToRemoteCalls, TransferToRemoteCall{
		SourceURL:   sourceURL,
		LogicalPath: logicalPath,
	})

	return f.TransferToRemoteFunc(ctx, sourceURL, logicalPath)
}

// GetStatCallCount returns the number of Stat calls
func (f *FileService) GetStatCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.StatCalls)
}

// GetTransferToRemoteCallCount returns the number of TransferToRemote calls
func (f *FileService) GetTransferToRemoteCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.TransferToRemoteCalls)
}

// GetLastTransferToRemoteCall returns the last TransferToRemote call
func (f *FileService) GetLastTransferToRemoteCall() (TransferToRemoteCall, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.TransferToRemoteCalls) == 0 {
		return TransferToRemoteCall{}, fmt.Errorf("no TransferToRemote calls recorded")
	}
	return f.TransferToRemoteCalls[len(f.TransferToRemoteCalls)-1], nil
}

// ResetCalls resets all call tracking
func (f *FileService) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.StatCalls = nil
	f.GetCalls = nil
	f.TransferToRemoteCalls = nil
}

// Ensure FileService implements gnoi.FileService interface
var _ gnoi.FileService = (*FileService)(nil)
