// Package gnoi defines the client-side view of a pathmap gNOI server.
// Implementations live in the client package; mocks in the mocks package.
package gnoi

import (
	"context"
	"io"
	"time"
)

// FileInfo describes a file reported by File.Stat, named by its logical path
type FileInfo struct {
	Path         string
	Size         uint64
	Permissions  uint32
	LastModified time.Time
}

// FileService defines the interface for gNOI File operations on logical paths
type FileService interface {
	// Stat returns the file at logicalPath, or its entries when it is a directory
	Stat(ctx context.Context, logicalPath string) ([]FileInfo, error)
	// Get copies the file at logicalPath into w and returns the bytes written
	Get(ctx context.Context, logicalPath string, w io.Writer) (int64, error)
	// TransferToRemote makes the server download sourceURL to logicalPath
	TransferToRemote(ctx context.Context, sourceURL, logicalPath string) error
}

// Client is the main gNOI client interface
type Client interface {
	// File returns the File service
	File() FileService
	// Close closes the gRPC connection
	Close() error
}
