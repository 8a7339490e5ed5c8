package client

import (
	"fmt"

	"github.com/hdwhdw/pathmap/pkg/gnoi"
	"github.com/hdwhdw/pathmap/pkg/gnoi/client/services/file"
	gnoifile "github.com/openconfig/gnoi/file"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// grpcClient implements gnoi.Client using real gRPC calls
type grpcClient struct {
	conn        *grpc.ClientConn
	fileService gnoi.FileService
}

// NewClient creates a new gNOI client
func NewClient(endpoint string) (gnoi.Client, error) {
	conn, err := grpc.Dial(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to dial gNOI server: %w", err)
	}

	// Create file client and service
	fileClient := gnoifile.NewFileClient(conn)
	fileService := file.NewService(fileClient)

	return &grpcClient{
		conn:        conn,
		fileService: fileService,
	}, nil
}

// File returns the File service
func (c *grpcClient) File() gnoi.FileService {
	return c.fileService
}

// Close closes the gRPC connection
func (c *grpcClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Ensure grpcClient implements Client interface
var _ gnoi.Client = (*grpcClient)(nil)
