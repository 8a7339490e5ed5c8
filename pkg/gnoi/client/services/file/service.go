package file

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"time"

	"github.com/hdwhdw/pathmap/pkg/gnoi"
	"github.com/openconfig/gnoi/common"
	"github.com/openconfig/gnoi/file"
	"github.com/openconfig/gnoi/types"
	"k8s.io/klog/v2"
)

// Service implements the File service for gNOI operations
type Service struct {
	client file.FileClient
}

// NewService creates a new File service
func NewService(client file.FileClient) *Service {
	return &Service{
		client: client,
	}
}

// Stat returns file information for a logical path
func (s *Service) Stat(ctx context.Context, logicalPath string) ([]gnoi.FileInfo, error) {
	resp, err := s.client.Stat(ctx, &file.StatRequest{Path: logicalPath})
	if err != nil {
		return nil, fmt.Errorf("stat %s failed: %w", logicalPath, err)
	}

	infos := make([]gnoi.FileInfo, 0, len(resp.GetStats()))
	for _, st := range resp.GetStats() {
		infos = append(infos, gnoi.FileInfo{
			Path:         st.GetPath(),
			Size:         st.GetSize(),
			Permissions:  st.GetPermissions(),
			LastModified: time.Unix(0, int64(st.GetLastModified())),
		})
	}
	return infos, nil
}

// Get streams the file at a logical path into w and verifies the trailing hash
func (s *Service) Get(ctx context.Context, logicalPath string, w io.Writer) (int64, error) {
	stream, err := s.client.Get(ctx, &file.GetRequest{RemoteFile: logicalPath})
	if err != nil {
		return 0, fmt.Errorf("get %s failed: %w", logicalPath, err)
	}

	var (
		written int64
		digest  *types.HashType
	)
	hashers := newHashers()
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return written, fmt.Errorf("get %s failed: %w", logicalPath, err)
		}

		switch r := resp.GetResponse().(type) {
		case *file.GetResponse_Contents:
			n, err := w.Write(r.Contents)
			written += int64(n)
			if err != nil {
				return written, fmt.Errorf("failed to write contents: %w", err)
			}
			for _, h := range hashers {
				h.Write(r.Contents)
			}
		case *file.GetResponse_Hash:
			digest = r.Hash
		}
	}

	if digest == nil {
		return written, fmt.Errorf("get %s: server sent no hash", logicalPath)
	}
	if err := verifyHash(digest, hashers); err != nil {
		return written, fmt.Errorf("get %s: %w", logicalPath, err)
	}

	klog.V(2).InfoS("Received file", "path", logicalPath, "size", written)
	return written, nil
}

// TransferToRemote makes the server download sourceURL to a logical path
func (s *Service) TransferToRemote(ctx context.Context, sourceURL, logicalPath string) error {
	klog.InfoS("Starting file transfer via gNOI file service",
		"sourceURL", sourceURL,
		"logicalPath", logicalPath)

	// Check if DRY_RUN mode
	if os.Getenv("DRY_RUN") == "true" {
		klog.InfoS("DRY_RUN: Would transfer file via gNOI file.TransferToRemote",
			"sourceURL", sourceURL,
			"logicalPath", logicalPath)
		return nil
	}

	req := &file.TransferToRemoteRequest{
		LocalPath: logicalPath,
		RemoteDownload: &common.RemoteDownload{
			Path:     sourceURL,
			Protocol: common.RemoteDownload_HTTP,
		},
	}

	resp, err := s.client.TransferToRemote(ctx, req)
	if err != nil {
		return fmt.Errorf("file transfer failed: %w", err)
	}

	klog.InfoS("File transfer completed successfully",
		"response", resp.String(),
		"logicalPath", logicalPath)

	return nil
}

// newHashers covers every method the server may report
func newHashers() map[types.HashType_HashMethod]hash.Hash {
	return map[types.HashType_HashMethod]hash.Hash{
		types.HashType_SHA256: sha256.New(),
		types.HashType_SHA512: sha512.New(),
		types.HashType_MD5:    md5.New(),
	}
}

func verifyHash(digest *types.HashType, hashers map[types.HashType_HashMethod]hash.Hash) error {
	h, ok := hashers[digest.GetMethod()]
	if !ok {
		return fmt.Errorf("unsupported hash method %v", digest.GetMethod())
	}
	if !bytes.Equal(h.Sum(nil), digest.GetHash()) {
		return fmt.Errorf("%v hash mismatch", digest.GetMethod())
	}
	return nil
}

// Ensure Service implements gnoi.FileService interface
var _ gnoi.FileService = (*Service)(nil)
