package file

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hdwhdw/pathmap/pkg/pathutil"
	"github.com/hdwhdw/pathmap/pkg/security/pathvalidator"
	"github.com/openconfig/gnoi/common"
	"github.com/openconfig/gnoi/file"
	"github.com/openconfig/gnoi/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"k8s.io/klog/v2"
)

// chunkSize is the maximum payload of a single Get response
const chunkSize = 64 * 1024

// HTTPClient interface for mocking in tests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Service implements the gNOI File service over logical paths.
// Every path in a request is translated with the mapping rule before the
// file system is touched.
type Service struct {
	file.UnimplementedFileServer
	httpClient HTTPClient
	translator *pathutil.Translator
}

// NewService creates a new File service
func NewService(translator *pathutil.Translator) *Service {
	return &Service{
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		translator: translator,
	}
}

// SetHTTPClient sets a custom HTTP client (for testing)
func (s *Service) SetHTTPClient(client HTTPClient) {
	s.httpClient = client
}

// resolve maps a logical path to a file-system path inside the rule's base
func (s *Service) resolve(logicalPath string) (string, error) {
	if logicalPath == "" {
		return "", status.Error(codes.InvalidArgument, "path is required")
	}

	fsPath, ok := s.translator.Translate(logicalPath)
	if !ok {
		return "", status.Errorf(codes.NotFound, "path %q is not under logical base %q", logicalPath, s.translator.Rule().LogicalBase)
	}
	return s.contain(fsPath)
}

// contain rejects file-system paths that escape the rule's base
func (s *Service) contain(fsPath string) (string, error) {
	if err := pathvalidator.ValidateWithinBase(fsPath, s.translator.Rule().FSBase); err != nil {
		return "", status.Errorf(codes.PermissionDenied, "invalid path: %v", err)
	}
	return filepath.Clean(fsPath), nil
}

// lookup resolves a logical path to an existing file or directory.
// When the rule carries a file extension and the extended path does not exist,
// the path without the extension is tried, which reaches directories and
// files listed under their own name.
func (s *Service) lookup(logicalPath string) (string, fs.FileInfo, error) {
	fsPath, err := s.resolve(logicalPath)
	if err != nil {
		return "", nil, err
	}

	info, err := os.Stat(fsPath)
	if err == nil {
		return fsPath, info, nil
	}
	if !errors.Is(err, fs.ErrNotExist) || s.translator.Rule().FileExtension == "" {
		return "", nil, fsError(err, logicalPath)
	}

	dirPath, ok := s.translator.TranslateDir(logicalPath)
	if !ok {
		return "", nil, fsError(err, logicalPath)
	}
	if dirPath, err = s.contain(dirPath); err != nil {
		return "", nil, err
	}
	info, err = os.Stat(dirPath)
	if err != nil {
		return "", nil, fsError(err, logicalPath)
	}

	klog.V(2).InfoS("Resolved path without file extension", "path", logicalPath, "fsPath", dirPath)
	return dirPath, info, nil
}

// joinLogical appends a directory entry name to a logical path
func (s *Service) joinLogical(logicalPath, name string) string {
	sep := s.translator.Rule().LogicalSeparator
	if strings.HasSuffix(logicalPath, sep) {
		return logicalPath + name
	}
	return logicalPath + sep + name
}

// entryName is the last logical segment of a directory entry.
// Regular files lose the rule's file extension so the name maps back to them.
func (s *Service) entryName(entry fs.DirEntry) string {
	name, ext := entry.Name(), s.translator.Rule().FileExtension
	if ext != "" && name != ext && entry.Type().IsRegular() {
		return strings.TrimSuffix(name, ext)
	}
	return name
}

// Stat implements the gNOI File.Stat RPC.
// A directory yields one entry per child, named in logical form.
func (s *Service) Stat(ctx context.Context, req *file.StatRequest) (*file.StatResponse, error) {
	klog.V(2).InfoS("Received Stat request", "path", req.GetPath())

	fsPath, info, err := s.lookup(req.GetPath())
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return &file.StatResponse{
			Stats: []*file.StatInfo{statInfo(req.GetPath(), info)},
		}, nil
	}

	entries, err := os.ReadDir(fsPath)
	if err != nil {
		return nil, fsError(err, req.GetPath())
	}

	resp := &file.StatResponse{}
	for _, entry := range entries {
		entryInfo, err := entry.Info()
		if err != nil {
			// Entry vanished between ReadDir and Info
			klog.V(2).InfoS("Skipping directory entry", "path", fsPath, "entry", entry.Name(), "error", err)
			continue
		}
		resp.Stats = append(resp.Stats, statInfo(s.joinLogical(req.GetPath(), s.entryName(entry)), entryInfo))
	}

	klog.V(2).InfoS("Stat completed",
		"path", req.GetPath(),
		"fsPath", fsPath,
		"entries", len(resp.Stats))

	return resp, nil
}

// Get implements the gNOI File.Get RPC.
// Contents are streamed in chunks followed by a SHA256 digest.
func (s *Service) Get(req *file.GetRequest, stream file.File_GetServer) error {
	klog.InfoS("Received Get request", "remoteFile", req.GetRemoteFile())

	fsPath, _, err := s.lookup(req.GetRemoteFile())
	if err != nil {
		return err
	}

	f, err := os.Open(fsPath)
	if err != nil {
		return fsError(err, req.GetRemoteFile())
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fsError(err, req.GetRemoteFile())
	}
	if info.IsDir() {
		return status.Errorf(codes.InvalidArgument, "path %q is a directory", req.GetRemoteFile())
	}

	hash := sha256.New()
	buf := make([]byte, chunkSize)
	var sent int64
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			hash.Write(buf[:n])
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if err := stream.Send(&file.GetResponse{
				Response: &file.GetResponse_Contents{Contents: chunk},
			}); err != nil {
				return err
			}
			sent += int64(n)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return status.Errorf(codes.Internal, "failed to read %q: %v", req.GetRemoteFile(), readErr)
		}
	}

	if err := stream.Send(&file.GetResponse{
		Response: &file.GetResponse_Hash{
			Hash: &types.HashType{
				Method: types.HashType_SHA256,
				Hash:   hash.Sum(nil),
			},
		},
	}); err != nil {
		return err
	}

	klog.InfoS("Get completed",
		"remoteFile", req.GetRemoteFile(),
		"fsPath", fsPath,
		"size", sent)

	return nil
}

// TransferToRemote implements the gNOI File.TransferToRemote RPC.
// LocalPath is a logical path naming the download destination.
func (s *Service) TransferToRemote(ctx context.Context, req *file.TransferToRemoteRequest) (*file.TransferToRemoteResponse, error) {
	klog.InfoS("Received TransferToRemote request",
		"localPath", req.LocalPath,
		"remoteURL", req.RemoteDownload.GetPath())

	// Validate request
	if req.RemoteDownload == nil {
		return nil, status.Error(codes.InvalidArgument, "remote_download is required")
	}

	if req.RemoteDownload.Protocol != common.RemoteDownload_HTTP {
		return nil, status.Errorf(codes.Unimplemented, "only HTTP protocol is supported, got %v", req.RemoteDownload.Protocol)
	}

	remoteURL := req.RemoteDownload.GetPath()
	if remoteURL == "" {
		return nil, status.Error(codes.InvalidArgument, "remote URL path is required")
	}

	if req.LocalPath == "" {
		return nil, status.Error(codes.InvalidArgument, "local path is required")
	}

	destPath, err := s.resolve(req.LocalPath)
	if err != nil {
		return nil, err
	}

	// Download file
	if err := s.downloadFile(ctx, remoteURL, destPath); err != nil {
		klog.ErrorS(err, "Failed to download file",
			"remoteURL", remoteURL,
			"localPath", req.LocalPath,
			"fsPath", destPath)
		return nil, status.Errorf(codes.Internal, "download failed: %v", err)
	}

	klog.InfoS("File transfer completed successfully",
		"remoteURL", remoteURL,
		"localPath", req.LocalPath,
		"fsPath", destPath)

	return &file.TransferToRemoteResponse{}, nil
}

// downloadFile downloads a file from URL to local path
func (s *Service) downloadFile(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP request failed with status: %s", resp.Status)
	}

	destDir := filepath.Dir(destPath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", destDir, err)
	}

	destFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destPath, err)
	}
	defer destFile.Close()

	written, err := io.Copy(destFile, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	klog.InfoS("Downloaded file successfully",
		"url", url,
		"path", destPath,
		"size", written)

	return nil
}

// Put implements the gNOI File.Put RPC (not implemented)
func (s *Service) Put(stream file.File_PutServer) error {
	return status.Error(codes.Unimplemented, "Put is not implemented")
}

// Remove implements the gNOI File.Remove RPC (not implemented)
func (s *Service) Remove(ctx context.Context, req *file.RemoveRequest) (*file.RemoveResponse, error) {
	return nil, status.Error(codes.Unimplemented, "Remove is not implemented")
}

func statInfo(logicalPath string, info fs.FileInfo) *file.StatInfo {
	return &file.StatInfo{
		Path:         logicalPath,
		LastModified: uint64(info.ModTime().UnixNano()),
		Permissions:  uint32(info.Mode().Perm()),
		Size:         uint64(info.Size()),
	}
}

func fsError(err error, logicalPath string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return status.Errorf(codes.NotFound, "path %q does not exist", logicalPath)
	case errors.Is(err, fs.ErrPermission):
		return status.Errorf(codes.PermissionDenied, "path %q is not accessible", logicalPath)
	default:
		return status.Errorf(codes.Internal, "path %q: %v", logicalPath, err)
	}
}
