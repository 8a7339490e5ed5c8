package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hdwhdw/pathmap/pkg/gnoi"
	"github.com/hdwhdw/pathmap/pkg/gnoi/mocks"
	"github.com/hdwhdw/pathmap/pkg/pathutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with args and returns stdout, stderr and the error
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// useMockClient routes every dial to a fresh mock until the test ends
func useMockClient(t *testing.T) *mocks.Client {
	t.Helper()

	mock := mocks.NewClient()
	prev := newClient
	newClient = mock.Dial
	t.Cleanup(func() { newClient = prev })
	return mock
}

func TestResolve_Args(t *testing.T) {
	stdout, _, err := execute(t, "",
		"resolve",
		"--logical-base", `\Acme\Blog`,
		"--fs-base", "/src/",
		"--file-ext", ".php",
		`\Acme\Blog\ShowController`,
		`\Acme\Blog\Admin\EditController`,
		`\Acme\Blog`,
	)
	require.NoError(t, err)

	assert.Equal(t, "/src/ShowController.php\n/src/Admin/EditController.php\n/src/\n", stdout)
}

func TestResolve_Stdin(t *testing.T) {
	stdin := ":Foo:Bar:Baz:Qux.yml\n\n:Foo:Bar\r\n"
	stdout, _, err := execute(t, stdin,
		"resolve",
		"--logical-base", ":Foo:Bar",
		"--logical-sep", ":",
		"--fs-base", "/path/to/foo-bar/resources/",
	)
	require.NoError(t, err)

	assert.Equal(t, "/path/to/foo-bar/resources/Baz/Qux.yml\n/path/to/foo-bar/resources/\n", stdout)
}

func TestResolve_NotApplicable(t *testing.T) {
	stdout, stderr, err := execute(t, "",
		"resolve",
		"--logical-base", `\Acme\Blog`,
		"--fs-base", "/src",
		`\Acme\Blog\Show`,
		`\Acme\BlogAdmin\Show`,
	)
	require.Error(t, err)

	assert.Equal(t, "/src/Show\n", stdout)
	assert.Contains(t, stderr, `\Acme\BlogAdmin\Show: not applicable`)
	assert.Contains(t, err.Error(), "1 of 2 paths")
}

func TestResolve_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rule.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logicalBase: /\nlogicalSeparator: /\nfsBase: /mnt/host\n"), 0o644))

	stdout, _, err := execute(t, "",
		"resolve",
		"--config", path,
		"--logical-base", `\Ignored`,
		"/tmp/image.bin",
	)
	require.NoError(t, err)

	assert.Equal(t, "/mnt/host/tmp/image.bin\n", stdout)
}

func TestResolve_InvalidRule(t *testing.T) {
	_, _, err := execute(t, "", "resolve", "--logical-base", `\Acme`, `\Acme\Blog`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file-system base cannot be empty")
}

func TestRunResolve_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rule := pathutil.Rule{LogicalBase: "/", LogicalSeparator: "/", FSBase: "/srv"}
	err := runResolve(ctx, rule, []string{"/a"}, 1, io.Discard, io.Discard)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadSources(t *testing.T) {
	sources, err := readSources(strings.NewReader("\\A\\B\r\n\n  \n\\A\\C"))
	require.NoError(t, err)

	// Whitespace is part of a logical path and is kept
	assert.Equal(t, []string{`\A\B`, "  ", `\A\C`}, sources)
}

func TestReadSources_LongLine(t *testing.T) {
	long := `\A\` + strings.Repeat("x", 256*1024)
	sources, err := readSources(strings.NewReader(long + "\n" + `\A\B`))
	require.NoError(t, err)

	assert.Equal(t, []string{long, `\A\B`}, sources)
}

func TestStat(t *testing.T) {
	mock := useMockClient(t)
	modified := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.GetFileService().StatFunc = func(ctx context.Context, logicalPath string) ([]gnoi.FileInfo, error) {
		return []gnoi.FileInfo{
			{Path: logicalPath + `\image.bin`, Size: 42, Permissions: 0644, LastModified: modified},
		}, nil
	}

	stdout, _, err := execute(t, "", "stat", "--address", "switch:8080", `\Images`)
	require.NoError(t, err)

	assert.Equal(t, []string{"switch:8080"}, mock.DialedEndpoints)
	assert.Equal(t, []string{`\Images`}, mock.GetFileService().StatCalls)
	assert.Contains(t, stdout, "0644")
	assert.Contains(t, stdout, "42")
	assert.Contains(t, stdout, "2025-05-01T12:00:00Z")
	assert.Contains(t, stdout, `\Images\image.bin`)
	assert.Equal(t, 1, mock.CloseCalls)
}

func TestStat_DialError(t *testing.T) {
	mock := useMockClient(t)
	mock.DialErr = errors.New("connection refused")

	_, _, err := execute(t, "", "stat", `\Images`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 0, mock.GetFileService().GetStatCallCount())
}

func TestGet(t *testing.T) {
	mock := useMockClient(t)
	mock.GetFileService().GetFunc = func(ctx context.Context, logicalPath string, w io.Writer) (int64, error) {
		n, err := io.WriteString(w, "image contents")
		return int64(n), err
	}

	output := filepath.Join(t.TempDir(), "image.bin")
	_, _, err := execute(t, "", "get", "-o", output, `\Images\image.bin`)
	require.NoError(t, err)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "image contents", string(content))
	assert.Equal(t, []string{`\Images\image.bin`}, mock.GetFileService().GetCalls)
}

func TestTransfer(t *testing.T) {
	mock := useMockClient(t)

	_, _, err := execute(t, "", "transfer", "http://example.com/sonic.bin", `\Images\sonic.bin`)
	require.NoError(t, err)

	call, err := mock.GetFileService().GetLastTransferToRemoteCall()
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/sonic.bin", call.SourceURL)
	assert.Equal(t, `\Images\sonic.bin`, call.LogicalPath)
}

func TestTransfer_Error(t *testing.T) {
	mock := useMockClient(t)
	mock.GetFileService().TransferToRemoteFunc = func(ctx context.Context, sourceURL, logicalPath string) error {
		return errors.New("download failed")
	}

	_, _, err := execute(t, "", "transfer", "http://example.com/sonic.bin", `\Images\sonic.bin`)
	require.Error(t, err)
	assert.Equal(t, 1, mock.GetFileService().GetTransferToRemoteCallCount())
}
