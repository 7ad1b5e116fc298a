// Package ftpclient wraps github.com/jlaffaye/ftp for downloading carrier
// CDR files into a local scratch directory.
package ftpclient

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/phantoooomCam/sabanas-server/internal/config"
	apperrors "github.com/phantoooomCam/sabanas-server/pkg/errors"
)

// Client downloads files from the carrier-facing read-only FTP collaborator.
type Client struct {
	cfg config.FTPConfig
}

func New(cfg config.FTPConfig) *Client {
	return &Client{cfg: cfg}
}

// Download fetches remotePath and writes it under destDir, returning the
// local path. destDir is created if it doesn't exist.
func (c *Client) Download(remotePath, destDir string) (string, error) {
	conn, err := ftp.DialTimeout(c.cfg.GetFTPAddr(), c.cfg.ConnTimeout)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFTPDownload, "dial ftp host")
	}
	defer conn.Quit()

	if err := conn.Login(c.cfg.User, c.cfg.Password); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFTPDownload, "ftp login")
	}

	resp, err := conn.Retr(remotePath)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFTPDownload, fmt.Sprintf("retrieve %s", remotePath))
	}
	defer resp.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFTPDownload, "create scratch dir")
	}

	localPath := filepath.Join(destDir, filepath.Base(remotePath))
	out, err := os.Create(localPath)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFTPDownload, "create local file")
	}
	defer out.Close()

	if _, err := io.Copy(out, resp); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFTPDownload, "copy ftp payload")
	}

	return localPath, nil
}

// Ping verifies the FTP collaborator is reachable, used by the readiness
// check.
func (c *Client) Ping() error {
	conn, err := ftp.DialTimeout(c.cfg.GetFTPAddr(), 5*time.Second)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrFTPDownload, "dial ftp host")
	}
	defer conn.Quit()
	return conn.Login(c.cfg.User, c.cfg.Password)
}
