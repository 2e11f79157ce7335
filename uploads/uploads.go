// Package uploads is the attachment storage collaborator: files go in,
// opaque public ids and retrieval URLs come out.
package uploads

import (
	"context"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/chattu/chattu-backend/models"
)

type Service interface {
	Upload(ctx context.Context, files []*multipart.FileHeader) ([]models.Avatar, error)
	Delete(ctx context.Context, publicIDs []string) error
}

// DiskStore keeps uploads on the local filesystem under one directory
// and serves them statically under baseURL. The public id doubles as
// the file name.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload dir")
	}
	return &DiskStore{dir: dir, baseURL: baseURL}, nil
}

func (s *DiskStore) Upload(ctx context.Context, files []*multipart.FileHeader) ([]models.Avatar, error) {
	out := make([]models.Avatar, 0, len(files))
	for _, fh := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := uuid.NewString() + filepath.Ext(fh.Filename)
		if err := s.saveOne(fh, id); err != nil {
			return nil, err
		}
		out = append(out, models.Avatar{PublicID: id, URL: s.baseURL + "/" + id})
	}
	return out, nil
}

func (s *DiskStore) saveOne(fh *multipart.FileHeader, id string) error {
	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "open upload")
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, id))
	if err != nil {
		return errors.Wrap(err, "create upload file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Wrap(err, "write upload file")
	}
	return nil
}

func (s *DiskStore) Delete(ctx context.Context, publicIDs []string) error {
	for _, id := range publicIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		// The id is also the file name; refuse anything trying to
		// escape the upload dir.
		if filepath.Base(id) != id {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, id)); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "remove upload file")
		}
	}
	return nil
}
