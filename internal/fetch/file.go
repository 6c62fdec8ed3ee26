package fetch

import (
	"context"
	"errors"
	"io/fs"
	"os"
)

// FileFetcher reads documents from the local filesystem.
type FileFetcher struct{}

func (FileFetcher) Fetch(ctx context.Context, location string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	info, err := os.Stat(location)
	if errors.Is(err, fs.ErrNotExist) {
		return "", &Error{Kind: KindNotFound, Location: location, Err: err}
	}
	if err != nil {
		return "", &Error{Kind: KindIO, Location: location, Err: err}
	}
	if info.IsDir() {
		return "", &Error{Kind: KindIO, Location: location, Err: errors.New("path is not a file")}
	}

	data, err := os.ReadFile(location)
	if err != nil {
		return "", &Error{Kind: KindIO, Location: location, Err: err}
	}
	return string(data), nil
}
