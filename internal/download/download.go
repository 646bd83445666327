// Package download fetches, verifies and unpacks the binary artifacts the
// integration environment depends on: server APKs, driver binaries and
// browser snapshots.
package download

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// File describes one artifact to download.
type File struct {
	// URL is where to fetch the artifact from.
	URL string
	// Name is the local file name to store it under.
	Name string
	// Hash, when non-empty, is the expected digest of the file, hex
	// encoded. A present, matching file is not downloaded again.
	Hash string
	// HashType selects the digest algorithm: "md5" or "sha256" (the
	// default).
	HashType string
	// Rename, when it has two entries, renames the first path to the
	// second after unpacking. Archives often wrap their payload in a
	// versioned directory.
	Rename []string

	// The directory in which to store the file.
	directory string
}

// Path returns the local path of the downloaded file.
func (f File) Path() string {
	if f.directory != "" {
		return filepath.Join(f.directory, f.Name)
	}
	return f.Name
}

// Download fetches the file into directory unless a verified copy is
// already present, then unpacks and renames it. An empty directory means
// the current directory.
func Download(file File, directory string) error {
	file.directory = directory

	if file.Hash != "" && sameHash(file) {
		glog.Infof("Skipping %q which has already been downloaded.", file.Name)
	} else {
		glog.Infof("Downloading %q from %q", file.Name, file.URL)
		if err := fetch(file); err != nil {
			return err
		}
	}

	if err := unpack(file); err != nil {
		return err
	}

	if rename := file.Rename; len(rename) == 2 {
		from := filepath.Join(file.directory, rename[0])
		to := filepath.Join(file.directory, rename[1])
		glog.Infof("Renaming %q to %q", from, to)
		os.RemoveAll(to) // Ignore error.
		if err := os.Rename(from, to); err != nil {
			glog.Warningf("Error renaming %q to %q: %v", from, to, err)
		}
	}
	return nil
}

// All downloads every file into directory, in parallel.
func All(files []File, directory string) error {
	var group errgroup.Group
	for _, file := range files {
		file := file
		group.Go(func() error {
			if err := Download(file, directory); err != nil {
				return fmt.Errorf("error handling %s: %s", file.Name, err)
			}
			return nil
		})
	}
	return group.Wait()
}

func newHash(hashType string) hash.Hash {
	if strings.ToLower(hashType) == "md5" {
		return md5.New()
	}
	return sha256.New()
}

func fetch(file File) (err error) {
	f, err := os.Create(file.Path())
	if err != nil {
		return fmt.Errorf("error creating %q: %v", file.Path(), err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("error closing %q: %v", file.Path(), closeErr)
		}
	}()

	resp, err := http.Get(file.URL)
	if err != nil {
		return fmt.Errorf("%s: error downloading %q: %v", file.Name, file.URL, err)
	}
	defer resp.Body.Close()

	if file.Hash == "" {
		if _, err := io.Copy(f, resp.Body); err != nil {
			return fmt.Errorf("%s: error downloading %q: %v", file.Name, file.URL, err)
		}
		return nil
	}

	h := newHash(file.HashType)
	if _, err := io.Copy(io.MultiWriter(f, h), resp.Body); err != nil {
		return fmt.Errorf("%s: error downloading %q: %v", file.Name, file.URL, err)
	}
	if sum := hex.EncodeToString(h.Sum(nil)); sum != file.Hash {
		return fmt.Errorf("%s: got %s hash %q, want %q", file.Name, file.HashType, sum, file.Hash)
	}
	return nil
}

func sameHash(file File) bool {
	if _, err := os.Stat(file.Path()); err != nil {
		return false
	}
	f, err := os.Open(file.Path())
	if err != nil {
		return false
	}
	defer f.Close()

	h := newHash(file.HashType)
	if _, err := io.Copy(h, f); err != nil {
		return false
	}

	sum := hex.EncodeToString(h.Sum(nil))
	if sum != file.Hash {
		glog.Warningf("File %q: got hash %q, want hash %q", file.Name, sum, file.Hash)
		return false
	}
	return true
}

func unpack(file File) error {
	dir := "."
	if file.directory != "" {
		dir = file.directory
	}

	var cmd []string
	switch path.Ext(file.Name) {
	case ".zip":
		cmd = []string{"unzip", "-d", dir, "-o", file.Path()}
	case ".gz":
		cmd = []string{"tar", "-xzf", file.Path(), "-C", dir}
	case ".bz2":
		cmd = []string{"tar", "-xjf", file.Path(), "-C", dir}
	default:
		return nil
	}

	glog.Infof("Unpacking %q", file.Path())
	if err := exec.Command(cmd[0], cmd[1:]...).Run(); err != nil {
		return fmt.Errorf("error unpacking %q: %v", file.Name, err)
	}
	return nil
}
