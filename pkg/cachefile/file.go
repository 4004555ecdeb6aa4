package cachefile

import (
	"fmt"
	"os"
	"path/filepath"
)

const cacheFileMode = 0o644

// Save writes doc to path with the codec chosen by CodecFor. The file is
// written to a temporary sibling and renamed into place.
func Save(path string, doc *Document) error {
	dir := filepath.Dir(path)

	mkdirErr := os.MkdirAll(dir, 0o755)
	if mkdirErr != nil {
		return fmt.Errorf("create cache dir: %w", mkdirErr)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}

	tmpName := tmp.Name()

	encodeErr := CodecFor(path).Encode(tmp, doc)
	closeErr := tmp.Close()

	if encodeErr != nil {
		os.Remove(tmpName)

		return fmt.Errorf("encode cache: %w", encodeErr)
	}

	if closeErr != nil {
		os.Remove(tmpName)

		return fmt.Errorf("close cache file: %w", closeErr)
	}

	chmodErr := os.Chmod(tmpName, cacheFileMode)
	if chmodErr != nil {
		os.Remove(tmpName)

		return fmt.Errorf("chmod cache file: %w", chmodErr)
	}

	renameErr := os.Rename(tmpName, path)
	if renameErr != nil {
		os.Remove(tmpName)

		return fmt.Errorf("rename cache file: %w", renameErr)
	}

	return nil
}

// Load reads and validates the document at path. Decoding failures are
// *CacheParseError carrying the path; a missing file is reported as an
// fs.ErrNotExist error.
func Load(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cache file: %w", err)
	}
	defer file.Close()

	doc, decodeErr := CodecFor(path).Decode(file)
	if decodeErr != nil {
		return nil, withPath(decodeErr, path)
	}

	return doc, nil
}
