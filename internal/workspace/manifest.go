package workspace

import (
	"bufio"
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Supported manifest digests.
const (
	AlgorithmMD5    = "md5"
	AlgorithmSHA256 = "sha256"
)

// ErrEmptyDataset is returned when a directory holds no regular files.
var ErrEmptyDataset = errors.New("dataset contains no files")

// Entry is one manifest line.
type Entry struct {
	Path string
	Sum  string
}

// Manifest is an ordered list of file checksums relative to a dataset root.
type Manifest struct {
	Algorithm string
	Entries   []Entry
}

// Len returns the number of entries.
func (m Manifest) Len() int { return len(m.Entries) }

// Mismatch describes a manifest entry that did not check out.
type Mismatch struct {
	Path    string
	Want    string
	Got     string
	Missing bool
}

func (m Mismatch) String() string {
	if m.Missing {
		return m.Path + ": missing"
	}
	return fmt.Sprintf("%s: checksum %s, want %s", m.Path, m.Got, m.Want)
}

func newHash(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case AlgorithmMD5, "":
		return md5.New(), nil
	case AlgorithmSHA256:
		return sha256.New(), nil
	default:
		return nil, fmt.Errorf("unsupported checksum algorithm %q", algorithm)
	}
}

// Compute walks root in lexical order and checksums every regular file.
func Compute(ctx context.Context, root, algorithm string) (Manifest, error) {
	if algorithm == "" {
		algorithm = AlgorithmMD5
	}
	if _, err := newHash(algorithm); err != nil {
		return Manifest{}, err
	}

	manifest := Manifest{Algorithm: algorithm}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		sum, err := fileSum(path, algorithm)
		if err != nil {
			return err
		}
		manifest.Entries = append(manifest.Entries, Entry{Path: filepath.ToSlash(rel), Sum: sum})
		return nil
	})
	if err != nil {
		return Manifest{}, fmt.Errorf("checksum %s: %w", root, err)
	}
	if len(manifest.Entries) == 0 {
		return Manifest{}, fmt.Errorf("%s: %w", root, ErrEmptyDataset)
	}
	return manifest, nil
}

func fileSum(path, algorithm string) (string, error) {
	h, err := newHash(algorithm)
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// WriteFile writes the manifest in coreutils checksum format.
func (m Manifest) WriteFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range m.Entries {
		name, escaped := escapeName(e.Path)
		prefix := ""
		if escaped {
			prefix = `\`
		}
		if _, err := fmt.Fprintf(w, "%s%s  %s\n", prefix, e.Sum, name); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return f.Close()
}

// ReadFile parses a manifest written by WriteFile or by md5sum/sha256sum.
func ReadFile(path, algorithm string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Manifest{}, err
	}
	defer f.Close()

	if algorithm == "" {
		algorithm = AlgorithmMD5
	}
	manifest := Manifest{Algorithm: algorithm}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		escaped := strings.HasPrefix(line, `\`)
		if escaped {
			line = line[1:]
		}
		sum, rest, ok := strings.Cut(line, " ")
		// One mode character follows the separator: ' ' for text, '*' for
		// binary. Everything after it is the name, verbatim.
		if !ok || sum == "" || len(rest) < 2 || (rest[0] != ' ' && rest[0] != '*') {
			return Manifest{}, fmt.Errorf("%s:%d: malformed manifest line", path, lineNo)
		}
		name := rest[1:]
		if escaped {
			if name, ok = unescapeName(name); !ok {
				return Manifest{}, fmt.Errorf("%s:%d: invalid escape in file name", path, lineNo)
			}
		}
		if _, err := hex.DecodeString(sum); err != nil {
			return Manifest{}, fmt.Errorf("%s:%d: invalid checksum %q", path, lineNo, sum)
		}
		manifest.Entries = append(manifest.Entries, Entry{Path: name, Sum: strings.ToLower(sum)})
	}
	if err := scanner.Err(); err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	return manifest, nil
}

// escapeName applies the coreutils checksum-file escaping to names holding a
// backslash, newline, or carriage return. The caller marks such lines with a
// leading backslash.
func escapeName(name string) (string, bool) {
	if !strings.ContainsAny(name, "\\\n\r") {
		return name, false
	}
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		switch c := name[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), true
}

func unescapeName(name string) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		if name[i] != '\\' {
			b.WriteByte(name[i])
			continue
		}
		if i+1 == len(name) {
			return "", false
		}
		i++
		switch name[i] {
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			return "", false
		}
	}
	return b.String(), true
}

// Check recomputes each entry under root and reports every mismatch. It
// returns an error only when the check itself could not run.
func (m Manifest) Check(ctx context.Context, root string) ([]Mismatch, error) {
	var mismatches []Mismatch
	for _, e := range m.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(root, filepath.FromSlash(e.Path))
		sum, err := fileSum(path, m.Algorithm)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				mismatches = append(mismatches, Mismatch{Path: e.Path, Want: e.Sum, Missing: true})
				continue
			}
			return nil, err
		}
		if sum != e.Sum {
			mismatches = append(mismatches, Mismatch{Path: e.Path, Want: e.Sum, Got: sum})
		}
	}
	return mismatches, nil
}

// Equal reports whether two manifests list the same entries in the same order.
func (m Manifest) Equal(other Manifest) bool {
	if len(m.Entries) != len(other.Entries) {
		return false
	}
	for i := range m.Entries {
		if m.Entries[i] != other.Entries[i] {
			return false
		}
	}
	return true
}
