// Package static resolves request paths against a root directory and maps
// file extensions to content types.
package static

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDocument is served for "/".
const DefaultDocument = "index.html"

// ErrNotFound is returned when the requested file does not exist or the
// request path points outside the root.
var ErrNotFound = errors.New("static: file not found")

// Dir は静的ファイルのルートディレクトリ
type Dir struct {
	Root            string
	DefaultDocument string
}

// NewDir は root を基点とする Dir を作成する
func NewDir(root string) Dir {
	return Dir{Root: root, DefaultDocument: DefaultDocument}
}

// Canonical は root を絶対パスに解決し、ディレクトリであることを確認する
func Canonical(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root %s: %w", root, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve root %s: %w", root, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("stat root %s: %w", resolved, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root %s is not a directory", resolved)
	}
	return resolved, nil
}

// Path はリクエストパスをファイルパスに変換する
// "/" はデフォルトドキュメント、それ以外は先頭の "/" を除いて root に結合する
// "//" のように何も残らない場合は root 自体を指す
// root の外を指す場合は false を返す
func (d Dir) Path(requestPath string) (string, bool) {
	rel := strings.TrimLeft(requestPath, "/")
	switch {
	case requestPath == "/":
		rel = d.defaultDocument()
	case rel == "":
		return filepath.Clean(d.Root), true
	}
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", false
	}
	return filepath.Join(d.Root, filepath.FromSlash(rel)), true
}

// Resolve はファイルを読み込み、ファイルパスと内容を返す
// 存在しない場合は ErrNotFound をラップしたエラー、それ以外は読み込みエラーを返す
func (d Dir) Resolve(requestPath string) (string, []byte, error) {
	path, ok := d.Path(requestPath)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s escapes root", ErrNotFound, requestPath)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil, fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
		}
		return path, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return path, content, nil
}

func (d Dir) defaultDocument() string {
	if d.DefaultDocument == "" {
		return DefaultDocument
	}
	return d.DefaultDocument
}
