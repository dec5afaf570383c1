package migration

import (
	"os"
	"sort"
	"sync"

	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/puzpuzpuz/xsync/v3"
)

// AssetFile is a document file during one load pass. Content can be overridden in memory,
// which is how upgraders create sibling files that do not exist on disk yet.
type AssetFile struct {
	content  []byte
	FilePath string
	Package  string
	mu       sync.RWMutex
	deleted  bool
}

// NewAssetFile returns a file backed by the given path.
func NewAssetFile(pkg, filePath string) *AssetFile {
	return &AssetFile{Package: pkg, FilePath: filePath}
}

// NewMemoryFile returns a file whose content is held in memory.
func NewMemoryFile(pkg, filePath string, content []byte) *AssetFile {
	return &AssetFile{Package: pkg, FilePath: filePath, content: content}
}

// Content returns the in-memory override if set, otherwise the content on disk.
func (file *AssetFile) Content() ([]byte, error) {
	file.mu.RLock()
	content := file.content
	file.mu.RUnlock()

	if content != nil {
		return content, nil
	}

	data, err := os.ReadFile(file.FilePath)
	if err != nil {
		return nil, errors.New(err)
	}

	return data, nil
}

// SetContent overrides the file content in memory.
func (file *AssetFile) SetContent(content []byte) {
	file.mu.Lock()
	defer file.mu.Unlock()

	file.content = content
}

// HasOverride reports whether the content lives in memory.
func (file *AssetFile) HasOverride() bool {
	file.mu.RLock()
	defer file.mu.RUnlock()

	return file.content != nil
}

// MarkDeleted flags the file to be dropped from the package and removed on save.
func (file *AssetFile) MarkDeleted() {
	file.mu.Lock()
	defer file.mu.Unlock()

	file.deleted = true
}

// Deleted reports whether the file was marked deleted.
func (file *AssetFile) Deleted() bool {
	file.mu.RLock()
	defer file.mu.RUnlock()

	return file.deleted
}

// FileSet is the set of files of one load pass. It is safe for concurrent use by upgraders.
type FileSet struct {
	files *xsync.MapOf[string, *AssetFile]
}

// NewFileSet returns a set holding the given files.
func NewFileSet(files ...*AssetFile) *FileSet {
	set := &FileSet{files: xsync.NewMapOf[string, *AssetFile]()}

	for _, file := range files {
		set.Add(file)
	}

	return set
}

// Add inserts the file unless a file with the same path exists. It reports whether the file was added.
func (set *FileSet) Add(file *AssetFile) bool {
	_, loaded := set.files.LoadOrStore(file.FilePath, file)
	return !loaded
}

// Find returns the file stored under path.
func (set *FileSet) Find(path string) (*AssetFile, bool) {
	return set.files.Load(path)
}

// MarkDeleted flags the file under path as deleted.
func (set *FileSet) MarkDeleted(path string) error {
	file, ok := set.files.Load(path)
	if !ok {
		return errors.New(FileNotFoundError{Path: path})
	}

	file.MarkDeleted()

	return nil
}

// Len returns the number of files, deleted ones included.
func (set *FileSet) Len() int {
	return set.files.Size()
}

// Files returns every file sorted by path.
func (set *FileSet) Files() []*AssetFile {
	files := make([]*AssetFile, 0, set.files.Size())

	set.files.Range(func(_ string, file *AssetFile) bool {
		files = append(files, file)
		return true
	})

	sort.Slice(files, func(i, j int) bool {
		return files[i].FilePath < files[j].FilePath
	})

	return files
}
