package mock

import (
	"os"

	"github.com/aaronromeo/mailsweep/pkg/utils"
)

var _ utils.FileManager = (*MockFileManager)(nil)

// MockFileManager keeps written files in memory.
type MockFileManager struct {
	Err    error
	Files  map[string][]byte
	Mkdirs map[string]os.FileMode
}

func NewMockFileManager() *MockFileManager {
	return &MockFileManager{
		Files:  map[string][]byte{},
		Mkdirs: map[string]os.FileMode{},
	}
}

func (m *MockFileManager) MkdirAll(path string, perm os.FileMode) error {
	if m.Err != nil {
		return m.Err
	}
	m.Mkdirs[path] = perm
	return nil
}

func (m *MockFileManager) WriteFile(filename string, data []byte, perm os.FileMode) error {
	if m.Err != nil {
		return m.Err
	}
	m.Files[filename] = append([]byte(nil), data...)
	return nil
}

func (m *MockFileManager) Exists(filename string) (bool, error) {
	_, ok := m.Files[filename]
	return ok, nil
}
