package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/buildbeaver/chatdl/common/logger"
	"github.com/buildbeaver/chatdl/common/models"
)

// DefaultOutputFile is the file written when no output path is configured.
const DefaultOutputFile OutputFile = "discord_chat.json"

const (
	outputFilePerm = 0644
	outputDirPerm  = 0755
	indent         = "    "
)

// OutputFile is the path of the file the downloaded history is written to.
type OutputFile string

func (o OutputFile) String() string {
	return string(o)
}

// FileSystem is the subset of filesystem operations the writer needs.
type FileSystem interface {
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// OSFileSystem writes to the local disk.
type OSFileSystem struct{}

func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

func (OSFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (OSFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

// Writer serializes a downloaded history as an indented JSON array of messages.
type Writer struct {
	fs   FileSystem
	path OutputFile
	log  logger.Log
}

func NewWriter(fs FileSystem, path OutputFile, logFactory logger.LogFactory) *Writer {
	if path == "" {
		path = DefaultOutputFile
	}
	return &Writer{
		fs:   fs,
		path: path,
		log:  logFactory("ExportWriter"),
	}
}

// Path returns the file the writer writes to.
func (w *Writer) Path() OutputFile {
	return w.path
}

// Write writes every message in results to the output file, replacing any existing file.
// An empty result set is written as an empty array.
func (w *Writer) Write(results *models.ResultSet) error {
	data, err := Encode(results.Messages())
	if err != nil {
		return err
	}
	dir := filepath.Dir(w.path.String())
	if dir != "." {
		err = w.fs.MkdirAll(dir, outputDirPerm)
		if err != nil {
			return errors.Wrapf(err, "error creating output directory %s", dir)
		}
	}
	err = w.fs.WriteFile(w.path.String(), data, outputFilePerm)
	if err != nil {
		return errors.Wrapf(err, "error writing output file %s", w.path)
	}
	w.log.WithFields(logger.Fields{
		"path":     w.path,
		"messages": results.Len(),
	}).Infof("Wrote %d message(s) to %s", results.Len(), w.path)
	return nil
}

// Encode renders messages as a JSON array indented by four spaces. Each message keeps its fields
// in the order the API sent them.
func Encode(messages []models.Message) ([]byte, error) {
	if messages == nil {
		messages = []models.Message{}
	}
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	err := enc.Encode(messages)
	if err != nil {
		return nil, errors.Wrap(err, "error encoding messages")
	}
	return buf.Bytes(), nil
}
