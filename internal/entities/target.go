package entities

import "path"

// PublishTarget is one remote directory receiving the payload and its metadata sidecar.
type PublishTarget struct {
	Directory        string `json:"directory" yaml:"directory"`
	PayloadFileName  string `json:"payload_file_name" yaml:"payload_file_name"`
	MetadataFileName string `json:"metadata_file_name" yaml:"metadata_file_name"`
}

// String identifies the target in logs and results.
func (t PublishTarget) String() string {
	return path.Join(t.Directory, t.PayloadFileName)
}
