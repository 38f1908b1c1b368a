package types

import "fmt"

// SequenceNumber is an object version.
type SequenceNumber uint64

// ObjectRef pins one version of an object: (id, version, digest).
type ObjectRef struct {
	ObjectID ObjectID       `json:"objectId"`
	Version  SequenceNumber `json:"version"`
	Digest   ObjectDigest   `json:"digest"`
}

// String returns "id@version#digest".
func (r ObjectRef) String() string {
	return fmt.Sprintf("%s@%d#%s", r.ObjectID, r.Version, r.Digest)
}
