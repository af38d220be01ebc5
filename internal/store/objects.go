package store

import (
	"fmt"
	"time"

	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
)

// Blobs are stored as raw bytes; trees and commits as JSON. The CID codec records which.
const (
	codecBlob   = gocid.Raw
	codecObject = gocid.DagJSON
)

const objectVersion = 1

// treeObject maps file paths to blob CIDs. The shortlink repository only ever
// needs flat paths, so nested trees are not modelled.
type treeObject struct {
	V       int               `json:"v"`
	Entries map[string]string `json:"entries"`
}

type commitObject struct {
	V       int          `json:"v"`
	Tree    string       `json:"tree"`
	Parent  string       `json:"parent,omitempty"`
	Author  authorObject `json:"author"`
	Message string       `json:"message"`
}

type authorObject struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}

// computeCID computes a CIDv1 (SHA2-256) for data under the given codec.
func computeCID(codec uint64, data []byte) (gocid.Cid, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return gocid.Undef, fmt.Errorf("multihash: %w", err)
	}

	return gocid.NewCidV1(codec, mh), nil
}

// encodeCID returns the base32 multibase form used as object and commit ids.
func encodeCID(c gocid.Cid) string {
	encoded, _ := multibase.Encode(multibase.Base32, c.Bytes())

	return encoded
}

func decodeCID(id string) (gocid.Cid, error) {
	_, raw, err := multibase.Decode(id)
	if err != nil {
		return gocid.Undef, fmt.Errorf("decode object id %q: %w", id, err)
	}

	return gocid.Cast(raw)
}
