package models

// Document is a flattened profile record ready for embedding: readable text
// plus the metadata stored alongside the vector.
type Document struct {
	Content  string
	Metadata DocumentMetadata
}

// DocumentMetadata travels with every vector into the index and comes back
// attached to search matches.
type DocumentMetadata struct {
	Source string `json:"source"`
	Type   string `json:"type"`
	Name   string `json:"name"`
}
