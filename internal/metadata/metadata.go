// Package metadata models the AGR BLAST database configuration document and
// assembles it from resolved assemblies, taxonomy lookups, and the static
// FlyBase-hosted databases.
package metadata

import (
	"encoding/json"
	"io"
	"time"
)

// SeqType is the BLAST database sequence type.
type SeqType string

const (
	SeqTypeNucleotide SeqType = "nucl"
	SeqTypeProtein    SeqType = "prot"
)

// Metadata is the document header describing the producing data provider.
type Metadata struct {
	Release      string `json:"release"`
	Contact      string `json:"contact"`
	DataProvider string `json:"data_provider"`
	DateProduced string `json:"date_produced"`
	HomepageURL  string `json:"homepage_url"`
	LogoURL      string `json:"logo_url"`
	Public       bool   `json:"public"`
}

// SequenceMetadata describes one BLAST database: where to fetch the
// sequence file, how to verify it, and how to present it.
type SequenceMetadata struct {
	Version     string  `json:"version"`
	URI         string  `json:"uri"`
	MD5Sum      string  `json:"md5_sum"`
	Genus       string  `json:"genus"`
	Species     string  `json:"species"`
	BlastTitle  string  `json:"blast_title"`
	Description string  `json:"description"`
	TaxonID     string  `json:"taxon_id"`
	SeqType     SeqType `json:"seqtype"`
}

// Document is the complete configuration file content.
type Document struct {
	Metadata Metadata           `json:"metadata"`
	Data     []SequenceMetadata `json:"data"`
}

// NewMetadata builds the document header, stamping the production date.
func NewMetadata(release, contact, dataProvider, homepageURL, logoURL string, public bool, produced time.Time) Metadata {
	return Metadata{
		Release:      release,
		Contact:      contact,
		DataProvider: dataProvider,
		DateProduced: produced.Format(time.RFC3339),
		HomepageURL:  homepageURL,
		LogoURL:      logoURL,
		Public:       public,
	}
}

// WriteJSON serializes the document to w.
func (d Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// MarshalIndent returns the document as formatted JSON bytes.
func (d Document) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
