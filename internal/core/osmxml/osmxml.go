// Package osmxml renders and parses the OSM API 0.6 XML bodies: osmChange
// documents and changeset metadata.
// This is part of the Functional Core - no I/O beyond the readers and byte slices it is handed.
package osmxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/example/treewarden/internal/core/changeset"
)

// APIVersion is the OSM API version written into every document.
const APIVersion = "0.6"

// Generator is written into the generator attribute.
const Generator = "TreeWarden"

type xmlTag struct {
	K string `xml:"k,attr"`
	V string `xml:"v,attr"`
}

type xmlNode struct {
	ID        int64    `xml:"id,attr"`
	Lat       string   `xml:"lat,attr,omitempty"`
	Lon       string   `xml:"lon,attr,omitempty"`
	Version   int      `xml:"version,attr"`
	Changeset int64    `xml:"changeset,attr,omitempty"`
	Tags      []xmlTag `xml:"tag"`
}

type xmlBlock struct {
	Nodes []xmlNode `xml:"node"`
}

type xmlChange struct {
	XMLName   xml.Name   `xml:"osmChange"`
	Version   string     `xml:"version,attr"`
	Generator string     `xml:"generator,attr,omitempty"`
	Create    []xmlBlock `xml:"create"`
	Modify    []xmlBlock `xml:"modify"`
	Delete    []xmlBlock `xml:"delete"`
}

type xmlChangeset struct {
	Tags []xmlTag `xml:"tag"`
}

type xmlOSM struct {
	XMLName   xml.Name     `xml:"osm"`
	Version   string       `xml:"version,attr"`
	Generator string       `xml:"generator,attr"`
	Changeset xmlChangeset `xml:"changeset"`
}

// EncodeDiffDocument renders the payload as a portable osmChange document (.osc).
func EncodeDiffDocument(p *changeset.Payload) ([]byte, error) {
	return encodeChange(p, 0)
}

// EncodeUpload renders the payload as the body of a changeset upload; every
// node is stamped with changesetID.
func EncodeUpload(p *changeset.Payload, changesetID int64) ([]byte, error) {
	if changesetID <= 0 {
		return nil, fmt.Errorf("invalid changeset id %d", changesetID)
	}
	return encodeChange(p, changesetID)
}

// EncodeChangesetCreate renders the changeset creation body. It carries only metadata tags.
func EncodeChangesetCreate(tags []changeset.Tag) ([]byte, error) {
	doc := xmlOSM{
		Version:   APIVersion,
		Generator: Generator,
		Changeset: xmlChangeset{Tags: toXMLTags(tags)},
	}
	return marshal(doc)
}

// DecodeDiffDocument parses an osmChange document. Only node elements are read.
func DecodeDiffDocument(r io.Reader) (*changeset.Payload, error) {
	var doc xmlChange
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse osmChange document: %w", err)
	}

	out := &changeset.Payload{}
	var err error
	if out.Create, err = fromBlocks(doc.Create); err != nil {
		return nil, err
	}
	if out.Modify, err = fromBlocks(doc.Modify); err != nil {
		return nil, err
	}
	if out.Delete, err = fromBlocks(doc.Delete); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeChange(p *changeset.Payload, changesetID int64) ([]byte, error) {
	doc := xmlChange{Version: APIVersion, Generator: Generator}
	if p != nil {
		doc.Create = toBlocks(p.Create, changesetID)
		doc.Modify = toBlocks(p.Modify, changesetID)
		doc.Delete = toBlocks(p.Delete, changesetID)
	}
	return marshal(doc)
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode XML: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func toBlocks(nodes []changeset.Node, changesetID int64) []xmlBlock {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]xmlNode, len(nodes))
	for i, n := range nodes {
		out[i] = xmlNode{
			ID:        n.ID,
			Lat:       formatCoord(n.Lat),
			Lon:       formatCoord(n.Lon),
			Version:   n.Version,
			Changeset: changesetID,
			Tags:      toXMLTags(n.Tags),
		}
	}
	return []xmlBlock{{Nodes: out}}
}

func toXMLTags(tags []changeset.Tag) []xmlTag {
	out := make([]xmlTag, len(tags))
	for i, t := range tags {
		out[i] = xmlTag{K: t.Key, V: t.Value}
	}
	return out
}

func fromBlocks(blocks []xmlBlock) ([]changeset.Node, error) {
	var out []changeset.Node
	for _, b := range blocks {
		for _, n := range b.Nodes {
			if n.ID == 0 {
				return nil, fmt.Errorf("node without id in osmChange document")
			}
			node := changeset.Node{ID: n.ID, Version: n.Version}
			var err error
			if node.Lat, err = parseCoord(n.Lat); err != nil {
				return nil, fmt.Errorf("node %d: invalid lat: %w", n.ID, err)
			}
			if node.Lon, err = parseCoord(n.Lon); err != nil {
				return nil, fmt.Errorf("node %d: invalid lon: %w", n.ID, err)
			}
			for _, t := range n.Tags {
				node.Tags = append(node.Tags, changeset.Tag{Key: t.K, Value: t.V})
			}
			out = append(out, node)
		}
	}
	return out, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseCoord(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
