package osmxml

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/example/treewarden/internal/core/changeset"
)

func samplePayload() *changeset.Payload {
	return &changeset.Payload{
		Create: []changeset.Node{
			{ID: -1, Lat: 50.3, Lon: 7.3, Tags: []changeset.Tag{{Key: "genus", Value: "Pyrus"}, {Key: "natural", Value: "tree"}}},
		},
		Modify: []changeset.Node{
			{ID: 100, Lat: 50.1, Lon: 7.123456789, Version: 4, Tags: []changeset.Tag{
				{Key: "genus", Value: ""},
				{Key: "note", Value: `Tom & Jerry's "<apple>"`},
			}},
		},
	}
}

func TestDiffDocument_RoundTrip(t *testing.T) {
	in := samplePayload()

	data, err := EncodeDiffDocument(in)
	if err != nil {
		t.Fatalf("EncodeDiffDocument() error = %v", err)
	}
	out, err := DecodeDiffDocument(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeDiffDocument() error = %v", err)
	}
	if !reflect.DeepEqual(out.Create, in.Create) {
		t.Errorf("Create = %+v, want %+v", out.Create, in.Create)
	}
	if !reflect.DeepEqual(out.Modify, in.Modify) {
		t.Errorf("Modify = %+v, want %+v", out.Modify, in.Modify)
	}
	if len(out.Delete) != 0 {
		t.Errorf("Delete = %+v, want none", out.Delete)
	}
}

func TestEncodeDiffDocument_Escapes(t *testing.T) {
	data, err := EncodeDiffDocument(samplePayload())
	if err != nil {
		t.Fatalf("EncodeDiffDocument() error = %v", err)
	}
	s := string(data)
	for _, want := range []string{"&amp;", "&lt;apple&gt;", "&#39;", "&#34;"} {
		if !strings.Contains(s, want) {
			t.Errorf("encoded document missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "changeset=") {
		t.Error("diff document should not carry a changeset id")
	}
	if !strings.HasPrefix(s, "<?xml") || !strings.Contains(s, `<osmChange version="0.6" generator="TreeWarden">`) {
		t.Errorf("unexpected header:\n%s", s)
	}
}

func TestEncodeUpload_StampsChangeset(t *testing.T) {
	data, err := EncodeUpload(samplePayload(), 4242)
	if err != nil {
		t.Fatalf("EncodeUpload() error = %v", err)
	}
	s := string(data)
	if got := strings.Count(s, `changeset="4242"`); got != 2 {
		t.Errorf("changeset attribute count = %d, want 2:\n%s", got, s)
	}
	if !strings.Contains(s, "<create>") || !strings.Contains(s, "<modify>") {
		t.Errorf("missing create/modify blocks:\n%s", s)
	}
	if strings.Contains(s, "<delete>") {
		t.Errorf("unexpected empty delete block:\n%s", s)
	}
}

func TestEncodeUpload_RejectsMissingChangeset(t *testing.T) {
	if _, err := EncodeUpload(samplePayload(), 0); err == nil {
		t.Error("expected error for changeset id 0")
	}
}

func TestEncodeChangesetCreate(t *testing.T) {
	data, err := EncodeChangesetCreate(changeset.ProvenanceTags())
	if err != nil {
		t.Fatalf("EncodeChangesetCreate() error = %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `<tag k="created_by" v="TreeWarden"></tag>`) {
		t.Errorf("missing created_by tag:\n%s", s)
	}
	if strings.Contains(s, "<node") {
		t.Error("changeset body must not carry entities")
	}
}

func TestDecodeDiffDocument(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantIDs []int64
		wantErr bool
	}{
		{
			name: "josm style document",
			input: `<?xml version='1.0' encoding='UTF-8'?>
<osmChange version="0.6" generator="JOSM">
<modify>
  <node id="12" version="3" lat="50.1" lon="7.1">
    <tag k="genus" v="Malus"/>
  </node>
</modify>
<modify>
  <node id="13" version="1" lat="50.2" lon="7.2"/>
</modify>
<delete>
  <node id="14" version="2"/>
</delete>
</osmChange>`,
			wantIDs: []int64{12, 13, 14},
		},
		{name: "not xml", input: "{}", wantErr: true},
		{name: "wrong root", input: `<osm version="0.6"></osm>`, wantErr: true},
		{name: "bad coordinate", input: `<osmChange><modify><node id="1" lat="x" lon="1"/></modify></osmChange>`, wantErr: true},
		{name: "missing id", input: `<osmChange><modify><node lat="1" lon="1"/></modify></osmChange>`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeDiffDocument(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeDiffDocument() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got.IDs(), tt.wantIDs) {
				t.Errorf("IDs = %v, want %v", got.IDs(), tt.wantIDs)
			}
			if got.Modify[0].TagMap()["genus"] != "Malus" {
				t.Errorf("tags = %+v", got.Modify[0].Tags)
			}
		})
	}
}
