package cli

import (
	"reflect"
	"testing"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    map[string]string
		wantErr bool
	}{
		{name: "pairs", args: []string{"genus=Malus", "height=4"}, want: map[string]string{"genus": "Malus", "height": "4"}},
		{name: "empty value kept", args: []string{"note="}, want: map[string]string{"note": ""}},
		{name: "value with equals", args: []string{"description=a=b"}, want: map[string]string{"description": "a=b"}},
		{name: "missing equals", args: []string{"genus"}, wantErr: true},
		{name: "missing key", args: []string{"=Malus"}, wantErr: true},
		{name: "none", args: nil, want: map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTags(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseTags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseTags() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "1234", want: 1234},
		{in: "-2", want: -2},
		{in: "0", wantErr: true},
		{in: "node/12", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseID(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseID(%q) = %d, %v", tt.in, got, err)
		}
	}
}

func TestGetActionIcon(t *testing.T) {
	if getActionIcon("apply") != "+" || getActionIcon("remove") != "-" || getActionIcon("bogus") != "?" {
		t.Error("unexpected action icons")
	}
}
