package osmapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/h2non/gock"

	"github.com/example/treewarden/internal/core/changeset"
)

const testBase = "https://osm.test"

func newTestClient(t *testing.T, token string) *Client {
	t.Helper()
	c := NewClient(testBase+"/", token, 5*time.Second, nil)
	gock.InterceptClient(c.HTTPClient())
	t.Cleanup(func() {
		gock.RestoreClient(c.HTTPClient())
		gock.OffAll()
	})
	return c
}

func TestCreateChangeset(t *testing.T) {
	c := newTestClient(t, "secret")

	gock.New(testBase).
		Put("/api/0.6/changeset/create").
		MatchHeader("Authorization", "^Bearer secret$").
		MatchHeader("Content-Type", "application/xml").
		MatchHeader("User-Agent", "^TreeWarden/").
		BodyString(`created_by`).
		Reply(200).
		BodyString("4242\n")

	id, err := c.CreateChangeset(context.Background(), changeset.ProvenanceTags())
	if err != nil {
		t.Fatalf("CreateChangeset() error = %v", err)
	}
	if id != 4242 {
		t.Errorf("id = %d, want 4242", id)
	}
	if !gock.IsDone() {
		t.Error("expected create call")
	}
}

func TestCreateChangeset_BadID(t *testing.T) {
	c := newTestClient(t, "secret")

	gock.New(testBase).
		Put("/api/0.6/changeset/create").
		Reply(200).
		BodyString("<html/>")

	if _, err := c.CreateChangeset(context.Background(), changeset.ProvenanceTags()); err == nil {
		t.Error("expected error for non-numeric id")
	}
}

func TestUploadChanges(t *testing.T) {
	c := newTestClient(t, "secret")
	payload := &changeset.Payload{Modify: []changeset.Node{
		{ID: 100, Lat: 50.1, Lon: 7.1, Version: 4, Tags: []changeset.Tag{{Key: "genus", Value: "Malus"}}},
	}}

	gock.New(testBase).
		Post("/api/0.6/changeset/4242/upload").
		BodyString(`changeset="4242"`).
		Reply(200).
		BodyString(`<diffResult><node old_id="100" new_id="100" new_version="5"/></diffResult>`)

	result, err := c.UploadChanges(context.Background(), 4242, payload)
	if err != nil {
		t.Fatalf("UploadChanges() error = %v", err)
	}
	if result == "" {
		t.Error("expected diff result body")
	}
}

func TestUploadChanges_Conflict(t *testing.T) {
	c := newTestClient(t, "secret")
	payload := &changeset.Payload{Modify: []changeset.Node{{ID: 100, Version: 3}}}

	gock.New(testBase).
		Post("/api/0.6/changeset/7/upload").
		Reply(409).
		BodyString("Version mismatch: Provided 3, server had: 4 of Node 100")

	_, err := c.UploadChanges(context.Background(), 7, payload)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Error() != "HTTP 409: Version mismatch: Provided 3, server had: 4 of Node 100" {
		t.Errorf("Error() = %q", se.Error())
	}
}

func TestCloseChangeset(t *testing.T) {
	c := newTestClient(t, "secret")

	gock.New(testBase).
		Put("/api/0.6/changeset/7/close").
		Reply(200)

	if err := c.CloseChangeset(context.Background(), 7); err != nil {
		t.Errorf("CloseChangeset() error = %v", err)
	}
}

func TestClient_NoToken(t *testing.T) {
	c := newTestClient(t, "")

	if _, err := c.CreateChangeset(context.Background(), nil); !errors.Is(err, ErrNoToken) {
		t.Errorf("err = %v, want ErrNoToken", err)
	}
}
