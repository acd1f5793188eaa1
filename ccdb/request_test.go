package ccdb

import "testing"

func TestParseRequestPathOnly(t *testing.T) {
	req, err := ParseRequest("/a/b")
	if err != nil {
		t.Fatal(err)
	}
	if req.Path.FullPath() != "/a/b" {
		t.Errorf("path = %q", req.Path.FullPath())
	}
	if req.Context.Variation() != "default" {
		t.Errorf("variation = %q, want default", req.Context.Variation())
	}
	if got := req.Context.Runs(); len(got) != 1 || got[0] != 0 {
		t.Errorf("runs = %v, want [0]", got)
	}
}

func TestParseRequestFull(t *testing.T) {
	req, err := ParseRequest("/a/b:100:mc:2020-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if got := req.Context.Runs(); len(got) != 1 || got[0] != 100 {
		t.Errorf("runs = %v, want [100]", got)
	}
	if req.Context.Variation() != "mc" {
		t.Errorf("variation = %q, want mc", req.Context.Variation())
	}
	if req.Context.Timestamp().Year() != 2020 {
		t.Errorf("timestamp year = %d, want 2020", req.Context.Timestamp().Year())
	}
}

func TestParseRequestPartialTrailer(t *testing.T) {
	req, err := ParseRequest("/a/b:100")
	if err != nil {
		t.Fatal(err)
	}
	if req.Context.Variation() != "default" {
		t.Errorf("variation = %q, want default", req.Context.Variation())
	}
}

func TestParseRequestInvalidPath(t *testing.T) {
	if _, err := ParseRequest("a/b"); err == nil {
		t.Fatal("expected error for relative path")
	}
}

func TestParseRequestInvalidRun(t *testing.T) {
	if _, err := ParseRequest("/a/b:notanumber"); err == nil {
		t.Fatal("expected error for non-numeric run")
	}
}
