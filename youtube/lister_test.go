package youtube

import (
	"errors"
	"testing"
)

func TestExtractChannelID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare ID", "UCuAXFkgsw1L7xaCfnd5JJOw", "UCuAXFkgsw1L7xaCfnd5JJOw", false},
		{"channel URL", "https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw", "UCuAXFkgsw1L7xaCfnd5JJOw", false},
		{"URL with trailing path", "https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw/videos", "UCuAXFkgsw1L7xaCfnd5JJOw", false},
		{"URL with query", "https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw?view=videos", "UCuAXFkgsw1L7xaCfnd5JJOw", false},
		{"handle", "@somechannel", "", true},
		{"too short", "UCabc", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractChannelID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractChannelID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractChannelID(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidChannelID) {
				t.Errorf("ExtractChannelID(%q) error = %v, want ErrInvalidChannelID", tt.input, err)
			}
		})
	}
}

func TestVideoInfoURLs(t *testing.T) {
	v := VideoInfo{ID: "dQw4w9WgXcQ", ChannelID: "UCuAXFkgsw1L7xaCfnd5JJOw"}

	if got, want := v.VideoURL(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ"; got != want {
		t.Errorf("VideoURL() = %q, want %q", got, want)
	}
	if got, want := v.ChannelURL(), "https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw"; got != want {
		t.Errorf("ChannelURL() = %q, want %q", got, want)
	}
}

func TestListerError(t *testing.T) {
	inner := errors.New("boom")
	err := &ListerError{Source: "rss", Channel: "UCuAXFkgsw1L7xaCfnd5JJOw", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("errors.Is() should unwrap ListerError to the inner error")
	}

	var listerErr *ListerError
	if !errors.As(error(err), &listerErr) {
		t.Fatal("errors.As() failed to extract *ListerError")
	}
	if listerErr.Source != "rss" {
		t.Errorf("ListerError.Source = %q, want %q", listerErr.Source, "rss")
	}
}
