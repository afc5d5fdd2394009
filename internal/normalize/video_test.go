package normalize

import "testing"

func TestChannel_Handle(t *testing.T) {
	cases := []string{
		"@somechannel",
		"video://@somechannel",
		"https://www.youtube.com/@somechannel",
	}
	for _, in := range cases {
		handle, isChannelID, err := Channel(in)
		if err != nil {
			t.Errorf("Channel(%q) returned unexpected error: %v", in, err)
			continue
		}
		if isChannelID {
			t.Errorf("Channel(%q) reported isChannelID=true, want false", in)
		}
		if handle != "@somechannel" {
			t.Errorf("Channel(%q) = %q, want \"@somechannel\"", in, handle)
		}
	}
}

func TestChannel_ID(t *testing.T) {
	id := "UCabcdefghijklmnopqrstu1" // 24 chars
	cases := []string{
		id,
		"https://www.youtube.com/channel/" + id,
	}
	for _, in := range cases {
		handle, isChannelID, err := Channel(in)
		if err != nil {
			t.Errorf("Channel(%q) returned unexpected error: %v", in, err)
			continue
		}
		if !isChannelID {
			t.Errorf("Channel(%q) reported isChannelID=false, want true", in)
		}
		if handle != id {
			t.Errorf("Channel(%q) = %q, want %q", in, handle, id)
		}
	}
}

func TestChannel_Unrecognized(t *testing.T) {
	_, _, err := Channel("not a channel reference")
	if err == nil {
		t.Error("expected error for an unrecognized channel reference, got nil")
	}
}
