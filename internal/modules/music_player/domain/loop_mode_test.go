package domain

import "testing"

func TestLoopMode_String(t *testing.T) {
	tests := []struct {
		name string
		mode LoopMode
		want string
	}{
		{name: "LoopModeNone returns none", mode: LoopModeNone, want: "none"},
		{name: "LoopModeTrack returns track", mode: LoopModeTrack, want: "track"},
		{name: "LoopModeTrackOnce returns track_once", mode: LoopModeTrackOnce, want: "track_once"},
		{name: "LoopModeQueue returns queue", mode: LoopModeQueue, want: "queue"},
		{name: "unknown mode returns none", mode: LoopMode(99), want: "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.String(); got != tt.want {
				t.Errorf("LoopMode.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLoopMode_RoundTrip(t *testing.T) {
	for _, mode := range []LoopMode{LoopModeNone, LoopModeTrack, LoopModeTrackOnce, LoopModeQueue} {
		if got := ParseLoopMode(mode.String()); got != mode {
			t.Errorf("ParseLoopMode(%q) = %v, want %v", mode.String(), got, mode)
		}
	}
	if got := ParseLoopMode("bogus"); got != LoopModeNone {
		t.Errorf("ParseLoopMode(bogus) = %v, want none", got)
	}
}

func TestLoopMode_LoopsTrack(t *testing.T) {
	if !LoopModeTrack.LoopsTrack() || !LoopModeTrackOnce.LoopsTrack() {
		t.Error("expected track modes to loop a track")
	}
	if LoopModeQueue.LoopsTrack() || LoopModeNone.LoopsTrack() {
		t.Error("expected queue and none modes not to loop a track")
	}
}

func TestTrackEndReason_ShouldAdvanceQueue(t *testing.T) {
	tests := []struct {
		reason TrackEndReason
		want   bool
	}{
		{TrackEndFinished, true},
		{TrackEndLoadFailed, true},
		{TrackEndStopped, false},
		{TrackEndReplaced, false},
		{TrackEndCleanup, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			if got := tt.reason.ShouldAdvanceQueue(); got != tt.want {
				t.Errorf("ShouldAdvanceQueue() = %v, want %v", got, tt.want)
			}
		})
	}
}
