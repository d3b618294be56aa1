package ffmpeg

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ZacxDev/speech-clips/internal/config"
	"github.com/ZacxDev/speech-clips/internal/profile"
	"github.com/ZacxDev/speech-clips/internal/silence"
)

func TestParseVideoMetadata(t *testing.T) {
	probe := `{
		"streams": [
			{"codec_type": "audio", "codec_name": "aac", "duration": "12.000"},
			{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "duration": "11.950"}
		],
		"format": {"duration": "12.010"}
	}`

	md, err := parseVideoMetadata(probe)
	if err != nil {
		t.Fatalf("parseVideoMetadata() error = %v", err)
	}
	want := &VideoMetadata{Duration: 11.95, Width: 1920, Height: 1080, Codec: "h264"}
	if !reflect.DeepEqual(md, want) {
		t.Errorf("parseVideoMetadata() = %+v, want %+v", md, want)
	}
}

func TestParseVideoMetadataFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		probe string
		want  float64
	}{
		{
			name:  "format duration",
			probe: `{"streams":[{"codec_type":"video","codec_name":"vp9","width":640,"height":360}],"format":{"duration":"7.5"}}`,
			want:  7.5,
		},
		{
			name:  "frames over frame rate",
			probe: `{"streams":[{"codec_type":"video","codec_name":"h264","nb_frames":"300","r_frame_rate":"30/1"}],"format":{}}`,
			want:  10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := parseVideoMetadata(tt.probe)
			if err != nil {
				t.Fatalf("parseVideoMetadata() error = %v", err)
			}
			if md.Duration != tt.want {
				t.Errorf("Duration = %v, want %v", md.Duration, tt.want)
			}
		})
	}
}

func TestParseVideoMetadataErrors(t *testing.T) {
	tests := []struct {
		name  string
		probe string
	}{
		{"invalid json", `{`},
		{"no streams", `{"streams":[]}`},
		{"audio only", `{"streams":[{"codec_type":"audio"}],"format":{"duration":"3.0"}}`},
		{"empty video", `{"streams":[{"codec_type":"video","duration":"0.000"}],"format":{"duration":"0"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseVideoMetadata(tt.probe); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseSilenceOutput(t *testing.T) {
	output := strings.Join([]string{
		"Input #0, wav, from 'audio.wav':",
		"[silencedetect @ 0x7f9] silence_start: -0.00125",
		"[silencedetect @ 0x7f9] silence_end: 0.512 | silence_duration: 0.513",
		"size=N/A time=00:00:03.00 bitrate=N/A speed= 500x",
		"[silencedetect @ 0x7f9] silence_start: 2.1",
		"[silencedetect @ 0x7f9] silence_end: 2.6004 | silence_duration: 0.5004",
		"[silencedetect @ 0x7f9] silence_start: 3.00001e+00",
		"[silencedetect @ 0x7f9] silence_end: 3.8 | silence_duration: 0.8",
		"[silencedetect @ 0x7f9] silence_start: 6.25E+00",
		"[silencedetect @ 0x7f9] silence_end: 7 | silence_duration: 0.75",
		"[silencedetect @ 0x7f9] silence_start: 8.75",
	}, "\n")

	got := parseSilenceOutput(output, 10000)
	want := []silence.MillisecondRange{
		{Start: 0, End: 512},
		{Start: 2100, End: 2600},
		{Start: 3000, End: 3800},
		{Start: 6250, End: 7000},
		{Start: 8750, End: 10000},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseSilenceOutput() = %v, want %v", got, want)
	}
}

func TestParseSilenceOutputExponentTimestamps(t *testing.T) {
	output := "[silencedetect @ 0x55d] silence_start: 6.25e-05\n" +
		"[silencedetect @ 0x55d] silence_end: 0.8 | silence_duration: 0.799937\n"

	got := parseSilenceOutput(output, 5000)
	want := []silence.MillisecondRange{{Start: 0, End: 800}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseSilenceOutput() = %v, want %v", got, want)
	}
	for _, r := range got {
		if r.Start > r.End {
			t.Errorf("inverted range %v", r)
		}
	}
}

func TestParseSilenceOutputNoSilence(t *testing.T) {
	got := parseSilenceOutput("size=N/A time=00:00:03.00 bitrate=N/A\n", 3000)
	if got == nil || len(got) != 0 {
		t.Errorf("parseSilenceOutput() = %#v, want empty list", got)
	}
}

func TestParseSilenceOutputIgnoresOrphanEnd(t *testing.T) {
	got := parseSilenceOutput("[silencedetect @ 0x1] silence_end: 1.0 | silence_duration: 0.5\n", 5000)
	if len(got) != 0 {
		t.Errorf("parseSilenceOutput() = %v, want no ranges", got)
	}
}

func TestParseFormatDuration(t *testing.T) {
	if got := parseFormatDuration(`{"format":{"duration":" 4.25 "}}`); got != 4.25 {
		t.Errorf("parseFormatDuration() = %v, want 4.25", got)
	}
	if got := parseFormatDuration(`{"format":{}}`); got != 0 {
		t.Errorf("parseFormatDuration(missing) = %v, want 0", got)
	}
}

func argValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func hasArgPair(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func defaultProfile(t *testing.T) profile.Profile {
	t.Helper()
	prof, err := profile.Get(config.DefaultProfile)
	if err != nil {
		t.Fatalf("profile.Get() error = %v", err)
	}
	return prof
}

func TestOverlayOutput(t *testing.T) {
	args := overlayOutput("clip.mp4", "captioned.mp4", " it's 5:00, [ok] 100% ", defaultProfile(t)).GetArgs()

	want := `[0:v]drawtext=bordercolor=black:borderw=4:expansion=none:font=Sans:fontcolor=white:fontsize=72:` +
		`text=it\\\'s 5\\:00\, \[ok\] 100%:x=(w-text_w)/2:y=h-text_h-50[s0]`
	if got := argValue(args, "-filter_complex"); got != want {
		t.Errorf("filter_complex = %q, want %q", got, want)
	}
	if !hasArgPair(args, "-map", "[s0]") || !hasArgPair(args, "-map", "0:a") {
		t.Errorf("args %v do not map captioned video and original audio", args)
	}
	if !hasArgPair(args, "-c:a", "copy") {
		t.Errorf("args %v do not copy audio", args)
	}
	if n := len(args); args[n-2] != "captioned.mp4" || args[n-1] != "-y" {
		t.Errorf("args %v do not end with the overwritten output", args)
	}
}

func TestOverlayOutputEmptyText(t *testing.T) {
	args := overlayOutput("clip.mp4", "plain.mp4", "  ", defaultProfile(t)).GetArgs()

	if got := argValue(args, "-filter_complex"); got != "" {
		t.Errorf("filter_complex = %q, want none for empty text", got)
	}
	if !hasArgPair(args, "-c:v", "libx264") {
		t.Errorf("args %v do not re-encode video", args)
	}
}

func TestGIFOutput(t *testing.T) {
	args := gifOutput("captioned.mp4", "segment_0.gif", defaultProfile(t)).GetArgs()

	graph := argValue(args, "-filter_complex")
	for _, part := range []string{
		"[0:v]fps=10[",
		"scale=640:-1:flags=lanczos[",
		"split=2[",
		"palettegen[",
		"paletteuse[",
	} {
		if !strings.Contains(graph, part) {
			t.Errorf("filter_complex %q missing %q", graph, part)
		}
	}
	if strings.Index(graph, "palettegen") > strings.Index(graph, "paletteuse") {
		t.Errorf("palette generated after use: %q", graph)
	}
	if !hasArgPair(args, "-f", "gif") || !hasArgPair(args, "-loop", "0") {
		t.Errorf("args %v are not a looping gif", args)
	}
}

func TestGetCodecSettings(t *testing.T) {
	if got := GetCodecSettings("webm").FileExtension; got != ".webm" {
		t.Errorf("webm extension = %q", got)
	}
	if got := GetCodecSettings("avi").ContainerFormat; got != "mp4" {
		t.Errorf("unknown format falls back to %q, want mp4", got)
	}
}

func TestTail(t *testing.T) {
	if got := tail("a\nb\nc\nd\n", 2); got != "c\nd" {
		t.Errorf("tail() = %q, want %q", got, "c\nd")
	}
	if got := tail("only", 5); got != "only" {
		t.Errorf("tail() = %q, want only", got)
	}
}
