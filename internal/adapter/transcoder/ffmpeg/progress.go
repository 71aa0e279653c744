package ffmpeg

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// scanProgress reads ffmpeg's -progress key=value stream and converts
// out_time_us ticks into percent-complete callbacks. durationSec of zero
// disables percent math (unknown duration); the stream is still drained
// so ffmpeg never blocks on a full pipe.
func scanProgress(r io.Reader, durationSec float64, fn func(percent float64)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		switch key {
		case "out_time_us":
			if fn == nil || durationSec <= 0 {
				continue
			}
			us, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err != nil {
				continue
			}
			percent := float64(us) / 1e6 / durationSec * 100
			if percent > 100 {
				percent = 100
			}
			fn(percent)
		case "progress":
			if fn != nil && strings.TrimSpace(value) == "end" {
				fn(100)
			}
		}
	}
}
