package core

import (
	"fmt"
	"strconv"
	"strings"
)

// ScreenshotEnv is the process environment variable the screenshot layer
// reads its frame list from.
const ScreenshotEnv = "_VK_SCREENSHOT"

// ParseFrameList parses a comma separated list of non-negative frame numbers.
// An empty string yields an empty list.
func ParseFrameList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	frames := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid frame number %q", part)
		}
		frames = append(frames, n)
	}
	return frames, nil
}
