package proximity

import (
	"fmt"
	"time"
)

// Image identifies one of the pictures the display can show.
type Image string

const (
	// ImageNone is shown before the first sample arrives.
	ImageNone Image = "none"
	// ImageDownload is shown right after the sensor gets covered.
	ImageDownload Image = "download"
	// ImageEmoji is shown when the alarm goes off.
	ImageEmoji Image = "emoji"
	// ImageNaruto is shown while the sensor is uncovered.
	ImageNaruto Image = "naruto"
)

const (
	// InitialText is the label content before any countdown starts.
	InitialText = "Hello World!"
	// CountdownPrefix precedes the remaining seconds while the countdown runs.
	CountdownPrefix = "Time left for selfdistruction "
	// FinishedText replaces the countdown once it runs out.
	FinishedText = "some one took ur phone"
)

// CountdownText renders the label for the given remaining time.
// Remaining seconds are whole seconds, truncated.
func CountdownText(remaining time.Duration) string {
	return fmt.Sprintf("%s%d", CountdownPrefix, remaining.Milliseconds()/1000)
}

// DisplayState is the pair of label and image currently shown to the user.
type DisplayState struct {
	// Text is the label content.
	Text string
	// Image is the picture identifier.
	Image Image
	// Revision increases by one on every mutation.
	Revision uint64
}

// InitialDisplayState returns what the user sees before any sample.
func InitialDisplayState() DisplayState {
	return DisplayState{
		Text:  InitialText,
		Image: ImageNone,
	}
}

// Known reports whether the image identifier is one the display can render.
func (i Image) Known() bool {
	switch i {
	case ImageNone, ImageDownload, ImageEmoji, ImageNaruto:
		return true
	default:
		return false
	}
}
