package display

import "github.com/oshokin/proximity-alarm/internal/domain/proximity"

// Sink receives display mutations.
type Sink interface {
	SetText(text string)
	SetImage(image proximity.Image)
}

// Multi forwards every mutation to each sink in order.
type Multi []Sink

// SetText implements Sink.
func (m Multi) SetText(text string) {
	for _, sink := range m {
		sink.SetText(text)
	}
}

// SetImage implements Sink.
func (m Multi) SetImage(image proximity.Image) {
	for _, sink := range m {
		sink.SetImage(image)
	}
}
