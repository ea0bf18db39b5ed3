package tui

import "github.com/oshokin/proximity-alarm/internal/domain/proximity"

// pictures holds the terminal rendition of every image resource.
//
//nolint:gochecknoglobals // Read-only lookup table.
var pictures = map[proximity.Image]string{
	proximity.ImageDownload: `
    |
    |
  \ | /
   \|/
  -----`,
	proximity.ImageEmoji: `
   .-""""-.
  /  o  o  \
 |    __    |
  \  \__/  /
   '-....-'`,
	proximity.ImageNaruto: `
   .-~~~-.
  / .-~-. \
 | ( (@) ) |
  \ '-~-' /
   '-~~~-'`,
}

// picture returns the art for image, blank for ImageNone or unknown values.
func picture(image proximity.Image) string {
	return pictures[image]
}
