package enums

import "fmt"

// MediaType classifies a media outlet.
type MediaType string

const (
	MediaTypeNewspaper MediaType = "newspaper"
	MediaTypeMagazine  MediaType = "magazine"
	MediaTypeOnline    MediaType = "online"
	MediaTypeTV        MediaType = "tv"
	MediaTypeRadio     MediaType = "radio"
	MediaTypeAgency    MediaType = "agency"
	MediaTypeBlog      MediaType = "blog"
)

var validMediaTypes = []MediaType{
	MediaTypeNewspaper,
	MediaTypeMagazine,
	MediaTypeOnline,
	MediaTypeTV,
	MediaTypeRadio,
	MediaTypeAgency,
	MediaTypeBlog,
}

func (m MediaType) String() string {
	return string(m)
}

// IsValid reports whether the value is known.
func (m MediaType) IsValid() bool {
	for _, candidate := range validMediaTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMediaType converts raw input into a MediaType.
func ParseMediaType(value string) (MediaType, error) {
	for _, candidate := range validMediaTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media type %q", value)
}
